package api

import (
	"fmt"
	"net/http"
	"testing"

	"restaurant_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func userPath(id uint) string {
	return fmt.Sprintf("/users/%d", id)
}

func TestUpdateUserMergesSuppliedFields(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	user, token := seedUser(t, db, "Maria", "maria@example.com", false)

	w := doJSON(t, r, http.MethodPut, userPath(user.ID), token, h{"name": "Maria Silva"})
	require.Equal(t, http.StatusOK, w.Code)

	var stored domain.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, "Maria Silva", stored.Name)
	// Omitted fields keep their stored values
	assert.Equal(t, "maria@example.com", stored.Email)
	assert.False(t, stored.IsAdmin)
}

func TestUpdateUserMissingTarget(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	_, token := seedUser(t, db, "Maria", "maria@example.com", false)

	w := doJSON(t, r, http.MethodPut, "/users/9999", token, h{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	user, token := seedUser(t, db, "Maria", "maria@example.com", false)
	seedUser(t, db, "Joao", "joao@example.com", false)

	// Another user's email is a conflict
	w := doJSON(t, r, http.MethodPut, userPath(user.ID), token, h{"email": "joao@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// One's own current email is fine
	w = doJSON(t, r, http.MethodPut, userPath(user.ID), token, h{"email": "maria@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateUserPasswordChange(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	user, token := seedUser(t, db, "Maria", "maria@example.com", false)

	// New password without the old one is a validation failure
	w := doJSON(t, r, http.MethodPut, userPath(user.ID), token, h{"password": "newpassword"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Wrong old password is a credential mismatch
	w = doJSON(t, r, http.MethodPut, userPath(user.ID), token, h{
		"password": "newpassword", "old_password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Correct old password replaces the hash
	w = doJSON(t, r, http.MethodPut, userPath(user.ID), token, h{
		"password": "newpassword", "old_password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var stored domain.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("newpassword")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))
}

func TestUpdateUserAdminFlagPermissions(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	target, _ := seedUser(t, db, "Target", "target@example.com", false)
	_, actorToken := seedUser(t, db, "Actor", "actor@example.com", false)
	_, adminToken := seedUser(t, db, "Admin", "admin@example.com", true)

	// A non-admin actor cannot change another user's admin flag
	w := doJSON(t, r, http.MethodPut, userPath(target.ID), actorToken, h{"is_admin": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var stored domain.User
	require.NoError(t, db.First(&stored, target.ID).Error)
	assert.False(t, stored.IsAdmin)

	// An admin actor can
	w = doJSON(t, r, http.MethodPut, userPath(target.ID), adminToken, h{"is_admin": true})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&stored, target.ID).Error)
	assert.True(t, stored.IsAdmin)
}

func TestUpdateUserAdminFlagOnSelf(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	user, token := seedUser(t, db, "Maria", "maria@example.com", false)

	// The target user themself may change the flag
	w := doJSON(t, r, http.MethodPut, userPath(user.ID), token, h{"is_admin": true})
	require.Equal(t, http.StatusOK, w.Code)

	var stored domain.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.IsAdmin)
}
