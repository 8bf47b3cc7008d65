package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"restaurant_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func cartPath(id uint) string {
	return fmt.Sprintf("/carts/%d", id)
}

func TestCreateAndGetCart(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	user, token := seedUser(t, db, "Maria", "maria@example.com", false)

	w := doJSON(t, r, http.MethodPost, "/carts", token, h{
		"cart_items": []h{
			{"dish_id": 1, "name": "Spaghetti", "quantity": 2},
			{"dish_id": 2, "name": "Brownie", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)
	require.NotZero(t, created.ID)

	w = doJSON(t, r, http.MethodGet, cartPath(created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp CartResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, user.ID, resp.CreatedBy)
	require.Len(t, resp.CartItems, 2)
	// Items are stored verbatim, no catalog validation at this layer
	assert.Equal(t, "Spaghetti", resp.CartItems[0].Name)
	assert.Equal(t, 2, resp.CartItems[0].Quantity)
}

func TestUpdateCartUpsertsItems(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	_, token := seedUser(t, db, "Maria", "maria@example.com", false)

	w := doJSON(t, r, http.MethodPost, "/carts", token, h{
		"cart_items": []h{
			{"dish_id": 1, "name": "Spaghetti", "quantity": 2},
			{"dish_id": 2, "name": "Brownie", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)

	// Existing dish id: quantity overwritten in place. New dish id: row inserted.
	w = doJSON(t, r, http.MethodPut, cartPath(created.ID), token, h{
		"cart_items": []h{
			{"dish_id": 1, "name": "Spaghetti", "quantity": 5},
			{"dish_id": 3, "name": "Caesar Salad", "quantity": 1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var items []domain.CartItem
	require.NoError(t, db.Where("cart_id = ?", created.ID).Order("dish_id").Find(&items).Error)
	require.Len(t, items, 3)
	assert.EqualValues(t, 1, items[0].DishID)
	assert.Equal(t, 5, items[0].Quantity) // Overwritten, no duplicate row
	assert.EqualValues(t, 2, items[1].DishID)
	assert.Equal(t, 1, items[1].Quantity) // Omitted item untouched
	assert.EqualValues(t, 3, items[2].DishID)
	assert.Equal(t, "Caesar Salad", items[2].Name) // Inserted
}

func TestUpdateCartNotFound(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	_, token := seedUser(t, db, "Maria", "maria@example.com", false)

	w := doJSON(t, r, http.MethodPut, "/carts/9999", token, h{"cart_items": []h{}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListUserCarts(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	user, token := seedUser(t, db, "Maria", "maria@example.com", false)
	other, _ := seedUser(t, db, "Joao", "joao@example.com", false)

	// Distinct timestamps pin the expected ordering
	old := domain.Cart{CreatedBy: user.ID, CreatedAt: time.Now().Add(-2 * time.Hour)}
	recent := domain.Cart{CreatedBy: user.ID, CreatedAt: time.Now().Add(-time.Hour)}
	foreign := domain.Cart{CreatedBy: other.ID, CreatedAt: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&recent).Error)
	require.NoError(t, db.Create(&foreign).Error)

	w := doJSON(t, r, http.MethodGet, "/carts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var carts []CartSummary
	decodeBody(t, w, &carts)
	require.Len(t, carts, 2) // Only the caller's carts
	assert.Equal(t, recent.ID, carts[0].ID)
	assert.Equal(t, old.ID, carts[1].ID) // Newest first
}

func TestDeleteCart(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, newTestStorage(t))
	_, token := seedUser(t, db, "Maria", "maria@example.com", false)

	w := doJSON(t, r, http.MethodPost, "/carts", token, h{
		"cart_items": []h{{"dish_id": 1, "name": "Spaghetti", "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		ID uint `json:"id"`
	}
	decodeBody(t, w, &created)

	w = doJSON(t, r, http.MethodDelete, cartPath(created.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var cart domain.Cart
	assert.ErrorIs(t, db.First(&cart, created.ID).Error, gorm.ErrRecordNotFound)
	var count int64
	require.NoError(t, db.Model(&domain.CartItem{}).Where("cart_id = ?", created.ID).Count(&count).Error)
	assert.Zero(t, count)

	// Deleting an absent cart is a no-op, not an error
	w = doJSON(t, r, http.MethodDelete, cartPath(created.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
