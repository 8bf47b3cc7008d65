package api

import (
	"net/http"                          // HTTP status codes
	"restaurant_system/internal/apperr" // Request error taxonomy
	"restaurant_system/internal/domain" // Importing domain models
	"strings"                           // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// UpdateUserRequest is a patch: nil fields keep the stored value
type UpdateUserRequest struct {
	Name        *string `json:"name"`         // New display name
	Email       *string `json:"email"`        // New email address
	Password    *string `json:"password"`     // New password, requires OldPassword
	OldPassword *string `json:"old_password"` // Current password, verified before a change
	IsAdmin     *bool   `json:"is_admin"`     // New admin flag, permission-checked
}

// UpdateUserHandler applies a partial profile update to the target user
func UpdateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := actingUserID(c) // Authenticated caller
		if !ok {
			return
		}
		var req UpdateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid request"))
			return
		}
		var user domain.User // Load the target user
		if err := db.First(&user, c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("User not found"))
			return
		}
		// Merge the accepted fields over the stored row
		if err := applyUserPatch(db, &user, &req, actorID); err != nil {
			apperr.Respond(c, err)
			return
		}
		if err := db.Save(&user).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusOK) // Updated, no body
	}
}

// applyUserPatch validates the patch against the stored user and merges it in
func applyUserPatch(db *gorm.DB, user *domain.User, req *UpdateUserRequest, actorID uint) error {
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		// A changed email must not belong to a different user
		var other domain.User
		err := db.Where("email = ?", email).First(&other).Error
		if err == nil && other.ID != user.ID {
			return apperr.Conflict("Email already in use")
		}
		if err != nil && err != gorm.ErrRecordNotFound {
			return err
		}
		user.Email = email
	}
	if req.Password != nil {
		// Changing the password requires proving knowledge of the old one
		if req.OldPassword == nil {
			return apperr.Validation("Old password is required to set a new password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(*req.OldPassword)); err != nil {
			return apperr.Auth("Old password does not match")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return err
		}
		user.Password = string(hash)
	}
	if req.IsAdmin != nil {
		// Only the user themself or an admin may change the admin flag
		if user.ID != actorID {
			var actor domain.User
			if err := db.First(&actor, actorID).Error; err != nil {
				return apperr.NotFound("User not found")
			}
			if !actor.IsAdmin {
				return apperr.Permission("You are not allowed to update the admin flag")
			}
		}
		user.IsAdmin = *req.IsAdmin
	}
	return nil
}
