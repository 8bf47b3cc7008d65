package api

import (
	"net/http"                          // HTTP status codes
	"restaurant_system/internal/apperr" // Request error taxonomy
	"restaurant_system/internal/domain" // Importing domain models
	"time"                              // Timestamp refresh

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CartItemInput is one line item as sent by the client
type CartItemInput struct {
	DishID   uint   `json:"dish_id" binding:"required"` // Referenced dish
	Name     string `json:"name"`                       // Dish name captured by the client
	Quantity int    `json:"quantity"`                   // Quantity of the dish
}

// CartRequest is the payload for creating or updating a cart
type CartRequest struct {
	CartItems []CartItemInput `json:"cart_items"` // Line items
}

// CartResponse merges a cart row with its items
type CartResponse struct {
	domain.Cart
	CartItems []domain.CartItem `json:"cart_items"` // Line items
}

// CartSummary is the projection used when listing a user's carts
type CartSummary struct {
	ID        uint      `json:"id"`         // Cart ID
	CreatedAt time.Time `json:"created_at"` // Timestamp of creation
}

// CreateCartHandler inserts a cart owned by the caller with its items verbatim.
// Items are not validated against the live dish catalog at this layer.
func CreateCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUserID(c) // Authenticated caller
		if !ok {
			return
		}
		var req CartRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid request"))
			return
		}
		cart := domain.Cart{CreatedBy: userID}
		// Cart row and item rows are written atomically
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&cart).Error; err != nil {
				return err
			}
			rows := make([]domain.CartItem, 0, len(req.CartItems))
			for _, it := range req.CartItems {
				rows = append(rows, domain.CartItem{
					CartID:   cart.ID,     // Parent cart
					DishID:   it.DishID,   // Referenced dish
					Name:     it.Name,     // Captured name
					Quantity: it.Quantity, // Quantity
				})
			}
			if len(rows) == 0 {
				return nil
			}
			return tx.Create(&rows).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Owner
				"error":   err.Error(), // Error message
			}).Error("Failed to create cart")
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": cart.ID})
	}
}

// GetCartHandler returns a cart merged with its items.
// Ownership is not checked here, authorization is the transport layer's concern.
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var cart domain.Cart // Fetch cart from database
		if err := db.First(&cart, c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("Cart not found"))
			return
		}
		items := make([]domain.CartItem, 0) // Fetch its items
		if err := db.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, CartResponse{Cart: cart, CartItems: items})
	}
}

// UpdateCartHandler upserts the incoming items: an item with a dish id already
// in the cart has its quantity overwritten, a new dish id inserts a row.
// Stored items absent from the request are left untouched.
func UpdateCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CartRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid request"))
			return
		}
		var cart domain.Cart // Load the existing cart
		if err := db.First(&cart, c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("Cart not found"))
			return
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			// One lookup for the dish ids already in the cart
			var existing []domain.CartItem
			if err := tx.Where("cart_id = ?", cart.ID).Find(&existing).Error; err != nil {
				return err
			}
			byDish := make(map[uint]domain.CartItem, len(existing))
			for _, it := range existing {
				byDish[it.DishID] = it
			}
			for _, in := range req.CartItems {
				if found, ok := byDish[in.DishID]; ok {
					// Same dish id: overwrite the quantity in place
					if err := tx.Model(&domain.CartItem{}).Where("id = ?", found.ID).
						Update("quantity", in.Quantity).Error; err != nil {
						return err
					}
					continue
				}
				row := domain.CartItem{CartID: cart.ID, DishID: in.DishID, Name: in.Name, Quantity: in.Quantity}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
			// Refresh the cart's update timestamp
			return tx.Model(&cart).Update("updated_at", time.Now()).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"cart_id": cart.ID,     // Cart ID
				"error":   err.Error(), // Error message
			}).Error("Failed to update cart")
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// ListUserCartsHandler returns the caller's carts, newest first
func ListUserCartsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUserID(c) // Authenticated caller
		if !ok {
			return
		}
		carts := make([]CartSummary, 0)
		if err := db.Model(&domain.Cart{}).
			Select("id, created_at").
			Where("created_by = ?", userID).
			Order("created_at desc").
			Scan(&carts).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, carts)
	}
}

// DeleteCartHandler removes a cart's items then the cart row.
// No existence check: deleting an absent cart is a no-op.
func DeleteCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := db.Transaction(func(tx *gorm.DB) error {
			// Items first to satisfy the foreign key
			if err := tx.Where("cart_id = ?", id).Delete(&domain.CartItem{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", id).Delete(&domain.Cart{}).Error
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}
