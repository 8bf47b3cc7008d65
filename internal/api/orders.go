package api

import (
	"net/http"                          // HTTP status codes
	"restaurant_system/internal/apperr" // Request error taxonomy
	"restaurant_system/internal/domain" // Importing domain models
	"time"                              // Listing projections

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Price fields
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// OrderItemInput is one line item as sent by the client; the dish name is
// resolved server-side at creation time.
type OrderItemInput struct {
	DishID   uint `json:"dish_id" binding:"required"` // Referenced dish
	Quantity int  `json:"quantity"`                   // Quantity of the dish
}

// CreateOrderRequest is the payload for placing an order
type CreateOrderRequest struct {
	Status        string           `json:"status"`         // Initial status
	Price         decimal.Decimal  `json:"price"`          // Total price
	PaymentMethod string           `json:"payment_method"` // Payment method
	OrderItems    []OrderItemInput `json:"order_items"`    // Line items
}

// UpdateOrderRequest is a patch: nil fields keep the stored value
type UpdateOrderRequest struct {
	Status        *string          `json:"status"`         // New status
	Price         *decimal.Decimal `json:"price"`          // New total price
	PaymentMethod *string          `json:"payment_method"` // New payment method
}

// OrderResponse merges an order row with its items
type OrderResponse struct {
	domain.Order
	OrderItems []domain.OrderItem `json:"order_items"` // Line items
}

// OrderItemSummary hides the dish id from non-admin listings
type OrderItemSummary struct {
	Name     string `json:"name"`     // Snapshotted dish name
	Quantity int    `json:"quantity"` // Quantity of the dish
}

// AdminOrderRow is one row of the admin listing, joined with the purchaser name
type AdminOrderRow struct {
	ID            uint               `json:"id"`              // Order ID
	Status        string             `json:"status"`          // Order status
	Price         decimal.Decimal    `json:"price"`           // Total price
	PaymentMethod string             `json:"payment_method"`  // Payment method
	CreatedBy     string             `json:"created_by"`      // Purchaser display name
	CreatedAt     time.Time          `json:"created_at"`      // Timestamp of creation
	Dishes        []domain.OrderItem `json:"dishes" gorm:"-"` // Full item rows
}

// UserOrderRow is one row of a user's own listing
type UserOrderRow struct {
	ID            uint               `json:"id"`              // Order ID
	Status        string             `json:"status"`          // Order status
	Price         decimal.Decimal    `json:"price"`           // Total price
	PaymentMethod string             `json:"payment_method"`  // Payment method
	CreatedAt     time.Time          `json:"created_at"`      // Timestamp of creation
	Dishes        []OrderItemSummary `json:"dishes" gorm:"-"` // Name and quantity only
}

// CreateOrderHandler inserts an order, snapshotting the current dish name
// onto every item row. All names are resolved before the batch insert.
func CreateOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUserID(c) // Authenticated caller
		if !ok {
			return
		}
		var req CreateOrderRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid request"))
			return
		}
		// One lookup resolves every item's current dish name
		ids := make([]uint, 0, len(req.OrderItems))
		for _, it := range req.OrderItems {
			ids = append(ids, it.DishID)
		}
		names := make(map[uint]string, len(ids))
		if len(ids) > 0 {
			var dishes []domain.Dish
			if err := db.Where("id IN ?", ids).Find(&dishes).Error; err != nil {
				apperr.Respond(c, err)
				return
			}
			for _, d := range dishes {
				names[d.ID] = d.Name
			}
		}
		for _, it := range req.OrderItems {
			if _, ok := names[it.DishID]; !ok {
				apperr.Respond(c, apperr.NotFound("Dish not found"))
				return
			}
		}
		order := domain.Order{
			Status:        req.Status,        // Initial status
			Price:         req.Price,         // Total price
			PaymentMethod: req.PaymentMethod, // Payment method
			CreatedBy:     userID,            // Purchaser
		}
		// Order row and item rows are written atomically
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&order).Error; err != nil {
				return err
			}
			rows := make([]domain.OrderItem, 0, len(req.OrderItems))
			for _, it := range req.OrderItems {
				rows = append(rows, domain.OrderItem{
					OrderID:  order.ID,         // Parent order
					DishID:   it.DishID,        // Referenced dish
					Name:     names[it.DishID], // Snapshotted name, frozen from here on
					Quantity: it.Quantity,      // Quantity
				})
			}
			if len(rows) == 0 {
				return nil
			}
			return tx.Create(&rows).Error
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // Purchaser
				"error":   err.Error(), // Error message
			}).Error("Failed to create order")
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": order.ID})
	}
}

// GetOrderHandler returns an order merged with its items
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order domain.Order // Fetch order from database
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("Order not found"))
			return
		}
		items := make([]domain.OrderItem, 0) // Fetch its items
		if err := db.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, OrderResponse{Order: order, OrderItems: items})
	}
}

// UpdateOrderHandler merges the supplied status, price and payment method
// over the stored row; item rows are immutable after creation.
func UpdateOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid request"))
			return
		}
		var order domain.Order // Load the existing order
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("Order not found"))
			return
		}
		// Merge only the supplied fields
		if req.Status != nil {
			order.Status = *req.Status
		}
		if req.Price != nil {
			order.Price = *req.Price
		}
		if req.PaymentMethod != nil {
			order.PaymentMethod = *req.PaymentMethod
		}
		if err := db.Save(&order).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// UpdateOrderStatusRequest carries the new status for the admin-only route
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"` // New status
}

// UpdateOrderStatusHandler sets an order's status; the route is admin-gated
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid request"))
			return
		}
		var order domain.Order // Load the existing order
		if err := db.First(&order, c.Param("id")).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("Order not found"))
			return
		}
		if err := db.Model(&order).Update("status", req.Status).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		logrus.WithFields(logrus.Fields{
			"order_id": order.ID,   // Order ID
			"status":   req.Status, // New status
		}).Info("Order status updated")
		c.Status(http.StatusOK)
	}
}

// DeleteOrderHandler removes an order's items then the order row, unconditionally
func DeleteOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		err := db.Transaction(func(tx *gorm.DB) error {
			// Items first to satisfy the foreign key
			if err := tx.Where("order_id = ?", id).Delete(&domain.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", id).Delete(&domain.Order{}).Error
		})
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Status(http.StatusOK)
	}
}

// ListOrdersHandler lists orders for the caller. Admins see every order joined
// with the purchaser name and full item rows; other users see only their own
// orders with items reduced to name and quantity.
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := actingUserID(c) // Authenticated caller
		if !ok {
			return
		}
		var user domain.User // Load the acting user to branch on the admin flag
		if err := db.First(&user, userID).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("User not found"))
			return
		}
		if user.IsAdmin {
			listAllOrders(c, db)
			return
		}
		listUserOrders(c, db, userID)
	}
}

// listAllOrders is the admin branch: every order, purchaser name included
func listAllOrders(c *gin.Context, db *gorm.DB) {
	rows := make([]AdminOrderRow, 0)
	if err := db.Table("orders").
		Select("orders.id, orders.status, orders.price, orders.payment_method, users.name AS created_by, orders.created_at").
		Joins("INNER JOIN users ON users.id = orders.created_by").
		Order("orders.created_at desc").
		Scan(&rows).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	byOrder, err := loadOrderItems(db, ids)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	for i := range rows {
		items := byOrder[rows[i].ID]
		if items == nil {
			items = make([]domain.OrderItem, 0)
		}
		rows[i].Dishes = items // Full item rows, dish id included
	}
	c.JSON(http.StatusOK, rows)
}

// listUserOrders is the non-admin branch: own orders, items reduced
func listUserOrders(c *gin.Context, db *gorm.DB, userID uint) {
	rows := make([]UserOrderRow, 0)
	if err := db.Table("orders").
		Select("id, status, price, payment_method, created_at").
		Where("created_by = ?", userID).
		Order("created_at desc").
		Scan(&rows).Error; err != nil {
		apperr.Respond(c, err)
		return
	}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	byOrder, err := loadOrderItems(db, ids)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	for i := range rows {
		dishes := make([]OrderItemSummary, 0, len(byOrder[rows[i].ID]))
		for _, it := range byOrder[rows[i].ID] {
			dishes = append(dishes, OrderItemSummary{Name: it.Name, Quantity: it.Quantity})
		}
		rows[i].Dishes = dishes // Name and quantity only
	}
	c.JSON(http.StatusOK, rows)
}

// loadOrderItems fetches the items of the given orders in one query and
// groups them by order id
func loadOrderItems(db *gorm.DB, ids []uint) (map[uint][]domain.OrderItem, error) {
	byOrder := make(map[uint][]domain.OrderItem, len(ids))
	if len(ids) == 0 {
		return byOrder, nil
	}
	var items []domain.OrderItem
	if err := db.Where("order_id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	return byOrder, nil
}
