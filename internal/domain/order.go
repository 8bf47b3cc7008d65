package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact decimal type for money columns
)

// Order Model
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`             // Primary key
	Status        string          `json:"status"`                           // Order status
	Price         decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`  // Total order price
	PaymentMethod string          `json:"payment_method"`                   // Payment method
	CreatedBy     uint            `gorm:"index;not null" json:"created_by"` // Foreign key to the owning User
	CreatedAt     time.Time       `json:"created_at"`                       // Timestamp of creation
	UpdatedAt     time.Time       `json:"updated_at"`                       // Timestamp of last update
}

// OrderItem Model
type OrderItem struct {
	ID       uint   `gorm:"primaryKey" json:"id"`           // Primary key
	OrderID  uint   `gorm:"index;not null" json:"order_id"` // Foreign key to the parent Order
	DishID   uint   `gorm:"not null" json:"dish_id"`        // Foreign key to the referenced Dish
	Name     string `json:"name"`                           // Dish name snapshotted at order time
	Quantity int    `json:"quantity"`                       // Quantity of the dish
}
