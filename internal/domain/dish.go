package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact decimal type for money columns
)

// Dish Model
type Dish struct {
	ID          uint            `gorm:"primaryKey" json:"id"`            // Primary key
	Name        string          `gorm:"not null" json:"name"`            // Dish name
	Description string          `json:"description"`                     // Dish description
	Category    string          `json:"category"`                        // Dish category
	Price       decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"` // Dish price
	Image       string          `json:"image"`                           // Stored image filename, empty when none
	CreatedBy   uint            `json:"created_by"`                      // Foreign key to the creating User
	UpdatedBy   uint            `json:"updated_by"`                      // Foreign key to the last updating User
	CreatedAt   time.Time       `json:"created_at"`                      // Timestamp of creation
	UpdatedAt   time.Time       `json:"updated_at"`                      // Timestamp of last update
}

// Ingredient Model
type Ingredient struct {
	ID        uint   `gorm:"primaryKey" json:"id"`          // Primary key
	DishID    uint   `gorm:"index;not null" json:"dish_id"` // Foreign key to the parent Dish
	Name      string `gorm:"not null" json:"name"`          // Ingredient name
	CreatedBy uint   `json:"created_by"`                    // Foreign key to the creating User
}
