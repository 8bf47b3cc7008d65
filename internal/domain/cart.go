package domain

import "time"

// Cart Model
type Cart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`             // Primary key
	CreatedBy uint      `gorm:"index;not null" json:"created_by"` // Foreign key to the owning User
	CreatedAt time.Time `json:"created_at"`                       // Timestamp of creation
	UpdatedAt time.Time `json:"updated_at"`                       // Timestamp of last update
}

// CartItem Model
type CartItem struct {
	ID       uint   `gorm:"primaryKey" json:"id"`          // Primary key
	CartID   uint   `gorm:"index;not null" json:"cart_id"` // Foreign key to the parent Cart
	DishID   uint   `gorm:"not null" json:"dish_id"`       // Foreign key to the referenced Dish
	Name     string `json:"name"`                          // Dish name captured by the client
	Quantity int    `json:"quantity"`                      // Quantity of the dish
}
