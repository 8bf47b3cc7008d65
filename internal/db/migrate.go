package db

import (
	"restaurant_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt" // Password hashing

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
)

// Migrate performs automatic migration for the database schema and returns
// the connection for follow-up seeding
func Migrate(dsn string) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{}) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	err = db.AutoMigrate(
		&domain.User{},
		&domain.Dish{}, &domain.Ingredient{},
		&domain.Cart{}, &domain.CartItem{},
		&domain.Order{}, &domain.OrderItem{},
	)
	if err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
	logrus.Info("Migration completed.") // Log successful migration
	return db
}

// SeedAdmin creates the initial admin account when it does not exist yet.
// Skipped silently when the seed credentials are not configured.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		logrus.Info("skip seeding admin: missing ADMIN_EMAIL/ADMIN_PASSWORD")
		return nil
	}
	var count int64
	if err := db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logrus.WithField("email", email).Info("admin already exists")
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 8)
	if err != nil {
		return err
	}
	admin := domain.User{Name: "Admin", Email: email, Password: string(hash), IsAdmin: true}
	return db.Create(&admin).Error
}
