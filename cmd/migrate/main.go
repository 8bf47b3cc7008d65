package main

import (
	"restaurant_system/internal/config" // Custom import path (Config)
	"restaurant_system/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging library
)

// Main entry point for migration and seeding
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Database Source Name (DSN) for MySQL connection
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	conn := db.Migrate(dsn)

	// Seed the initial admin account when configured
	if err := db.SeedAdmin(conn, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logrus.Fatalf("failed to seed admin: %v", err)
	}
}
