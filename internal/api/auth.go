package api

import (
	"net/http"                          // HTTP status codes
	"restaurant_system/internal/apperr" // Request error taxonomy
	"restaurant_system/internal/domain" // Importing domain models
	"restaurant_system/internal/utils"  // Utility functions
	"strings"                           // String manipulation

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// bcryptCost is the hashing cost used for stored passwords
const bcryptCost = 8

// RegisterRequest is the payload for creating an account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`        // Display name must be provided
	Email    string `json:"email" binding:"required,email"` // Email must be provided and valid
	Password string `json:"password" binding:"required"`    // Password must be provided
	IsAdmin  bool   `json:"is_admin"`                       // Admin flag, defaults to false
}

// LoginRequest is the payload for opening a session
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse carries the session token and its user
type AuthResponse struct {
	Token string      `json:"token"` // JWT token
	User  domain.User `json:"user"`  // Authenticated user, password omitted
}

// RegisterHandler creates a new user account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid request"))
			return
		}
		email := strings.ToLower(req.Email) // Emails are stored lowercased
		// Reject an email that is already in use
		var count int64
		if err := db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		if count > 0 {
			apperr.Respond(c, apperr.Conflict("Email already in use"))
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		user := domain.User{Name: req.Name, Email: email, Password: string(hash), IsAdmin: req.IsAdmin}
		if err := db.Create(&user).Error; err != nil {
			apperr.Respond(c, err)
			return
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,    // New user ID
			"email":   user.Email, // Registered email
		}).Info("User registered")
		c.Status(http.StatusCreated) // Created, no body
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Respond(c, apperr.Validation("Invalid request"))
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			apperr.Respond(c, apperr.Auth("Invalid credentials"))
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			apperr.Respond(c, apperr.Auth("Invalid credentials"))
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, jwtSecret)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user}) // Return the token and user
	}
}
