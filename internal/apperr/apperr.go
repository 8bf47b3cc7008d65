// Package apperr defines the request error taxonomy shared by all handlers.
// Every error carries the HTTP status it maps to; anything outside the
// taxonomy is treated as an unexpected failure and answered with 500.
package apperr

import (
	"errors"   // Error unwrapping
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Error is a request failure with a caller-facing message and status code
type Error struct {
	Status  int    // HTTP status code
	Message string // Human-readable message
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// NotFound reports a missing entity (404)
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict reports a unique-constraint violation such as a duplicate email (409)
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Validation reports a missing or malformed request field (400)
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Auth reports a credential mismatch (401)
func Auth(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// Permission reports a privilege escalation attempt (403)
func Permission(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

// Respond writes err to the client. Taxonomy errors keep their status and
// message; anything else is logged and surfaced as a generic failure.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{"error": appErr.Message})
		return
	}
	// Unexpected store or file-system failure
	logrus.WithFields(logrus.Fields{
		"path":  c.FullPath(),
		"error": err.Error(),
	}).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
