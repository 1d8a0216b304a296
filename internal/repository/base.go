// Package repository implements the data access layer for the application.
package repository

import (
	"errors"
	"strings"

	"talkshalk/internal/models"

	"gorm.io/gorm"
)

// storeError tags a gorm error: record-not-found becomes NOT_FOUND for the
// given resource, anything else UNAVAILABLE.
func storeError(err error, resource string, id interface{}) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return models.NewUnavailableError(err)
}

// isUniqueConstraintError checks if a DB error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	// PostgreSQL unique violation SQLSTATE 23505
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
