package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrDBNotReady          = errors.New("database not initialized")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicate           = errors.New("duplicate record")
	ErrNotPending          = errors.New("payout request is not pending")
)

// IsUniqueViolation reports whether err came from a unique index on either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "Duplicate entry")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
