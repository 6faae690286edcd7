package service

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDocumentNotFound  = errors.New("document not found")
	ErrSignatureNotFound = errors.New("signature not found")
	ErrForbidden         = errors.New("forbidden")
	ErrLinkInvalid       = errors.New("link invalid")
	ErrLinkExpired       = errors.New("link expired")
	ErrStatusFinal       = errors.New("signature status is final")
	ErrStorageFailure    = errors.New("storage failure")
	ErrDeliveryFailure   = errors.New("link delivery failed")
)

// ValidationError names the request field that failed validation.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// notFound maps a repository miss to the given sentinel and passes other errors through.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
