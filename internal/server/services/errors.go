package services

import (
	"fmt"

	"github.com/dmitrijs2005/gophpos/internal/common"
)

// ValidationError is a refusal the client can show to the cashier as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return common.ErrValidation
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
