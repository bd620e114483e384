package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicate         = errors.New("duplicate content")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrRuleConfig        = errors.New("invalid rule configuration")
	ErrExternalService   = errors.New("external service failure")
	ErrUnauthorized      = errors.New("unauthorized")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
