package repository

import (
	"errors"
	"fmt"

	"github.com/Freeeeeet/slot_swapper/internal/repository/base"
)

var (
	// ErrNotFound is returned when an update or delete touches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned for unique violations and transactions that lost a serialization race.
	ErrConflict = errors.New("write conflict")
)

// wrapErr tags storage errors the service layer has to tell apart.
func wrapErr(op string, err error) error {
	switch {
	case base.IsUniqueViolation(err), base.IsRetryable(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// IsConflict reports a write that lost against a concurrent one, including serialization
// failures that outlived the transaction retries.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || base.IsRetryable(err)
}
