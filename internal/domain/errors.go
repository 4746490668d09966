package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all services. Handlers map these onto HTTP
// statuses; nothing below the api layer knows about HTTP.
var (
	// ErrNotFound marks a referenced flight, leg, reservation or passenger
	// that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks a business-rule violation. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrCapacityExceeded marks a failed seat-availability check. Safe to
	// retry once inventory changes.
	ErrCapacityExceeded = errors.New("no available seat")

	// ErrSerialization marks a transaction that lost a commit race. The
	// reservation engine retries it a bounded number of times before
	// reporting ErrCapacityExceeded.
	ErrSerialization = errors.New("serialization conflict")

	// ErrUnauthorized marks a request without a resolvable identity.
	ErrUnauthorized = errors.New("unauthorized")
)

func NewNotFoundError(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

func NewValidationError(details string) error {
	return fmt.Errorf("%w: %s", ErrValidation, details)
}

func NewCapacityExceededError(class TravelClassCode) error {
	return fmt.Errorf("%w: travel class %s", ErrCapacityExceeded, class)
}

// IsRetriable reports whether the error is a lost commit race worth
// re-running against fresh inventory.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrSerialization)
}
