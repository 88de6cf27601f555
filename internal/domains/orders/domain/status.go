package domain

import (
	"errors"
	"fmt"
)

// Status enumerates the order lifecycle. The only transition is active -> cancelled.
type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

// ErrInvalidStatus is returned for any value outside the closed status set.
var ErrInvalidStatus = errors.New("order status is invalid")

// Validate rejects unknown statuses.
func (s Status) Validate() error {
	switch s {
	case StatusActive, StatusCancelled:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(s))
	}
}

// Cancel returns the status reached by cancelling from s.
// Cancelling an already cancelled order is a no-op.
func (s Status) Cancel() (Status, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	return StatusCancelled, nil
}

// CancellableStatuses lists the statuses from which a cancel request may succeed.
func CancellableStatuses() []Status {
	return []Status{StatusActive, StatusCancelled}
}

// AddressMutableStatuses lists the statuses in which the delivery address may change.
func AddressMutableStatuses() []Status {
	return []Status{StatusActive, StatusCancelled}
}

// ParseStatus converts persisted values, defaulting empty input to active.
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return StatusActive, nil
	}
	status := Status(raw)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}
