package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DeliveryWindow is added to the placement time to compute the promised delivery time.
const DeliveryWindow = 45 * time.Minute

// ErrMissingField signals that a required order field was absent.
var ErrMissingField = errors.New("order field is required")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Order is the customer purchase aggregate.
//
// ID is assigned by the store and is the lookup handle for cancel and
// modify-address. ExternalReference is generated once at placement for display
// and audit; it is never used for lookup.
type Order struct {
	ID                string
	ExternalReference string   `validate:"required"`
	Name              string   `validate:"required"`
	Email             string   `validate:"required"`
	DeliveryAddress   string   `validate:"required"`
	Items             []string `validate:"dive,required"`
	DeliveryTime      time.Time
	Status            Status
}

// NewOrder builds an active order placed at placedAt.
func NewOrder(reference, name, email, deliveryAddress string, items []string, placedAt time.Time) (*Order, error) {
	order := &Order{
		ExternalReference: reference,
		Name:              name,
		Email:             email,
		DeliveryAddress:   deliveryAddress,
		Items:             append([]string{}, items...),
		DeliveryTime:      placedAt.Add(DeliveryWindow),
		Status:            StatusActive,
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces presence of the required fields and a known status.
func (o *Order) Validate() error {
	if err := validate.Struct(o); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Namespace())
			}
			return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(fields, ", "))
		}
		return err
	}
	return o.Status.Validate()
}

// Cancel moves the order to cancelled.
func (o *Order) Cancel() error {
	next, err := o.Status.Cancel()
	if err != nil {
		return err
	}
	o.Status = next
	return nil
}

// ChangeDeliveryAddress replaces the address. Any value, including empty, is accepted.
func (o *Order) ChangeDeliveryAddress(address string) {
	o.DeliveryAddress = address
}

// IsActive reports whether the order has not been cancelled.
func (o *Order) IsActive() bool {
	return o.Status == StatusActive
}

// Clone returns a deep copy so callers cannot alias stored item slices.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]string{}, o.Items...)
	return &clone
}
