package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	"github.com/Apurer/order-desk-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")

	ErrPlaceOrder     = errors.New("failed to place order")
	ErrFetchOrders    = errors.New("failed to fetch order details")
	ErrFetchAllOrders = errors.New("failed to fetch all orders")
	ErrCancelOrder    = errors.New("failed to cancel order")
	ErrModifyAddress  = errors.New("failed to update address")
)

// mapError tags err with the operation sentinel. Not-found passes through untouched.
func mapError(op error, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrNotFound) {
		return err
	}
	if errors.Is(err, domain.ErrMissingField) || errors.Is(err, domain.ErrInvalidStatus) {
		return fmt.Errorf("%w: %w: %w", op, ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: %w", op, err)
}
