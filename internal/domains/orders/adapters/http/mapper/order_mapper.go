package mapper

import (
	"time"

	orderdomain "github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/order-desk-api/internal/domains/orders/ports"
)

// Order is the JSON shape returned by the order endpoints.
type Order struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"orderId"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	DeliveryAddress string    `json:"deliveryAddress"`
	Items           []string  `json:"items"`
	DeliveryTime    time.Time `json:"deliveryTime"`
	Status          string    `json:"status"`
}

// PlaceOrderRequest is the body accepted by POST /api/orders/place.
type PlaceOrderRequest struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	DeliveryAddress string   `json:"deliveryAddress"`
	Items           []string `json:"items"`
}

// CancelOrderRequest is the body accepted by POST /api/orders/cancel.
// OrderID carries the store identifier (Order.ID), not the generated reference.
type CancelOrderRequest struct {
	Email   string `json:"email"`
	OrderID string `json:"orderId"`
}

// ModifyAddressRequest is the body accepted by POST /api/orders/modify-address.
type ModifyAddressRequest struct {
	Email      string `json:"email"`
	OrderID    string `json:"orderId"`
	NewAddress string `json:"newAddress"`
}

// ToPlaceOrderInput converts the transport payload into the service input.
func ToPlaceOrderInput(req PlaceOrderRequest) orderports.PlaceOrderInput {
	return orderports.PlaceOrderInput{
		Name:            req.Name,
		Email:           req.Email,
		DeliveryAddress: req.DeliveryAddress,
		Items:           req.Items,
	}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *orderdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := order.Items
	if items == nil {
		items = []string{}
	}
	return Order{
		ID:              order.ID,
		OrderID:         order.ExternalReference,
		Name:            order.Name,
		Email:           order.Email,
		DeliveryAddress: order.DeliveryAddress,
		Items:           append([]string{}, items...),
		DeliveryTime:    order.DeliveryTime,
		Status:          string(order.Status),
	}
}

// FromDomainOrders converts a list, always yielding a non-nil slice.
func FromDomainOrders(orders []*orderdomain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomainOrder(order))
	}
	return out
}
