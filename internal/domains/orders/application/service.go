package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	"github.com/Apurer/order-desk-api/internal/domains/orders/ports"
)

// Service orchestrates the order lifecycle use cases.
type Service struct {
	repo        ports.Repository
	now         func() time.Time
	newOrderRef func() string
}

// Option customises the service.
type Option func(*Service)

// WithClock overrides the time source used for delivery time computation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReferenceGenerator overrides how external order references are minted.
func WithReferenceGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newOrderRef = gen
		}
	}
}

// NewService wires the order service with its store.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		now:         time.Now,
		newOrderRef: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// PlaceOrder creates an active order due DeliveryWindow from now.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	order, err := domain.NewOrder(s.newOrderRef(), input.Name, input.Email, input.DeliveryAddress, input.Items, s.now())
	if err != nil {
		return nil, mapError(ErrPlaceOrder, err)
	}
	saved, err := s.repo.Insert(ctx, order)
	if err != nil {
		return nil, mapError(ErrPlaceOrder, err)
	}
	return saved, nil
}

// ViewOrdersByEmail lists the active orders owned by email.
func (s *Service) ViewOrdersByEmail(ctx context.Context, email string) (ports.ListResult, error) {
	orders, err := s.repo.Find(ctx, ports.Filter{Email: email, Statuses: []domain.Status{domain.StatusActive}})
	if err != nil {
		return ports.ListResult{}, mapError(ErrFetchOrders, err)
	}
	if len(orders) == 0 {
		return ports.ListResult{Orders: []*domain.Order{}, Outcome: ports.OutcomeEmptyNotFound}, nil
	}
	return ports.ListResult{Orders: orders, Outcome: ports.OutcomeFound}, nil
}

// ViewAllOrders lists every active order. An empty store is a successful, empty listing.
func (s *Service) ViewAllOrders(ctx context.Context) (ports.ListResult, error) {
	orders, err := s.repo.Find(ctx, ports.Filter{Statuses: []domain.Status{domain.StatusActive}})
	if err != nil {
		return ports.ListResult{}, mapError(ErrFetchAllOrders, err)
	}
	if len(orders) == 0 {
		return ports.ListResult{Orders: []*domain.Order{}, Outcome: ports.OutcomeEmptyOK}, nil
	}
	return ports.ListResult{Orders: orders, Outcome: ports.OutcomeFound}, nil
}

// CancelOrder cancels the order with store ID id owned by email.
func (s *Service) CancelOrder(ctx context.Context, email, id string) (*domain.Order, error) {
	cancelled, err := domain.StatusActive.Cancel()
	if err != nil {
		return nil, mapError(ErrCancelOrder, err)
	}
	sel := ports.Selector{ID: id, Email: email, Statuses: domain.CancellableStatuses()}
	updated, err := s.repo.FindOneAndUpdate(ctx, sel, ports.Update{Status: &cancelled})
	if err != nil {
		return nil, mapError(ErrCancelOrder, err)
	}
	return updated, nil
}

// ModifyAddress replaces the delivery address of the order with store ID id owned by email.
func (s *Service) ModifyAddress(ctx context.Context, email, id, newAddress string) (*domain.Order, error) {
	sel := ports.Selector{ID: id, Email: email, Statuses: domain.AddressMutableStatuses()}
	updated, err := s.repo.FindOneAndUpdate(ctx, sel, ports.Update{DeliveryAddress: &newAddress})
	if err != nil {
		return nil, mapError(ErrModifyAddress, err)
	}
	return updated, nil
}

var _ ports.Service = (*Service)(nil)
