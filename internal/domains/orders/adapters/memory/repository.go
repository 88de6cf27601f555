package memory

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	"github.com/Apurer/order-desk-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order store. Insertion order is preserved for listings.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
	order  []string
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{orders: map[string]*domain.Order{}}
}

func (r *Repository) Insert(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	clone.ID = strconv.FormatInt(r.nextID, 10)
	r.orders[clone.ID] = clone
	r.order = append(r.order, clone.ID)
	return clone.Clone(), nil
}

func (r *Repository) Find(_ context.Context, filter ports.Filter) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0)
	for _, id := range r.order {
		order := r.orders[id]
		if filter.Email != "" && order.Email != filter.Email {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, order.Status) {
			continue
		}
		list = append(list, order.Clone())
	}
	return list, nil
}

func (r *Repository) FindOneAndUpdate(_ context.Context, sel ports.Selector, update ports.Update) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[sel.ID]
	if !ok || order.Email != sel.Email {
		return nil, ports.ErrNotFound
	}
	if len(sel.Statuses) > 0 && !slices.Contains(sel.Statuses, order.Status) {
		return nil, ports.ErrNotFound
	}
	next := order.Clone()
	if update.Status != nil {
		if err := update.Status.Validate(); err != nil {
			return nil, err
		}
		next.Status = *update.Status
	}
	if update.DeliveryAddress != nil {
		next.ChangeDeliveryAddress(*update.DeliveryAddress)
	}
	r.orders[sel.ID] = next
	return next.Clone(), nil
}
