package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	"github.com/Apurer/order-desk-api/internal/domains/orders/ports"
	"github.com/Apurer/order-desk-api/internal/platform/migrations"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM.
// The schema is owned by platform/migrations.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord = migrations.OrderRecord

// Insert creates a row and returns the stored order with its generated identifier.
func (r *Repository) Insert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return toDomain(record)
}

// Find lists orders matching filter ordered by identifier.
func (r *Repository) Find(ctx context.Context, filter ports.Filter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if filter.Email != "" {
		query = query.Where("email = ?", filter.Email)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", statusValues(filter.Statuses))
	}
	var records []orderRecord
	if err := query.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for _, rec := range records {
		order, err := toDomain(rec)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// FindOneAndUpdate issues a single UPDATE ... RETURNING guarded by the selector.
func (r *Repository) FindOneAndUpdate(ctx context.Context, sel ports.Selector, update ports.Update) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(sel.ID, 10, 64)
	if err != nil {
		return nil, ports.ErrNotFound
	}
	values := map[string]any{}
	if update.Status != nil {
		if err := update.Status.Validate(); err != nil {
			return nil, err
		}
		values["status"] = string(*update.Status)
	}
	if update.DeliveryAddress != nil {
		values["delivery_address"] = *update.DeliveryAddress
	}

	var record orderRecord
	query := r.db.WithContext(ctx).Model(&record).Where("id = ? AND email = ?", id, sel.Email)
	if len(sel.Statuses) > 0 {
		query = query.Where("status IN ?", statusValues(sel.Statuses))
	}
	if len(values) == 0 {
		if err := query.First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ports.ErrNotFound
			}
			return nil, err
		}
		return toDomain(record)
	}
	values["updated_at"] = gorm.Expr("NOW()")
	result := query.Clauses(clause.Returning{}).Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return toDomain(record)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func statusValues(statuses []domain.Status) []string {
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return values
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		OrderRef:        order.ExternalReference,
		Name:            order.Name,
		Email:           order.Email,
		DeliveryAddress: order.DeliveryAddress,
		Items:           pq.StringArray(append([]string{}, order.Items...)),
		DeliveryTime:    order.DeliveryTime.UTC(),
		Status:          string(order.Status),
	}
}

func toDomain(record orderRecord) (*domain.Order, error) {
	status, err := domain.ParseStatus(record.Status)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:                strconv.FormatInt(record.ID, 10),
		ExternalReference: record.OrderRef,
		Name:              record.Name,
		Email:             record.Email,
		DeliveryAddress:   record.DeliveryAddress,
		Items:             append([]string{}, record.Items...),
		DeliveryTime:      record.DeliveryTime,
		Status:            status,
	}, nil
}
