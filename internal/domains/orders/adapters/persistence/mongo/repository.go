package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Apurer/order-desk-api/internal/domains/orders/domain"
	"github.com/Apurer/order-desk-api/internal/domains/orders/ports"
)

// DefaultCollection is used when no collection name is configured.
const DefaultCollection = "orders"

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders as MongoDB documents.
type Repository struct {
	coll *mongo.Collection
}

// NewRepository wires a collection-backed repository. Caller manages the client lifecycle.
func NewRepository(coll *mongo.Collection) *Repository {
	return &Repository{coll: coll}
}

// orderDocument is the stored shape of an order.
type orderDocument struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	OrderID         string             `bson:"orderId"`
	Name            string             `bson:"name"`
	Email           string             `bson:"email"`
	DeliveryAddress string             `bson:"deliveryAddress"`
	Items           []string           `bson:"items"`
	DeliveryTime    time.Time          `bson:"deliveryTime"`
	Status          string             `bson:"status"`
}

// EnsureIndexes creates the index backing the email and status scoped lookups.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	if err := r.ensureCollection(); err != nil {
		return err
	}
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "status", Value: 1}},
		Options: options.Index().SetName("idx_orders_email_status"),
	})
	return err
}

// Insert writes the order as a single document.
func (r *Repository) Insert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	doc := toDocument(order)
	result, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain()
}

// Find returns matching orders in natural order.
func (r *Repository) Find(ctx context.Context, filter ports.Filter) ([]*domain.Order, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	query := bson.M{}
	if filter.Email != "" {
		query["email"] = filter.Email
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": statusValues(filter.Statuses)}
	}
	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		order, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

// FindOneAndUpdate applies update with a single findOneAndUpdate command.
func (r *Repository) FindOneAndUpdate(ctx context.Context, sel ports.Selector, update ports.Update) (*domain.Order, error) {
	if err := r.ensureCollection(); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(sel.ID)
	if err != nil {
		return nil, ports.ErrNotFound
	}
	query := bson.M{"_id": oid, "email": sel.Email}
	if len(sel.Statuses) > 0 {
		query["status"] = bson.M{"$in": statusValues(sel.Statuses)}
	}
	set := bson.M{}
	if update.Status != nil {
		if err := update.Status.Validate(); err != nil {
			return nil, err
		}
		set["status"] = string(*update.Status)
	}
	if update.DeliveryAddress != nil {
		set["deliveryAddress"] = *update.DeliveryAddress
	}

	var result *mongo.SingleResult
	if len(set) == 0 {
		result = r.coll.FindOne(ctx, query)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		result = r.coll.FindOneAndUpdate(ctx, query, bson.M{"$set": set}, opts)
	}
	var doc orderDocument
	if err := result.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *Repository) ensureCollection() error {
	if r == nil || r.coll == nil {
		return errors.New("mongo order repository not configured")
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

func toDocument(order *domain.Order) orderDocument {
	return orderDocument{
		OrderID:         order.ExternalReference,
		Name:            order.Name,
		Email:           order.Email,
		DeliveryAddress: order.DeliveryAddress,
		Items:           append([]string{}, order.Items...),
		DeliveryTime:    order.DeliveryTime.UTC(),
		Status:          string(order.Status),
	}
}

func (d orderDocument) toDomain() (*domain.Order, error) {
	status, err := domain.ParseStatus(d.Status)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:                d.ID.Hex(),
		ExternalReference: d.OrderID,
		Name:              d.Name,
		Email:             d.Email,
		DeliveryAddress:   d.DeliveryAddress,
		Items:             append([]string{}, d.Items...),
		DeliveryTime:      d.DeliveryTime,
		Status:            status,
	}, nil
}
