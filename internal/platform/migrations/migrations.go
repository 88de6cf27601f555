package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the relational schema for the orders store.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&OrderRecord{})
}

// OrderRecord is the orders table. The Postgres order adapter reads and writes
// through this type, so the migrated schema and the queries share one definition.
type OrderRecord struct {
	ID              int64          `gorm:"primaryKey;column:id"`
	OrderRef        string         `gorm:"column:order_ref"`
	Name            string         `gorm:"column:name"`
	Email           string         `gorm:"column:email;index:idx_orders_email_status"`
	DeliveryAddress string         `gorm:"column:delivery_address"`
	Items           pq.StringArray `gorm:"column:items;type:text[]"`
	DeliveryTime    time.Time      `gorm:"column:delivery_time"`
	Status          string         `gorm:"column:status;type:varchar(32);index:idx_orders_email_status"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
}

// OrdersTable is the relational table holding orders.
const OrdersTable = "orders"

func (OrderRecord) TableName() string { return OrdersTable }
