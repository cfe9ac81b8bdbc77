package models

import (
	"time"

	dbtypes "github.com/armory-market/armory-backend/pkg/db/types"
	"github.com/armory-market/armory-backend/pkg/enums"
	"github.com/google/uuid"
)

// PaymentRecord bridges order creation and the asynchronous payment
// confirmation callback. It is keyed by the globally-unique order id
// generated before handoff, and is also queryable by email so order
// history can fall back to it for customers without a directory entry.
type PaymentRecord struct {
	OrderID      string              `gorm:"column:order_id;primaryKey"`
	UserID       *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	Email        string              `gorm:"column:email;not null;index"`
	CustomerName string              `gorm:"column:customer_name;not null"`
	OrderName    string              `gorm:"column:order_name;not null"`
	AmountUnits  int                 `gorm:"column:amount_units;not null"`
	Items        dbtypes.OrderItems  `gorm:"column:items;type:jsonb;not null"`
	Status       enums.PaymentStatus `gorm:"column:status;not null"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
