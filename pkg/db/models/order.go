package models

import (
	"time"

	dbtypes "github.com/armory-market/armory-backend/pkg/db/types"
	"github.com/armory-market/armory-backend/pkg/enums"
	"github.com/google/uuid"
)

// Order is a finalized purchase. TotalUnits must equal Items.Total();
// the orders service enforces the invariant on every write.
type Order struct {
	ID         string             `gorm:"column:id;primaryKey"`
	UserID     uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Items      dbtypes.OrderItems `gorm:"column:items;type:jsonb;not null"`
	TotalUnits int                `gorm:"column:total_units;not null"`
	Status     enums.OrderStatus  `gorm:"column:status;not null"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
