package models

import (
	"time"

	"github.com/armory-market/armory-backend/pkg/enums"
)

// Product is a catalog listing. Immutable once seeded except for Stock,
// which is decremented by completed orders. A nil Stock means the listing
// falls back to the configured default quantity.
type Product struct {
	ID            string                `gorm:"column:id;primaryKey" json:"id"`
	Name          string                `gorm:"column:name;not null" json:"name"`
	NameLocal     string                `gorm:"column:name_local;not null" json:"name_local"`
	Description   string                `gorm:"column:description;not null" json:"description"`
	Lore          string                `gorm:"column:lore" json:"lore,omitempty"`
	PriceUnits    int                   `gorm:"column:price_units;not null" json:"price_units"`
	Category      enums.ProductCategory `gorm:"column:category;not null" json:"category"`
	ImageURL      string                `gorm:"column:image_url" json:"image_url,omitempty"`
	Damage        int                   `gorm:"column:damage;not null;default:0" json:"damage"`
	FireRate      int                   `gorm:"column:fire_rate;not null;default:0" json:"fire_rate"`
	Weight        int                   `gorm:"column:weight;not null;default:0" json:"weight"`
	IsRecommended bool                  `gorm:"column:is_recommended;not null;default:false" json:"is_recommended"`
	Stock         *int                  `gorm:"column:stock" json:"stock,omitempty"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

// DisplayName prefers the localized name when present.
func (p Product) DisplayName() string {
	if p.NameLocal != "" {
		return p.NameLocal
	}
	return p.Name
}

// AvailableStock resolves the nil-stock fallback.
func (p Product) AvailableStock(fallback int) int {
	if p.Stock == nil {
		return fallback
	}
	return *p.Stock
}
