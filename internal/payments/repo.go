package payments

import (
	"context"

	"gorm.io/gorm"

	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/enums"
)

// Repository exposes payment-record persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a payments repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create persists a new pending record keyed by order id.
func (r *Repository) Create(ctx context.Context, record *models.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByOrderID loads the record bridging checkout and confirmation.
func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := r.db.WithContext(ctx).First(&record, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ClaimStatus conditionally advances the record from one status to another.
// Returns false when another writer already moved it, which is how replayed
// confirmations are detected without row locks.
func (r *Repository) ClaimStatus(ctx context.Context, orderID string, from, to enums.PaymentStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentRecord{}).
		Where("order_id = ? AND status = ?", orderID, from).
		UpdateColumn("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByEmail returns a customer's records, newest first. Order history
// falls back to this surface for guests without a directory entry.
func (r *Repository) ListByEmail(ctx context.Context, email string, limit int) ([]models.PaymentRecord, error) {
	q := r.db.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Order("order_id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var records []models.PaymentRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
