package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/armory-market/armory-backend/pkg/db/models"
	dbtypes "github.com/armory-market/armory-backend/pkg/db/types"
	"github.com/armory-market/armory-backend/pkg/enums"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
)

// Summary is the history row shape shared by finalized orders and
// checkout payment records.
type Summary struct {
	OrderID    string             `json:"order_id"`
	Items      dbtypes.OrderItems `json:"items"`
	TotalUnits int                `json:"total_units"`
	Status     enums.OrderStatus  `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
}

// HistoryService resolves a customer's purchase history.
type HistoryService interface {
	History(ctx context.Context, query HistoryQuery) ([]Summary, error)
}

// HistoryQuery identifies whose history to fetch. UserID wins when both
// identifiers are present; Email serves guests known only to checkout.
type HistoryQuery struct {
	UserID uuid.UUID
	Email  string
	Limit  int
}

type orderLister interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Order, error)
}

type recordLister interface {
	ListByEmail(ctx context.Context, email string, limit int) ([]models.PaymentRecord, error)
}

type historyService struct {
	orders  orderLister
	records recordLister
}

// HistoryServiceParams bundles history dependencies.
type HistoryServiceParams struct {
	Orders  orderLister
	Records recordLister
}

// NewHistoryService constructs the history reader.
func NewHistoryService(params HistoryServiceParams) (HistoryService, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.Records == nil {
		return nil, fmt.Errorf("payment record repository is required")
	}
	return &historyService{orders: params.Orders, records: params.Records}, nil
}

func (s *historyService) History(ctx context.Context, query HistoryQuery) ([]Summary, error) {
	if query.UserID != uuid.Nil {
		orders, err := s.orders.ListByUser(ctx, query.UserID, query.Limit)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
		}
		if len(orders) > 0 {
			return sortDescending(orderSummaries(orders)), nil
		}
	}

	email := strings.ToLower(strings.TrimSpace(query.Email))
	if email == "" {
		return []Summary{}, nil
	}

	records, err := s.records.ListByEmail(ctx, email, query.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payment records")
	}
	return sortDescending(recordSummaries(records)), nil
}

func orderSummaries(orders []models.Order) []Summary {
	summaries := make([]Summary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, Summary{
			OrderID:    order.ID,
			Items:      order.Items,
			TotalUnits: order.TotalUnits,
			Status:     order.Status,
			CreatedAt:  order.CreatedAt,
		})
	}
	return summaries
}

func recordSummaries(records []models.PaymentRecord) []Summary {
	summaries := make([]Summary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, Summary{
			OrderID:    record.OrderID,
			Items:      record.Items,
			TotalUnits: record.AmountUnits,
			Status:     orderStatusFor(record.Status),
			CreatedAt:  record.CreatedAt,
		})
	}
	return summaries
}

func orderStatusFor(status enums.PaymentStatus) enums.OrderStatus {
	switch status {
	case enums.PaymentStatusCompleted:
		return enums.OrderStatusCompleted
	case enums.PaymentStatusCancelled:
		return enums.OrderStatusCancelled
	default:
		return enums.OrderStatusPending
	}
}

func sortDescending(summaries []Summary) []Summary {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].OrderID > summaries[j].OrderID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries
}
