package payments

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armory-market/armory-backend/internal/catalog"
	"github.com/armory-market/armory-backend/internal/orders"
	"github.com/armory-market/armory-backend/pkg/config"
	"github.com/armory-market/armory-backend/pkg/db"
	"github.com/armory-market/armory-backend/pkg/db/models"
	dbtypes "github.com/armory-market/armory-backend/pkg/db/types"
	"github.com/armory-market/armory-backend/pkg/enums"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
	"github.com/armory-market/armory-backend/pkg/logger"
	"github.com/armory-market/armory-backend/pkg/toss"
)

// Service runs the checkout and payment confirmation flows.
type Service interface {
	Checkout(ctx context.Context, userID *uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error)
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error)
	Cancel(ctx context.Context, req CancelRequest) error
}

type confirmClient interface {
	Confirm(ctx context.Context, paymentKey, orderID string, amount int) (*toss.Confirmation, error)
}

type service struct {
	db      *db.Client
	gateway confirmClient
	cfg     config.AssistantConfig
	logg    *logger.Logger
	now     func() time.Time
	rand    *rand.Rand
}

// ServiceParams bundles the payment service dependencies.
type ServiceParams struct {
	DB      *db.Client
	Gateway confirmClient
	Config  config.AssistantConfig
	Logger  *logger.Logger
	Now     func() time.Time
	Rand    *rand.Rand
}

// NewService constructs a payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway client is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		db:      params.DB,
		gateway: params.Gateway,
		cfg:     params.Config,
		logg:    params.Logger,
		now:     now,
		rand:    params.Rand,
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID *uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	customerName := strings.TrimSpace(req.CustomerName)
	if customerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	catalogRepo := catalog.NewRepository(s.db.DB())
	items, total, err := s.resolveItems(ctx, catalogRepo, req.Items)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.OrderName)
	if displayName == "" {
		displayName = orderName(items)
	}

	orderID := s.newOrderID()
	record := &models.PaymentRecord{
		OrderID:      orderID,
		UserID:       userID,
		Email:        email,
		CustomerName: customerName,
		OrderName:    displayName,
		AmountUnits:  total,
		Items:        items,
		Status:       enums.PaymentStatusPending,
	}
	if err := NewRepository(s.db.DB()).Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment record")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     orderID,
			"amount_units": total,
			"line_count":   len(items),
		})
		s.logg.Info(logCtx, "checkout.pending_created")
	}

	return &CheckoutResponse{
		OrderID:     orderID,
		OrderName:   record.OrderName,
		AmountUnits: total,
	}, nil
}

func (s *service) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	records := NewRepository(s.db.DB())
	record, err := records.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment record")
	}

	switch record.Status {
	case enums.PaymentStatusCompleted:
		return s.duplicateResponse(ctx, record.OrderID)
	case enums.PaymentStatusCancelled:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment was cancelled")
	}

	if req.Amount != record.AmountUnits {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount does not match order").
			WithDetails(map[string]any{"expected": record.AmountUnits, "received": req.Amount})
	}

	receipt, err := s.gateway.Confirm(ctx, req.PaymentKey, req.OrderID, req.Amount)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	duplicate := false
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRecords := NewRepository(tx)
		claimed, err := txRecords.ClaimStatus(ctx, record.OrderID, enums.PaymentStatusPending, enums.PaymentStatusCompleted)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim payment record")
		}
		if !claimed {
			duplicate = true
			return nil
		}

		txCatalog := catalog.NewRepository(tx)
		for _, item := range record.Items {
			ok, err := txCatalog.DecrementStock(ctx, item.ProductID, item.Quantity, s.defaultStock())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}
		}

		userID := uuid.Nil
		if record.UserID != nil {
			userID = *record.UserID
		}
		order = &models.Order{
			ID:         record.OrderID,
			UserID:     userID,
			Items:      record.Items,
			TotalUnits: record.AmountUnits,
			Status:     enums.OrderStatusCompleted,
		}
		if err := orders.NewRepository(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		return s.duplicateResponse(ctx, record.OrderID)
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":     record.OrderID,
			"amount_units": record.AmountUnits,
		})
		s.logg.Info(logCtx, "payment.confirmed")
	}

	return &ConfirmResponse{Order: order, Receipt: receipt}, nil
}

func (s *service) Cancel(ctx context.Context, req CancelRequest) error {
	records := NewRepository(s.db.DB())
	record, err := records.FindByOrderID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment record")
	}
	if record.Status == enums.PaymentStatusCancelled {
		return nil
	}
	if record.Status == enums.PaymentStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment already completed")
	}

	claimed, err := records.ClaimStatus(ctx, req.OrderID, enums.PaymentStatusPending, enums.PaymentStatusCancelled)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel payment record")
	}
	if !claimed {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment is no longer pending")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id", req.OrderID), "payment.cancelled")
	}
	return nil
}

func (s *service) duplicateResponse(ctx context.Context, orderID string) (*ConfirmResponse, error) {
	order, err := orders.NewRepository(s.db.DB()).FindByID(ctx, orderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return &ConfirmResponse{Order: order, Duplicate: true}, nil
}

func (s *service) resolveItems(ctx context.Context, repo *catalog.Repository, requested []CheckoutItem) (dbtypes.OrderItems, int, error) {
	var items dbtypes.OrderItems
	total := 0
	for _, line := range requested {
		product, err := repo.FindByID(ctx, strings.TrimSpace(line.ProductID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown product %q", line.ProductID))
			}
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}
		if line.Quantity <= 0 {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if product.AvailableStock(s.defaultStock()) < line.Quantity {
			return nil, 0, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
				WithDetails(map[string]any{"product_id": product.ID})
		}
		items = append(items, dbtypes.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			NameLocal:  product.NameLocal,
			PriceUnits: product.PriceUnits,
			Quantity:   line.Quantity,
		})
		total += product.PriceUnits * line.Quantity
	}
	return items, total, nil
}

func (s *service) defaultStock() int {
	if s.cfg.DefaultStock > 0 {
		return s.cfg.DefaultStock
	}
	return 10
}

func (s *service) newOrderID() string {
	suffix := randomBase36(s.rand, 9)
	return fmt.Sprintf("order_%d_%s", s.now().UnixMilli(), suffix)
}

func orderName(items dbtypes.OrderItems) string {
	if len(items) == 0 {
		return ""
	}
	first := items[0].NameLocal
	if first == "" {
		first = items[0].Name
	}
	if len(items) == 1 {
		return first
	}
	return fmt.Sprintf("%s 외 %d건", first, len(items)-1)
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomBase36(r *rand.Rand, length int) string {
	intn := rand.Intn
	if r != nil {
		intn = r.Intn
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		b.WriteByte(base36Alphabet[intn(len(base36Alphabet))])
	}
	return b.String()
}
