package payments

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/armory-market/armory-backend/internal/catalog"
	"github.com/armory-market/armory-backend/pkg/config"
	"github.com/armory-market/armory-backend/pkg/db"
	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/enums"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
	"github.com/armory-market/armory-backend/pkg/toss"
)

type fakeGateway struct {
	confirm func(ctx context.Context, paymentKey, orderID string, amount int) (*toss.Confirmation, error)
	calls   int
}

func (f *fakeGateway) Confirm(ctx context.Context, paymentKey, orderID string, amount int) (*toss.Confirmation, error) {
	f.calls++
	if f.confirm != nil {
		return f.confirm(ctx, paymentKey, orderID, amount)
	}
	return &toss.Confirmation{
		PaymentKey:  paymentKey,
		OrderID:     orderID,
		TotalAmount: amount,
		Status:      "DONE",
	}, nil
}

func newPaymentsHarness(t *testing.T) (Service, *db.Client, *fakeGateway) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Order{}, &models.PaymentRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	client := db.NewFromConn(conn)
	if err := catalog.NewRepository(conn).Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gateway := &fakeGateway{}
	svc, err := NewService(ServiceParams{
		DB:      client,
		Gateway: gateway,
		Config:  config.AssistantConfig{DefaultStock: 10},
		Rand:    rand.New(rand.NewSource(7)),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, client, gateway
}

func checkout(t *testing.T, svc Service, items []CheckoutItem) *CheckoutResponse {
	t.Helper()
	resp, err := svc.Checkout(context.Background(), nil, CheckoutRequest{
		Items:        items,
		Email:        "buyer@example.com",
		CustomerName: "Buyer",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	return resp
}

func TestCheckoutCreatesPendingRecord(t *testing.T) {
	svc, client, _ := newPaymentsHarness(t)

	resp := checkout(t, svc, []CheckoutItem{
		{ProductID: "1", Quantity: 2},
		{ProductID: "4", Quantity: 1},
	})

	if !strings.HasPrefix(resp.OrderID, "order_") {
		t.Fatalf("unexpected order id %q", resp.OrderID)
	}
	if resp.AmountUnits != 2*2500+5800 {
		t.Fatalf("unexpected amount %d", resp.AmountUnits)
	}
	if resp.OrderName != "그림자 글록 외 1건" {
		t.Fatalf("unexpected order name %q", resp.OrderName)
	}

	record, err := NewRepository(client.DB()).FindByOrderID(context.Background(), resp.OrderID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if record.Status != enums.PaymentStatusPending {
		t.Fatalf("expected pending record, got %s", record.Status)
	}
	if record.Items.Total() != resp.AmountUnits {
		t.Fatalf("record items total %d != amount %d", record.Items.Total(), resp.AmountUnits)
	}
}

func TestCheckoutRejectsInsufficientStock(t *testing.T) {
	svc, _, _ := newPaymentsHarness(t)

	_, err := svc.Checkout(context.Background(), nil, CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: "1", Quantity: 11}},
		Email:        "buyer@example.com",
		CustomerName: "Buyer",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCheckoutRejectsUnknownProduct(t *testing.T) {
	svc, _, _ := newPaymentsHarness(t)

	_, err := svc.Checkout(context.Background(), nil, CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: "99", Quantity: 1}},
		Email:        "buyer@example.com",
		CustomerName: "Buyer",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConfirmFinalizesOrderAndDecrementsStock(t *testing.T) {
	svc, client, gateway := newPaymentsHarness(t)
	userID := uuid.New()

	resp, err := svc.Checkout(context.Background(), &userID, CheckoutRequest{
		Items:        []CheckoutItem{{ProductID: "1", Quantity: 3}},
		Email:        "buyer@example.com",
		CustomerName: "Buyer",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	confirmed, err := svc.Confirm(context.Background(), ConfirmRequest{
		PaymentKey: "pay_abc",
		OrderID:    resp.OrderID,
		Amount:     resp.AmountUnits,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Duplicate {
		t.Fatal("first confirm must not be a duplicate")
	}
	if confirmed.Order == nil || confirmed.Order.Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed order, got %+v", confirmed.Order)
	}
	if confirmed.Order.UserID != userID {
		t.Fatalf("order must carry the checkout user, got %s", confirmed.Order.UserID)
	}
	if gateway.calls != 1 {
		t.Fatalf("expected one gateway call, got %d", gateway.calls)
	}

	product, err := catalog.NewRepository(client.DB()).FindByID(context.Background(), "1")
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	if product.Stock == nil || *product.Stock != 7 {
		t.Fatalf("expected stock 7 after sale, got %v", product.Stock)
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc, _, gateway := newPaymentsHarness(t)

	resp := checkout(t, svc, []CheckoutItem{{ProductID: "1", Quantity: 1}})
	req := ConfirmRequest{PaymentKey: "pay_abc", OrderID: resp.OrderID, Amount: resp.AmountUnits}

	first, err := svc.Confirm(context.Background(), req)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	second, err := svc.Confirm(context.Background(), req)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("replayed confirm must be reported as duplicate")
	}
	if second.Order == nil || second.Order.ID != first.Order.ID {
		t.Fatalf("duplicate confirm must return the original order, got %+v", second.Order)
	}
	if gateway.calls != 1 {
		t.Fatalf("replay must not hit the gateway again, calls=%d", gateway.calls)
	}
}

func TestConfirmRejectsAmountMismatch(t *testing.T) {
	svc, _, gateway := newPaymentsHarness(t)

	resp := checkout(t, svc, []CheckoutItem{{ProductID: "1", Quantity: 1}})

	_, err := svc.Confirm(context.Background(), ConfirmRequest{
		PaymentKey: "pay_abc",
		OrderID:    resp.OrderID,
		Amount:     resp.AmountUnits + 100,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gateway.calls != 0 {
		t.Fatal("mismatched amount must never reach the gateway")
	}
}

func TestConfirmUnknownOrder(t *testing.T) {
	svc, _, _ := newPaymentsHarness(t)

	_, err := svc.Confirm(context.Background(), ConfirmRequest{
		PaymentKey: "pay_abc",
		OrderID:    "order_missing",
		Amount:     100,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCancelPendingPayment(t *testing.T) {
	svc, client, _ := newPaymentsHarness(t)

	resp := checkout(t, svc, []CheckoutItem{{ProductID: "1", Quantity: 1}})

	if err := svc.Cancel(context.Background(), CancelRequest{OrderID: resp.OrderID}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	record, err := NewRepository(client.DB()).FindByOrderID(context.Background(), resp.OrderID)
	if err != nil {
		t.Fatalf("load record: %v", err)
	}
	if record.Status != enums.PaymentStatusCancelled {
		t.Fatalf("expected cancelled, got %s", record.Status)
	}

	// Cancelling again is a no-op, confirming afterwards is rejected.
	if err := svc.Cancel(context.Background(), CancelRequest{OrderID: resp.OrderID}); err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
	_, err = svc.Confirm(context.Background(), ConfirmRequest{
		PaymentKey: "pay_abc",
		OrderID:    resp.OrderID,
		Amount:     resp.AmountUnits,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelCompletedPaymentRejected(t *testing.T) {
	svc, _, _ := newPaymentsHarness(t)

	resp := checkout(t, svc, []CheckoutItem{{ProductID: "1", Quantity: 1}})
	if _, err := svc.Confirm(context.Background(), ConfirmRequest{
		PaymentKey: "pay_abc",
		OrderID:    resp.OrderID,
		Amount:     resp.AmountUnits,
	}); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	err := svc.Cancel(context.Background(), CancelRequest{OrderID: resp.OrderID})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
