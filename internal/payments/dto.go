package payments

import (
	"github.com/armory-market/armory-backend/pkg/db/models"
	"github.com/armory-market/armory-backend/pkg/toss"
)

// CheckoutItem is one requested line at checkout.
type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CheckoutRequest is the payload that opens a pending payment. OrderName
// overrides the derived display name when set.
type CheckoutRequest struct {
	Items        []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	Email        string         `json:"email" validate:"required,email"`
	CustomerName string         `json:"customer_name" validate:"required,min=1,max=100"`
	OrderName    string         `json:"order_name,omitempty" validate:"omitempty,max=200"`
}

// CheckoutResponse hands the client what the payment widget needs.
type CheckoutResponse struct {
	OrderID     string `json:"order_id"`
	OrderName   string `json:"order_name"`
	AmountUnits int    `json:"amount_units"`
}

// ConfirmRequest is the provider callback payload.
type ConfirmRequest struct {
	PaymentKey string `json:"payment_key" validate:"required"`
	OrderID    string `json:"order_id" validate:"required"`
	Amount     int    `json:"amount" validate:"required,gt=0"`
}

// ConfirmResponse reports the finalized order. Duplicate marks a replayed
// confirmation that was absorbed rather than re-executed.
type ConfirmResponse struct {
	Order     *models.Order      `json:"order,omitempty"`
	Duplicate bool               `json:"duplicate"`
	Receipt   *toss.Confirmation `json:"receipt,omitempty"`
}

// CancelRequest abandons a pending payment.
type CancelRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}
