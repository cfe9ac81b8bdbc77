package toss

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/armory-market/armory-backend/pkg/config"
	pkgerrors "github.com/armory-market/armory-backend/pkg/errors"
	"github.com/armory-market/armory-backend/pkg/logger"
)

var (
	errSecretKeyRequired = errors.New("toss secret key is required")
	errBaseURLRequired   = errors.New("toss base url is required")
)

// Client wraps the Toss Payments confirm API. There is no official Go SDK,
// so this is a minimal REST wrapper with centralized auth and error mapping.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	logger    *logger.Logger
}

// Confirmation is the subset of the provider's confirm response the
// platform acts on.
type Confirmation struct {
	PaymentKey  string `json:"paymentKey"`
	OrderID     string `json:"orderId"`
	OrderName   string `json:"orderName"`
	TotalAmount int    `json:"totalAmount"`
	Status      string `json:"status"`
	ApprovedAt  string `json:"approvedAt"`
	Failure     *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"failure,omitempty"`
}

// NewClient validates the configuration and builds the wrapper.
func NewClient(ctx context.Context, cfg config.PaymentsConfig, logg *logger.Logger) (*Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" {
		return nil, errSecretKeyRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, "toss client initialized")
	}

	return &Client{
		baseURL:   base,
		secretKey: secret,
		http:      &http.Client{Timeout: timeout},
		logger:    logg,
	}, nil
}

// Confirm approves a payment for the given order. The provider responds
// with a failure payload on declined/cancelled payments; those surface as
// state-conflict errors so callers can clean up the pending record.
func (c *Client) Confirm(ctx context.Context, paymentKey, orderID string, amount int) (*Confirmation, error) {
	if strings.TrimSpace(paymentKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment key required")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	body, err := json.Marshal(map[string]any{
		"orderId": orderID,
		"amount":  amount,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode confirm request")
	}

	url := fmt.Sprintf("%s/v1/payments/%s/confirm", c.baseURL, paymentKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build confirm request")
	}
	req.Header.Set("Authorization", "Basic "+basicAuth(c.secretKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "call payment provider")
	}
	defer resp.Body.Close()

	var confirmation Confirmation
	if err := json.NewDecoder(resp.Body).Decode(&confirmation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode confirm response")
	}

	if resp.StatusCode != http.StatusOK {
		msg := "payment confirmation failed"
		if confirmation.Failure != nil && confirmation.Failure.Message != "" {
			msg = confirmation.Failure.Message
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, msg).
			WithDetails(map[string]any{"order_id": orderID, "http_status": resp.StatusCode})
	}

	return &confirmation, nil
}

// Toss uses the secret key as the basic-auth user with an empty password.
func basicAuth(secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(secret + ":"))
}
