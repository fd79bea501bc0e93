package order

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/irsalhamdi/storefront/backend"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/shopspring/decimal"
)

type Status string

const (
	Paid           Status = "PAID"
	RequiresAction Status = "REQUIRES_ACTION"
)

// New is the order-creation payload for POST /orders on the commerce
// backend: cart lines reduced to (productId, quantity) plus the opaque
// payment-method reference from the tokenization step.
type New struct {
	Items           []ItemNew `json:"items"`
	PaymentMethodID string    `json:"paymentMethodId"`
}

type ItemNew struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Created is the backend's answer to an accepted submission. Statuses
// other than the known two are surfaced as failures by the checkout
// orchestrator.
type Created struct {
	OrderID         int64  `json:"orderId"`
	Status          Status `json:"status"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}

type Order struct {
	OrderID         int64           `json:"orderId"`
	OrderDate       time.Time       `json:"orderDate"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          Status          `json:"status"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	Items           []Item          `json:"items"`
}

type Item struct {
	OrderItemID int64           `json:"orderItemId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Submit posts the order with a fresh idempotency key, so the backend
// can dedupe a retried submission instead of double-charging.
func Submit(ctx context.Context, api *backend.Client, token string, no New) (Created, error) {
	headers := map[string]string{"Idempotency-Key": validate.GenerateID()}

	var out Created
	if err := api.Post(ctx, "/orders", token, headers, no, &out, http.StatusCreated); err != nil {
		return Created{}, fmt.Errorf("creating order: %w", err)
	}
	return out, nil
}

// History lists the shopper's past orders.
func History(ctx context.Context, api *backend.Client, token string) ([]Order, error) {
	var out []Order
	if err := api.Get(ctx, "/orders/me", token, &out); err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return out, nil
}
