// Package payment turns raw card input into an opaque payment-method
// reference. The storefront never sees or stores the card beyond this
// exchange; the reference is what travels to the commerce backend.
package payment

import "context"

// Card is the raw instrument collected from the shopper.
type Card struct {
	Number   string `json:"number" validate:"required,credit_card"`
	ExpMonth int64  `json:"expMonth" validate:"required,min=1,max=12"`
	ExpYear  int64  `json:"expYear" validate:"required,min=2000"`
	CVC      string `json:"cvc" validate:"required,numeric,min=3,max=4"`
}

// CardError is a tokenization-level rejection (invalid number, expired
// card). Reason is the service's human-readable message, shown to the
// shopper as-is.
type CardError struct {
	Reason string
}

func (e *CardError) Error() string { return e.Reason }

type Tokenizer interface {
	Tokenize(ctx context.Context, card Card) (string, error)
}
