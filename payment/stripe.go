package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

type Stripe struct {
	api *stripecl.API
}

func NewStripe(api *stripecl.API) *Stripe {
	return &Stripe{api: api}
}

func (s *Stripe) Tokenize(ctx context.Context, card Card) (string, error) {
	params := &stripe.PaymentMethodParams{
		Params: stripe.Params{Context: ctx},
		Type:   stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCardParams{
			Number:   stripe.String(card.Number),
			ExpMonth: stripe.Int64(card.ExpMonth),
			ExpYear:  stripe.Int64(card.ExpYear),
			CVC:      stripe.String(card.CVC),
		},
	}

	pm, err := s.api.PaymentMethods.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Type == stripe.ErrorTypeCard {
			msg := serr.Msg
			if msg == "" {
				msg = "the card was declined"
			}
			return "", &CardError{Reason: msg}
		}
		return "", fmt.Errorf("creating payment method: %w", err)
	}

	return pm.ID, nil
}
