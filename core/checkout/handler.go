package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/payment"
	"github.com/irsalhamdi/storefront/session"
	"github.com/irsalhamdi/storefront/validate"
)

type attemptView struct {
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
	OrderID int64   `json:"orderId,omitempty"`
}

// HandleCheckout runs one attempt for the current profile. Outcomes
// map to statuses: Paid 201, RequiresAction 202, TokenizeFailed 422,
// Failed 502; guard rejections never reach the attempt.
func HandleCheckout(orch *Orchestrator, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var card payment.Card
		if err := web.Decode(w, r, &card); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding card input: %w", err))
		}

		if err := validate.Check(card); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		att, err := orch.Run(ctx, session.Profile(ctx, sm), clm.Token, card)
		switch {
		case errors.Is(err, ErrBusy):
			return weberr.NewError(err, "a checkout attempt is already in progress", http.StatusConflict)
		case errors.Is(err, ErrEmptyCart):
			return weberr.Unprocessable(err, "the cart is empty, nothing to checkout")
		case errors.Is(err, ErrNotReady):
			return weberr.NewError(err, "checkout is not available right now", http.StatusServiceUnavailable)
		case err != nil:
			return err
		}

		body := attemptView{Outcome: att.Outcome, Message: att.Message, OrderID: att.OrderID}

		switch att.Outcome {
		case OutcomePaid:
			return web.Respond(ctx, w, body, http.StatusCreated)
		case OutcomeRequiresAction:
			return web.Respond(ctx, w, body, http.StatusAccepted)
		case OutcomeTokenizeFailed:
			return web.Respond(ctx, w, body, http.StatusUnprocessableEntity)
		default:
			return web.Respond(ctx, w, body, http.StatusBadGateway)
		}
	}
}
