// Package checkout sequences one purchase attempt: tokenize the card,
// submit the order built from a snapshot of the cart, interpret the
// backend's verdict and reconcile the stored cart. The cart is cleared
// on exactly one path (a confirmed PAID order); every failure leaves
// it intact so the shopper can retry.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/irsalhamdi/storefront/backend"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/order"
	"github.com/irsalhamdi/storefront/payment"
	"github.com/sirupsen/logrus"
)

type Outcome string

const (
	OutcomePending        Outcome = "PENDING"
	OutcomePaid           Outcome = "PAID"
	OutcomeRequiresAction Outcome = "REQUIRES_ACTION"
	OutcomeTokenizeFailed Outcome = "TOKENIZE_FAILED"
	OutcomeFailed         Outcome = "FAILED"
)

var (
	ErrNotReady  = errors.New("checkout is not ready to run")
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	ErrBusy      = errors.New("another checkout attempt is in flight")
)

// Attempt is one checkout invocation. Lines is the immutable snapshot
// taken at start: the submitted order matches what the shopper saw
// even if the live cart mutates while the network calls are in flight.
// Attempts are never persisted.
type Attempt struct {
	Lines         []cart.Line
	PaymentMethod string
	Outcome       Outcome
	Message       string
	OrderID       int64
}

type Orchestrator struct {
	tokenizer payment.Tokenizer
	api       *backend.Client
	store     *cart.Store
	log       logrus.FieldLogger

	// profiles with an attempt in flight; at most one per profile
	inflight sync.Map
}

func NewOrchestrator(tokenizer payment.Tokenizer, api *backend.Client, store *cart.Store, log logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		tokenizer: tokenizer,
		api:       api,
		store:     store,
		log:       log,
	}
}

// Run drives one attempt to a terminal outcome. A returned error means
// the attempt never started (guards); once the attempt runs, failures
// are reported through the Attempt's outcome and message.
func (o *Orchestrator) Run(ctx context.Context, profile, token string, card payment.Card) (Attempt, error) {
	if o.tokenizer == nil || o.api == nil {
		return Attempt{}, ErrNotReady
	}

	if _, loaded := o.inflight.LoadOrStore(profile, struct{}{}); loaded {
		return Attempt{}, ErrBusy
	}
	defer o.inflight.Delete(profile)

	snapshot := o.store.Load(ctx, profile)
	if snapshot.Empty() {
		return Attempt{}, ErrEmptyCart
	}

	att := Attempt{Lines: snapshot.Lines, Outcome: OutcomePending}

	pm, err := o.tokenizer.Tokenize(ctx, card)
	if err != nil {
		var cerr *payment.CardError
		if errors.As(err, &cerr) {
			att.Outcome = OutcomeTokenizeFailed
			att.Message = cerr.Reason
			return att, nil
		}

		o.log.WithField("profile", profile).Errorf("tokenizing card: %v", err)
		att.Outcome = OutcomeFailed
		att.Message = "the payment could not be processed, please try again"
		return att, nil
	}
	att.PaymentMethod = pm

	items := make([]order.ItemNew, 0, len(att.Lines))
	for _, l := range att.Lines {
		items = append(items, order.ItemNew{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	created, err := order.Submit(ctx, o.api, token, order.New{
		Items:           items,
		PaymentMethodID: att.PaymentMethod,
	})
	if err != nil {
		o.log.WithField("profile", profile).Errorf("submitting order: %v", err)
		att.Outcome = OutcomeFailed
		att.Message = failureMessage(err)
		return att, nil
	}

	switch created.Status {
	case order.Paid:
		att.Outcome = OutcomePaid
		att.OrderID = created.OrderID
		o.store.Save(ctx, profile, snapshot.Clear())

	case order.RequiresAction:
		// The order is not confirmed yet, keep the cart so the
		// shopper can retry if the extra step falls through.
		att.Outcome = OutcomeRequiresAction
		att.OrderID = created.OrderID
		att.Message = "the payment requires additional action, check your order history"

	default:
		att.Outcome = OutcomeFailed
		att.Message = fmt.Sprintf("the order finished with unexpected status %q", created.Status)
	}

	return att, nil
}

func failureMessage(err error) string {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Body != "" {
		return se.Body
	}
	if errors.Is(err, backend.ErrAuth) {
		return "not authorized to place the order, sign in again"
	}
	return "order placement failed, your cart was kept"
}
