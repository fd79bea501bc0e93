package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/backend"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/session"
	"github.com/irsalhamdi/storefront/validate"
)

// ItemNew adds a product to the cart. Quantity must be positive here,
// before the ledger runs: the ledger itself treats bad input as a
// contract violation, not a runtime error.
type ItemNew struct {
	ProductID int64 `json:"productId" validate:"required"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

// ItemUp edits a line's quantity. No lower bound: the ledger clamps at
// 1 instead of rejecting, matching the storefront's minus button.
type ItemUp struct {
	Quantity int `json:"quantity"`
}

type view struct {
	Items      []Line `json:"items"`
	TotalItems int    `json:"totalItems"`
	TotalPrice string `json:"totalPrice"`
}

func toView(c Cart) view {
	t := c.Totals()
	items := c.Lines
	if items == nil {
		items = []Line{}
	}
	return view{
		Items:      items,
		TotalItems: t.TotalItems,
		TotalPrice: t.TotalPrice.StringFixed(2),
	}
}

func HandleShow(store *Store, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		c := store.Load(ctx, session.Profile(ctx, sm))
		return web.Respond(ctx, w, toView(c), http.StatusOK)
	}
}

func HandleAddItem(store *Store, sm *scs.SessionManager, api *backend.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var in ItemNew
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding cart item: %w", err))
		}

		if err := validate.Check(in); err != nil {
			return weberr.Unprocessable(err, err.Error())
		}

		p, err := product.Fetch(ctx, api, claims.Token(ctx), in.ProductID)
		if err != nil {
			var se *backend.StatusError
			if errors.As(err, &se) && se.Code == http.StatusNotFound {
				return weberr.NotFound(err)
			}
			if errors.Is(err, backend.ErrAuth) {
				return weberr.NotAuthorized(err)
			}
			return weberr.BadGateway(err)
		}

		profile := session.Profile(ctx, sm)
		c := store.Load(ctx, profile).Add(Line{
			ProductID:     p.ProductID,
			Name:          p.Name,
			UnitPrice:     p.Price,
			StockQuantity: p.StockQuantity,
		}, in.Quantity)
		store.Save(ctx, profile, c)

		return web.Respond(ctx, w, toView(c), http.StatusOK)
	}
}

func HandleUpdateItem(store *Store, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID, err := web.ParamInt(r, "product_id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		var in ItemUp
		if err := web.Decode(w, r, &in); err != nil {
			return weberr.BadRequest(fmt.Errorf("decoding quantity update: %w", err))
		}

		profile := session.Profile(ctx, sm)
		c := store.Load(ctx, profile).SetQuantity(productID, in.Quantity)
		store.Save(ctx, profile, c)

		return web.Respond(ctx, w, toView(c), http.StatusOK)
	}
}

func HandleRemoveItem(store *Store, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		productID, err := web.ParamInt(r, "product_id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		profile := session.Profile(ctx, sm)
		c := store.Load(ctx, profile).Remove(productID)
		store.Save(ctx, profile, c)

		return web.Respond(ctx, w, toView(c), http.StatusOK)
	}
}

func HandleClear(store *Store, sm *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		profile := session.Profile(ctx, sm)
		store.Save(ctx, profile, Cart{})

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
