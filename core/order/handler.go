package order

import (
	"context"
	"errors"
	"net/http"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/backend"
	"github.com/irsalhamdi/storefront/core/claims"
)

// HandleHistory proxies the shopper's past orders from the backend.
func HandleHistory(api *backend.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		orders, err := History(ctx, api, clm.Token)
		if err != nil {
			if errors.Is(err, backend.ErrAuth) {
				return weberr.NotAuthorized(err)
			}
			return weberr.BadGateway(err)
		}
		if orders == nil {
			orders = []Order{}
		}
		return web.Respond(ctx, w, orders, http.StatusOK)
	}
}
