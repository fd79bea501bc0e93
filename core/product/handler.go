package product

import (
	"context"
	"errors"
	"net/http"

	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/backend"
	"github.com/irsalhamdi/storefront/core/claims"
)

func HandleList(api *backend.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		products, err := List(ctx, api, claims.Token(ctx))
		if err != nil {
			return proxyError(err)
		}
		if products == nil {
			products = []Product{}
		}
		return web.Respond(ctx, w, products, http.StatusOK)
	}
}

func HandleShow(api *backend.Client) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id, err := web.ParamInt(r, "id")
		if err != nil {
			return weberr.BadRequest(err)
		}

		p, err := Fetch(ctx, api, claims.Token(ctx), id)
		if err != nil {
			return proxyError(err)
		}
		return web.Respond(ctx, w, p, http.StatusOK)
	}
}

func proxyError(err error) error {
	var se *backend.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return weberr.NotFound(err)
	}
	if errors.Is(err, backend.ErrAuth) {
		return weberr.NotAuthorized(err)
	}
	return weberr.BadGateway(err)
}
