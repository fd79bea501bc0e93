package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/api/weberr"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/irsalhamdi/storefront/session"
)

// RateLimit throttles a route per cart profile. Wired on the checkout
// route so a stuck UI cannot hammer the tokenization service.
func RateLimit(l *rate.Limiter, sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			if !l.Check(session.Profile(ctx, sm)) {
				return weberr.TooManyRequests(errors.New("rate limit exceeded"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
