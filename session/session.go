// Package session binds the shopper's browser to a stable cart
// profile id. The profile id plays the role a browser profile plays
// for localStorage: it keys the durable cart, it is not an identity.
package session

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/random"
)

const profileKey = "cart_profile"

// LoadAndSave adapts the scs middleware to the web.Handler chain.
func LoadAndSave(sm *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			wrapped := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				err = handler(r.Context(), w, r)
			}))
			wrapped.ServeHTTP(w, r)

			return err
		}
		return h
	}
	return m
}

// Profile returns the cart profile id bound to the current session,
// minting one on first use.
func Profile(ctx context.Context, sm *scs.SessionManager) string {
	id := sm.GetString(ctx, profileKey)
	if id == "" {
		id = random.String(24)
		sm.Put(ctx, profileKey, id)
	}
	return id
}
