package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
	"github.com/irsalhamdi/storefront/api/middleware"
	"github.com/irsalhamdi/storefront/api/web"
	"github.com/irsalhamdi/storefront/backend"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/checkout"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/order"
	"github.com/irsalhamdi/storefront/core/product"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/irsalhamdi/storefront/session"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin string
	Log        logrus.FieldLogger
	Session    *scs.SessionManager
	Store      *cart.Store
	Backend    *backend.Client
	Checkout   *checkout.Orchestrator
	Limiter    *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, session.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, claims.Parse())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	authen := claims.Authenticate()

	a.Handle(http.MethodGet, "/products", product.HandleList(cfg.Backend))
	a.Handle(http.MethodGet, "/products/{id}", product.HandleShow(cfg.Backend))

	a.Handle(http.MethodGet, "/cart", cart.HandleShow(cfg.Store, cfg.Session))
	a.Handle(http.MethodDelete, "/cart", cart.HandleClear(cfg.Store, cfg.Session))
	a.Handle(http.MethodPost, "/cart/items", cart.HandleAddItem(cfg.Store, cfg.Session, cfg.Backend))
	a.Handle(http.MethodPut, "/cart/items/{product_id}", cart.HandleUpdateItem(cfg.Store, cfg.Session))
	a.Handle(http.MethodDelete, "/cart/items/{product_id}", cart.HandleRemoveItem(cfg.Store, cfg.Session))

	a.Handle(http.MethodPost, "/checkout", checkout.HandleCheckout(cfg.Checkout, cfg.Session), authen, middleware.RateLimit(cfg.Limiter, cfg.Session))

	a.Handle(http.MethodGet, "/orders", order.HandleHistory(cfg.Backend), authen)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
