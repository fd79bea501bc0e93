package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexedwards/scs/v2"
	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/storefront/api"
	"github.com/irsalhamdi/storefront/backend"
	"github.com/irsalhamdi/storefront/cartstore"
	"github.com/irsalhamdi/storefront/config"
	"github.com/irsalhamdi/storefront/core/cart"
	"github.com/irsalhamdi/storefront/core/checkout"
	"github.com/irsalhamdi/storefront/payment"
	"github.com/irsalhamdi/storefront/rate"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	stripecl "github.com/stripe/stripe-go/v74/client"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(logger *logrus.Logger) error {
	logger.Infof("starting storefront")
	defer logger.Info("shutdown complete")

	const prefix = "STOREFRONT"
	var cfg config.Config
	if _, err := conf.Parse(prefix, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	kv, err := openCartKV(cfg.Cart)
	if err != nil {
		return fmt.Errorf("opening cart storage: %w", err)
	}
	store := cart.NewStore(kv, logger)

	// Without a Stripe key the storefront still browses and carts,
	// checkout just reports not ready.
	var tokenizer payment.Tokenizer
	if cfg.Stripe.APISecret != "" {
		strp := &stripecl.API{}
		strp.Init(cfg.Stripe.APISecret, nil)
		tokenizer = payment.NewStripe(strp)
	} else {
		logger.Warn("no stripe api secret configured, checkout is disabled")
	}

	bk := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logger)

	orch := checkout.NewOrchestrator(tokenizer, bk, store, logger)

	limiter := rate.NewLimiter(cfg.Checkout.RateBurst, cfg.Checkout.RateExpiry, rate.Every(cfg.Checkout.RateInterval))
	defer limiter.Stop()

	sessionManager := scs.New()
	sessionManager.Lifetime = cfg.Session.Lifetime

	mux := api.APIMux(api.APIConfig{
		CorsOrigin: cfg.Cors.Origin,
		Log:        logger,
		Session:    sessionManager,
		Store:      store,
		Backend:    bk,
		Checkout:   orch,
		Limiter:    limiter,
	})

	srv := http.Server{
		Handler:      mux,
		Addr:         cfg.Web.Address,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Infof("starting api router at %s", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Infof("shutting down: signal %s", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}
	return nil
}

func openCartKV(cfg config.Cart) (cartstore.KV, error) {
	switch cfg.Driver {
	case "file":
		return cartstore.NewFileKV(cfg.Dir)

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis})
		return cartstore.NewRedisKV(client), nil

	case "postgres":
		db, err := cartstore.OpenPostgres(cfg.DB)
		if err != nil {
			return nil, err
		}
		return cartstore.NewPostgresKV(db), nil
	}

	return nil, fmt.Errorf("unknown cart driver %q", cfg.Driver)
}
