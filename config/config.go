package config

import "time"

type Config struct {
	Web      Web
	Cors     Cors
	Backend  Backend
	Stripe   Stripe
	Cart     Cart
	Session  Session
	Checkout Checkout
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:4000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:30s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

type Cors struct {
	Origin string
}

// Backend locates the remote commerce API the storefront consumes.
type Backend struct {
	URL     string        `conf:"default:http://localhost:8080/api"`
	Timeout time.Duration `conf:"default:10s"`
}

type Stripe struct {
	APISecret string `conf:"mask"`
}

// Cart selects the durable cart storage. Driver is one of file, redis
// or postgres; only the matching connection setting is used.
type Cart struct {
	Driver string `conf:"default:file"`
	Dir    string `conf:"default:data/carts"`
	Redis  string `conf:"default:localhost:6379"`
	DB     string `conf:"mask"`
}

type Session struct {
	Lifetime time.Duration `conf:"default:720h"`
}

// Checkout throttles attempts per cart profile.
type Checkout struct {
	RateBurst    int           `conf:"default:3"`
	RateInterval time.Duration `conf:"default:2s"`
	RateExpiry   time.Duration `conf:"default:1h"`
}
