package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/irsalhamdi/storefront/cartstore"
	"github.com/sirupsen/logrus"
)

// Store gives the cart durability across visits. One durable key per
// cart profile holds the serialized line items; every ledger mutation
// is flushed immediately, there is no write batching.
type Store struct {
	kv  cartstore.KV
	log logrus.FieldLogger
}

func NewStore(kv cartstore.KV, log logrus.FieldLogger) *Store {
	return &Store{kv: kv, log: log}
}

// Load hydrates the profile's cart. Missing, unreadable or corrupt
// data degrades silently to an empty cart: the storefront stays
// available, the shopper just starts fresh.
func (s *Store) Load(ctx context.Context, profile string) Cart {
	data, err := s.kv.Get(ctx, profile)
	if err != nil {
		if !errors.Is(err, cartstore.ErrNotFound) {
			s.log.WithField("profile", profile).Warnf("loading cart: %v", err)
		}
		return Cart{}
	}

	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		s.log.WithField("profile", profile).Warnf("discarding corrupt cart: %v", err)
		return Cart{}
	}

	return Cart{Lines: lines}
}

// Save writes the full cart value. A write failure is logged and
// swallowed; the in-memory cart stays authoritative for the session
// even if durability is lost.
func (s *Store) Save(ctx context.Context, profile string, c Cart) {
	if c.Empty() {
		if err := s.kv.Delete(ctx, profile); err != nil && !errors.Is(err, cartstore.ErrNotFound) {
			s.log.WithField("profile", profile).Errorf("deleting cart: %v", err)
		}
		return
	}

	data, err := json.Marshal(c.Lines)
	if err != nil {
		s.log.WithField("profile", profile).Errorf("marshaling cart: %v", err)
		return
	}

	if err := s.kv.Set(ctx, profile, data); err != nil {
		s.log.WithField("profile", profile).Errorf("saving cart: %v", err)
	}
}
