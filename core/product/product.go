package product

import (
	"context"
	"fmt"

	"github.com/irsalhamdi/storefront/backend"
	"github.com/shopspring/decimal"
)

// Product is the catalog shape served by the commerce backend. The
// storefront reads it, never stores it; the cart keeps its own
// snapshot of the fields it needs.
type Product struct {
	ProductID     int64           `json:"productId"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity"`
}

// The catalog is browsable anonymously, but a signed-in shopper's
// bearer still travels with every call, like the rest of the backend
// contract. token may be empty.

func List(ctx context.Context, api *backend.Client, token string) ([]Product, error) {
	var out []Product
	if err := api.Get(ctx, "/products", token, &out); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return out, nil
}

func Fetch(ctx context.Context, api *backend.Client, token string, id int64) (Product, error) {
	var out Product
	if err := api.Get(ctx, fmt.Sprintf("/products/%d", id), token, &out); err != nil {
		return Product{}, fmt.Errorf("fetching product[%d]: %w", id, err)
	}
	return out, nil
}
