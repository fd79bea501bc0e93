package claims

import (
	"context"
	"errors"
)

// Claims is the shopper's identity as asserted by the commerce
// backend's bearer token. Token carries the raw credential so the
// backend client can forward it; the storefront never verifies the
// signature, that is the backend's job.
type Claims struct {
	UserID string
	Roles  []string
	Token  string
}

type ctxKey int

const claimsKey ctxKey = 1

func Set(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func Get(ctx context.Context) (Claims, error) {
	v, ok := ctx.Value(claimsKey).(Claims)
	if !ok {
		return Claims{}, errors.New("claim value missing from context")
	}
	return v, nil
}

// Token returns the raw bearer credential, or the empty string for an
// anonymous shopper. Proxy calls use it to attach the credential when
// present without requiring identity.
func Token(ctx context.Context) string {
	c, err := Get(ctx)
	if err != nil {
		return ""
	}
	return c.Token
}
