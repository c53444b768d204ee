package repositorycache

import (
	"context"
)

type bypassContextKey struct{}

// WithoutCache marks ctx so reads go straight to the primary store and
// nothing read under it is cached. Writes still invalidate as usual.
func WithoutCache(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, bypassContextKey{}, true)
}

func cacheBypassed(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	bypass, _ := ctx.Value(bypassContextKey{}).(bool)
	return bypass
}
