package resellerctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// ResellerContextKey is the request context key for the active reseller ID.
type ResellerContextKey struct{}

// WithResellerID stores the reseller ID in the context.
func WithResellerID(ctx context.Context, resellerID snowflake.ID) context.Context {
	return context.WithValue(ctx, ResellerContextKey{}, resellerID)
}

// ResellerIDFromContext returns the reseller ID from context, if set.
func ResellerIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(ResellerContextKey{}).(type) {
	case snowflake.ID:
		return typed, true
	case int64:
		return snowflake.ID(typed), true
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil {
			return parsed, true
		}
	}
	return 0, false
}
