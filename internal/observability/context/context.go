package context

import "context"

type requestIDKey struct{}
type resellerIDKey struct{}

// WithRequestID stores the request ID on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// WithResellerID stores the reseller ID for log enrichment.
func WithResellerID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, resellerIDKey{}, id)
}

// ResellerIDFromContext returns the reseller ID, or "" when absent.
func ResellerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(resellerIDKey{}).(string); ok {
		return v
	}
	return ""
}
