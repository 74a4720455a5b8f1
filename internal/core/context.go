package core

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	requestIDKey contextKey = "request-id"
	resourceKey  contextKey = "resource"
	cacheKeyKey  contextKey = "cache-key"
)

// WithRequestID returns a new context with the request ID attached.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithResource tags the context with the resource and cache key an upstream
// call is being made for.
func WithResource(ctx context.Context, resource Resource, cacheKey string) context.Context {
	ctx = context.WithValue(ctx, resourceKey, resource)
	return context.WithValue(ctx, cacheKeyKey, cacheKey)
}

// GetResource returns the resource tag, or empty if none was set.
func GetResource(ctx context.Context) Resource {
	if v, ok := ctx.Value(resourceKey).(Resource); ok {
		return v
	}
	return ""
}

// GetCacheKey returns the cache key tag, or empty if none was set.
func GetCacheKey(ctx context.Context) string {
	if v, ok := ctx.Value(cacheKeyKey).(string); ok {
		return v
	}
	return ""
}
