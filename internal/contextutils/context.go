package contextutils

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	builderKey   contextKey = "response_builder"
)

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds the request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetUserID retrieves the acting user's ID from the context
func GetUserID(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

// WithUserID adds the acting user's ID to the context
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetBuilder retrieves the response builder from the context. The
// concrete type lives in the response package; this indirection keeps
// contextutils dependency-free.
func GetBuilder(ctx context.Context) interface{} {
	return ctx.Value(builderKey)
}

// WithBuilder stores the response builder in the context
func WithBuilder(ctx context.Context, builder interface{}) context.Context {
	return context.WithValue(ctx, builderKey, builder)
}
