package shared

import (
	"context"

	"github.com/google/uuid"
	"github.com/usersync/users-service/internal/service/auth"
)

// Key type for context values
type ContextKey string

// Context keys for values placed on the request context by middleware.
const (
	// ActorIDContextKey holds the internal ID of the authenticated caller.
	ActorIDContextKey ContextKey = "actorID"

	// IdentityContextKey holds the verified external identity (*auth.Identity).
	IdentityContextKey ContextKey = "identity"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a fresh trace ID to the context, reusing incoming when it
// is non-empty. Trace IDs correlate log lines with error responses.
func SetTraceID(ctx context.Context, incoming string) context.Context {
	traceID := incoming
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithActorID stores the caller's internal user ID.
func WithActorID(ctx context.Context, actorID int64) context.Context {
	return context.WithValue(ctx, ActorIDContextKey, actorID)
}

// ActorID returns the caller's internal user ID, if one was resolved.
func ActorID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ActorIDContextKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// WithIdentity stores the verified external identity.
func WithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, identity)
}

// IdentityFrom returns the verified external identity, if any.
func IdentityFrom(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(IdentityContextKey).(*auth.Identity)
	if !ok || identity == nil || identity.ExternalID == "" {
		return nil, false
	}
	return identity, true
}
