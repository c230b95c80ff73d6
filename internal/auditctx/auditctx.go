package auditctx

import "context"

// Actor describes the client behind an unauthenticated account request.
type Actor struct {
	RequestID string
	IPAddress string
	UserAgent string
}

type actorContextKey struct{}

// WithActor returns a derived context carrying the actor for audit logging.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// FromContext extracts previously stored actor metadata from the context.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
