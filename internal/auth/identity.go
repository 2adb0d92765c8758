package auth

import "context"

// Identity is the signed-in caller as seen by handlers.
type Identity struct {
	SessionID string `json:"-"`
	UserID    uint   `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
