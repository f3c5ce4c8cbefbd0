package auth

import (
	"context"

	"claimflow/internal/models"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the caller as asserted by a verified token.
type Identity struct {
	UserID string
	Name   string
	Role   models.Role
}

func (i Identity) HasRole(roles ...models.Role) bool {
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
