package session

import (
	"context"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/models"
)

type userKey struct{}

// WithUser returns a copy of ctx carrying u as the request identity.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the identity bound to ctx, or nil.
func UserFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey{}).(*models.User)
	return u
}
