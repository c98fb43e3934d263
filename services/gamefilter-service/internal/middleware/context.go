package middleware

import (
	"context"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
)

type contextKey int

const (
	userSessionKey contextKey = iota
	userKey
	roleErrorKey
)

// UserSessionFromContext returns the session resolved by Authorize.
func UserSessionFromContext(ctx context.Context) (*model.UserSession, bool) {
	s, ok := ctx.Value(userSessionKey).(*model.UserSession)
	return s, ok && s != nil
}

// UserFromContext returns the user resolved by Authorize.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}

// WithAuth attaches a resolved session and user to ctx.
func WithAuth(ctx context.Context, session *model.UserSession, user *model.User) context.Context {
	ctx = context.WithValue(ctx, userSessionKey, session)
	return context.WithValue(ctx, userKey, user)
}

// RoleErrorFromContext returns the decision of the last RequireRole stage.
// A nil error means the role requirement was met.
func RoleErrorFromContext(ctx context.Context) error {
	err, _ := ctx.Value(roleErrorKey).(error)
	return err
}
