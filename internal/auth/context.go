package auth

import (
	"context"

	"github.com/tuncrm/crm-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID uint
	Email  string
	Name   string
	Role   domain.Role
}

type contextKey string

const (
	userContextKey contextKey = "userContext"
	callerSlotKey  contextKey = "callerSlot"
)

// WithUserContext adds user context to the context and reports it to an
// enclosing TrackCaller.
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	if slot, ok := ctx.Value(callerSlotKey).(**UserContext); ok {
		*slot = user
	}
	return context.WithValue(ctx, userContextKey, user)
}

// TrackCaller lets middleware that runs before authentication learn who the
// caller was once the request has been served.
func TrackCaller(ctx context.Context) (context.Context, func() *UserContext) {
	var user *UserContext
	return context.WithValue(ctx, callerSlotKey, &user), func() *UserContext { return user }
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// UserIDFromContext returns the caller's id, or 0 for anonymous contexts
func UserIDFromContext(ctx context.Context) uint {
	if user, ok := FromContext(ctx); ok {
		return user.UserID
	}
	return 0
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.Role) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// CanManageUsers reports whether the user may create, edit or remove accounts
func (u *UserContext) CanManageUsers() bool {
	return u.HasAnyRole(domain.RoleAdmin, domain.RoleManager)
}
