package auth

import (
	"context"

	"github.com/google/uuid"
)

// Role is a coarse permission level carried in tokens
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleService Role = "service"
)

// UserContext holds authenticated caller information. Every request is
// bound to exactly one organization.
type UserContext struct {
	Subject        string
	DisplayName    string
	OrganizationID uuid.UUID
	Roles          []Role
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// OrganizationID returns the organization of the authenticated caller
func OrganizationID(ctx context.Context) (uuid.UUID, bool) {
	user, ok := FromContext(ctx)
	if !ok || user.OrganizationID == uuid.Nil {
		return uuid.Nil, false
	}
	return user.OrganizationID, true
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the caller may run maintenance operations
func (u *UserContext) IsAdmin() bool {
	return u.HasRole(RoleAdmin) || u.HasRole(RoleService)
}

// RolesAsStrings returns roles as a slice of strings
func (u *UserContext) RolesAsStrings() []string {
	result := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		result[i] = string(role)
	}
	return result
}
