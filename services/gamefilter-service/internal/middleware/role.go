package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/vasapolrittideah/gamefilter-api/services/gamefilter-service/internal/model"
)

// Role gate errors. Their messages are the reasons sent to clients.
var (
	ErrBadRole      = errors.New("bad_role")
	ErrBadRoleSpec  = errors.New("bad_role_spec")
	ErrMissingUser  = errors.New("missing_user")
	ErrMissingRoles = errors.New("missing_roles")
)

// RoleSpec is a role requirement. When both lists are set both must hold.
type RoleSpec struct {
	Any []string
	All []string
}

// AnyOf requires at least one of roles.
func AnyOf(roles ...string) RoleSpec {
	return RoleSpec{Any: roles}
}

// AllOf requires every one of roles.
func AllOf(roles ...string) RoleSpec {
	return RoleSpec{All: roles}
}

// ValidateRole checks user against spec. Owners pass every spec.
func ValidateRole(spec RoleSpec, user *model.User) error {
	if user == nil {
		return ErrMissingUser
	}
	if user.Roles == nil {
		return ErrMissingRoles
	}
	if user.HasRole(model.RoleOwner) {
		return nil
	}
	if len(spec.Any) == 0 && len(spec.All) == 0 {
		return ErrBadRoleSpec
	}

	for _, role := range spec.All {
		if !user.HasRole(role) {
			return ErrBadRole
		}
	}
	if len(spec.Any) > 0 && !slices.ContainsFunc(spec.Any, user.HasRole) {
		return ErrBadRole
	}

	return nil
}

// RoleStatus maps a role gate error to its HTTP status.
func RoleStatus(err error) int {
	if errors.Is(err, ErrBadRole) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// RequireRole records whether the authorized user satisfies spec. It never
// writes a response: handlers read the decision with RoleErrorFromContext.
func RequireRole(spec RoleSpec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			err := ValidateRole(spec, user)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), roleErrorKey, err)))
		})
	}
}
