package axon

import (
	"slices"
	"time"
)

// Role is an authorization role carried by an identity
type Role string

// Visibility is the coarse access level of a route
type Visibility int

const (
	// RequiresAuthentication is the zero value so routes without a rule stay closed
	RequiresAuthentication Visibility = iota
	Public
)

// String returns the visibility name
func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "authenticated"
}

// AccessRule is the access policy attached to a route
type AccessRule struct {
	Visibility Visibility
	// Roles is an allow-list; empty means any authenticated identity
	Roles []Role
}

// PublicAccess returns a rule that skips authentication
func PublicAccess() *AccessRule {
	return &AccessRule{Visibility: Public}
}

// RequireRoles returns a rule that requires authentication and one of roles
func RequireRoles(roles ...Role) *AccessRule {
	return &AccessRule{Visibility: RequiresAuthentication, Roles: roles}
}

// IsPublic reports whether the rule skips authentication. A nil rule is not public.
func (r *AccessRule) IsPublic() bool {
	return r != nil && r.Visibility == Public
}

// Identity is the verified principal attached to a request
type Identity struct {
	SubjectID string
	Email     string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Authenticator verifies the Authorization header of a request.
// Verify returns nil when the header does not carry a valid token.
type Authenticator interface {
	Verify(header string) *Identity
}

// DenyReason explains why Decide rejected a request
type DenyReason int

const (
	NotDenied DenyReason = iota
	Unauthenticated
	Forbidden
)

// Decision is the outcome of an access check
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// DefaultAccessRule is applied to routes declared without any access flag
func DefaultAccessRule() *AccessRule {
	return &AccessRule{Visibility: RequiresAuthentication}
}

// Decide applies an access rule to an identity. A nil rule allows the request;
// the dispatcher never passes nil and substitutes DefaultAccessRule instead.
func Decide(rule *AccessRule, identity *Identity) Decision {
	if rule == nil || rule.Visibility == Public {
		return Decision{Allowed: true}
	}
	if identity == nil {
		return Decision{Reason: Unauthenticated}
	}
	if len(rule.Roles) == 0 {
		return Decision{Allowed: true}
	}
	if slices.Contains(rule.Roles, identity.Role) {
		return Decision{Allowed: true}
	}
	return Decision{Reason: Forbidden}
}
