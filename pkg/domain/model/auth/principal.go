package auth

import (
	"context"

	"github.com/laurel-hq/laurel/pkg/domain/types"
)

// Principal is the authenticated caller of an API request
type Principal struct {
	Subject string // directory object ID of the caller
	Email   string
	Name    string
	Roles   []types.Role
}

// HasRole returns true if any of the principal's roles satisfies required
func (p *Principal) HasRole(required types.Role) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r.Satisfies(required) {
			return true
		}
	}
	return false
}

// NewDevelopmentPrincipal returns the admin principal used when
// authentication is disabled
func NewDevelopmentPrincipal(subject string) *Principal {
	return &Principal{
		Subject: subject,
		Name:    "development",
		Roles:   []types.Role{types.RoleAdmin},
	}
}

type ctxPrincipalKey struct{}

// ContextWithPrincipal stores the principal in the context
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey{}, p)
}

// PrincipalFromContext returns the principal, or nil when unauthenticated
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(ctxPrincipalKey{}).(*Principal)
	return p
}
