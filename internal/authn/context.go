package authn

import (
	"context"
	"slices"
)

// Principal is the request-scoped authenticated identity: the login plus
// the role set resolved at validation time. It is never persisted.
type Principal struct {
	Login string
	Roles []string
}

// HasRole reports membership in the resolved role set.
func (p *Principal) HasRole(name string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Roles, name)
}

type ctxKey int

const ctxPrincipal ctxKey = iota

// WithPrincipal attaches a principal to the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFrom returns the request principal, if one was attached.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
