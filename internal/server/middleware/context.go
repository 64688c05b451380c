package middleware

import (
	"context"

	"github.com/KaiWedekind/Portus/internal/domain"
)

type contextKey string

const ContextKeyPrincipal contextKey = "principal"

// WithPrincipal returns a context carrying the acting principal.
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// PrincipalFromContext returns the principal resolved by the Auth
// middleware, or nil when the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(ContextKeyPrincipal).(*domain.Principal)
	return p
}
