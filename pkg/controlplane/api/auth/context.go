package auth

import "context"

type claimsContextKey struct{}

// ContextWithClaims returns a copy of ctx carrying claims, retrievable later
// via ClaimsFromContext. Used by JWTAuth middleware to hand validated claims
// down to handlers.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext returns the claims stashed by ContextWithClaims, or nil
// if the context carries none.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*Claims)
	return claims
}
