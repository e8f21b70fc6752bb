// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithAuth/FromContext for propagating auth info via context

package auth

import (
	"context"
)

// Authentication methods recorded on an AuthContext.
const (
	MethodStaticToken = "static_token"
	MethodJWT         = "jwt"
	MethodAnonymous   = "anonymous"
)

// AuthContext holds the authenticated identity of an MCP caller.
type AuthContext struct {
	PrincipalID  string   // "sub" of a JWT, or a token label; empty when anonymous
	Capabilities []string // capabilities granted to the caller
	Method       string   // one of the Method* constants
}

// HasCapabilities reports whether every required capability is granted.
func (a *AuthContext) HasCapabilities(required []string) bool {
	if a == nil {
		return len(required) == 0
	}
	granted := make(map[string]struct{}, len(a.Capabilities))
	for _, c := range a.Capabilities {
		granted[c] = struct{}{}
	}
	for _, r := range required {
		if _, ok := granted[r]; !ok {
			return false
		}
	}
	return true
}

// authContextKey is the key type for storing AuthContext in context.Context.
type authContextKey struct{}

// WithAuth returns a new context with the AuthContext attached.
func WithAuth(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// FromContext retrieves the AuthContext from the context, returning nil if not present.
func FromContext(ctx context.Context) *AuthContext {
	auth, _ := ctx.Value(authContextKey{}).(*AuthContext)
	return auth
}
