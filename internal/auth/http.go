// ABOUTME: HTTP helpers for bearer-token authentication
// ABOUTME: Extracts the JWT from the Authorization header and guards HTTP handlers

package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Bearer header errors
var (
	ErrMissingAuthorization   = errors.New("missing authorization header")
	ErrMalformedAuthorization = errors.New("invalid authorization header format")
)

// ExtractBearerToken extracts a bearer token from an Authorization header value.
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthorization
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedAuthorization
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedAuthorization
	}
	return token, nil
}

// HTTPAuthMiddleware rejects requests without a valid bearer JWT and attaches
// the caller's AuthContext to the request context.
func HTTPAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ExtractBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				writeAuthError(w, err.Error())
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				writeAuthError(w, "invalid or expired token")
				return
			}
			ctx := WithAuth(r.Context(), &AuthContext{
				PrincipalID:  claims.PrincipalID,
				Capabilities: claims.Capabilities,
				Method:       MethodJWT,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="apollo-gateway"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
