// ABOUTME: MCP token store for mapping static tokens to principals and capabilities.
// ABOUTME: Tokens come from configuration and are checked on MCP requests.

package mcp

import (
	"sync"

	"github.com/2389/apollo-gateway/internal/auth"
)

type tokenEntry struct {
	principal    string
	capabilities []string
}

// TokenStore manages static MCP access tokens and their associated capabilities.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]tokenEntry
}

// NewTokenStore creates a new token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]tokenEntry),
	}
}

// Add registers a caller-chosen token. An existing token is replaced.
func (s *TokenStore) Add(token, principal string, capabilities []string) {
	s.mu.Lock()
	s.tokens[token] = tokenEntry{principal: principal, capabilities: cloneStrings(capabilities)}
	s.mu.Unlock()
}

// Lookup returns the identity bound to token, or nil if the token is unknown.
func (s *TokenStore) Lookup(token string) *auth.AuthContext {
	s.mu.RLock()
	entry, ok := s.tokens[token]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	return &auth.AuthContext{
		PrincipalID:  entry.principal,
		Capabilities: cloneStrings(entry.capabilities),
		Method:       auth.MethodStaticToken,
	}
}

// TokenCount returns the number of configured tokens.
func (s *TokenStore) TokenCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
