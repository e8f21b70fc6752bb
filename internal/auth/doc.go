// Package auth provides authentication for the apollo-gateway MCP endpoint.
//
// # Authentication Methods
//
//   - Static tokens: configured under mcp.tokens, each mapped to a set of
//     capabilities. Sent in the URL path (/mcp/<token>) or as ?token=.
//     Looked up by the mcp package's TokenStore.
//
//   - JWT tokens: sent as "Authorization: Bearer <jwt>", signed with HS256
//     using auth.jwt_secret. The "sub" claim names the principal and the
//     "caps" claim lists its capabilities.
//
// Callers without credentials are anonymous and receive
// mcp.default_capabilities unless mcp.require_auth is set.
//
// # Capabilities
//
//   - search: people_search, organization_search, organization_job_postings
//   - enrichment: people_enrichment, organization_enrichment
//
// # Token Management
//
// Mint a token with the CLI:
//
//	apollo-gateway token --principal ops --caps search,enrichment --ttl 24h
//
// or in code:
//
//	v, err := auth.NewJWTVerifier([]byte(secret))
//	token, err := v.Generate("ops", []string{"search"}, 24*time.Hour)
//
// # Context
//
// The resolved identity travels with the request:
//
//	ctx = auth.WithAuth(ctx, &auth.AuthContext{PrincipalID: "ops", Capabilities: caps})
//	ac := auth.FromContext(ctx)
package auth
