// Package gateway wires the apollo-gateway components together.
//
// # Overview
//
// A Gateway owns the failure store, the Apollo client, the tool registry and
// router, the MCP server and the HTTP server:
//
//	type Gateway struct {
//	    config       *config.Config
//	    store        store.Store
//	    client       *client.Client
//	    httpServer   *http.Server
//	    packRegistry *packs.Registry
//	    packRouter   *packs.Router
//	    mcpServer    *mcp.Server
//	    // ...
//	}
//
// New builds everything and prunes failures and tool calls older than
// database.failure_retention. The registry is frozen before New returns.
//
// # HTTP Endpoints
//
//	GET  /health           liveness, always "ok"
//	GET  /health/ready     200 "ready (N tools, up X)" once tools are registered
//	GET  /api/tools        tool descriptors, filtered by the caller's capabilities
//	GET  /api/failures     recorded upstream failures (limit, operation, reason, since)
//	GET  /api/usage        tool call counts by outcome (tool, principal, since)
//	POST /mcp              MCP streamable HTTP endpoint
//	POST /mcp/{token}      same, authenticated by a path token
//
// The /api routes require a bearer JWT when auth.jwt_secret is set.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return gw.Run(ctx) // blocks until ctx is canceled, then shuts down
//
// RunStdio serves every tool over MCP stdio instead of HTTP. Both close the
// store when they return.
package gateway
