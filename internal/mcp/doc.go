// Package mcp exposes the gateway's tools to Model Context Protocol hosts.
//
// # Transports
//
// Server implements the Streamable HTTP transport (protocol versions
// 2025-03-26 and 2025-11-25) as JSON-RPC 2.0 over POST:
//
//   - POST /mcp or /mcp/<token>: initialize, ping, tools/list, tools/call, notifications
//   - DELETE /mcp: terminate the session named by Mcp-Session-Id
//
// initialize returns an Mcp-Session-Id header that every later request must
// carry. Notifications are acknowledged with 202 and no body.
//
// StdioServer serves the same tools over stdin/stdout using the
// modelcontextprotocol/go-sdk server, for hosts that launch the gateway as a
// subprocess.
//
// # Authentication
//
// A session's identity is fixed at initialize, from the first of:
//
//   - a static token in the path: /mcp/<token>
//   - a static token in the query: /mcp?token=<token>
//   - Authorization: Bearer <token>, either a static token or an HS256 JWT
//     whose "caps" claim lists capabilities
//
// A credential that does not resolve is rejected, never downgraded to
// anonymous. Without credentials the session is anonymous and receives
// Config.DefaultCaps, or every capability when that is empty, unless
// Config.RequireAuth is set.
//
// # Tool Execution
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "organization_enrichment",
//	    "arguments": {"query": {"domain": "apollo.io"}}
//	  },
//	  "id": 2
//	}
//
// Outcomes:
//
//   - success: the payload as JSON text plus structuredContent
//   - absence: the text "null"
//   - invalid arguments: isError with the validation message
//   - unknown tool: JSON-RPC error -32602 "tool not found"
//
// # Integration with Claude Desktop
//
//	{
//	  "mcpServers": {
//	    "apollo": {"command": "apollo-gateway", "args": ["stdio"]}
//	  }
//	}
package mcp
