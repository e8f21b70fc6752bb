// Package packs provides the operation surface: named tools, their input
// schemas, and dispatch.
//
// # Architecture
//
//   - Registry: tracks built-in packs and their tool descriptors
//   - Router: validates arguments and dispatches calls by name
//   - Built-in packs: gateway-provided tools (see internal/builtins)
//
// # Tool Routing
//
// When a host calls a tool, the router:
//
//  1. Looks up the tool by name (unknown name => ErrToolNotFound)
//  2. Validates the arguments against the tool's resolved JSON Schema
//  3. Runs the handler, which decodes strictly, normalizes and validates the
//     query, then calls the upstream
//  4. Returns a Result with a flattened payload, or with Absent set
//
// The three outcomes stay distinct: ErrToolNotFound, an error wrapping
// apollo.ErrInvalidQuery, and Result.Absent.
//
// When RouterConfig.Usage is set, every call that reaches a registered tool
// is recorded as a store.ToolCall with the caller's principal (from
// auth.FromContext) and its outcome. Unknown tool names are not recorded.
//
// # Capabilities
//
// Each tool lists required capabilities. GetToolsForCapabilities returns
// only tools whose requirements are all held; transports enforce the same
// check before calling Invoke.
//
// # Usage
//
//	registry := packs.NewRegistry(logger)
//	if err := registry.RegisterBuiltinPack(builtins.ApolloPack(c)); err != nil {
//	    return err
//	}
//	registry.Freeze()
//	router := packs.NewRouter(packs.RouterConfig{Registry: registry, Logger: logger})
//	result, err := router.Invoke(ctx, "organization_enrichment", args)
package packs
