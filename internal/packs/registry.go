// ABOUTME: Thread-safe registry of built-in tool packs and their descriptors.
// ABOUTME: Rejects name collisions, freezes after startup, and filters by capability.

package packs

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// ErrToolCollision indicates a tool name already exists from another pack.
var ErrToolCollision = errors.New("tool name collision")

// ErrRegistryFrozen indicates registration was attempted after Freeze.
var ErrRegistryFrozen = errors.New("registry is frozen")

// ErrInvalidTool indicates a descriptor that cannot be registered.
var ErrInvalidTool = errors.New("invalid tool definition")

// Registry maintains the set of registered tools.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]*builtinEntry // tool name -> entry
	frozen   bool
	logger   *slog.Logger
}

// NewRegistry creates a new Registry instance.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		builtins: make(map[string]*builtinEntry),
		logger:   logger,
	}
}

// RegisterBuiltinPack registers a pack of built-in tools. Input schemas are
// resolved here so invocation never pays for it. The pack is registered
// whole or not at all.
func (r *Registry) RegisterBuiltinPack(pack *BuiltinPack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}

	entries := make(map[string]*builtinEntry, len(pack.Tools))
	for _, tool := range pack.Tools {
		if tool == nil || tool.Definition == nil || tool.Definition.Name == "" || tool.Handler == nil {
			return fmt.Errorf("%w: pack '%s' has a tool without name or handler", ErrInvalidTool, pack.ID)
		}
		name := tool.Definition.Name
		if existing, exists := r.builtins[name]; exists {
			return fmt.Errorf("%w: tool '%s' already registered by pack '%s'", ErrToolCollision, name, existing.PackID)
		}
		if _, exists := entries[name]; exists {
			return fmt.Errorf("%w: tool '%s' appears twice in pack '%s'", ErrToolCollision, name, pack.ID)
		}
		if tool.Definition.InputSchema == nil {
			return fmt.Errorf("%w: tool '%s' has no input schema", ErrInvalidTool, name)
		}
		resolved, err := tool.Definition.InputSchema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("%w: resolving schema for '%s': %v", ErrInvalidTool, name, err)
		}
		entries[name] = &builtinEntry{Tool: tool, PackID: pack.ID, schema: resolved}
	}

	for name, entry := range entries {
		r.builtins[name] = entry
	}

	r.logger.Info("=== BUILTIN PACK REGISTERED ===",
		"pack_id", pack.ID,
		"tool_count", len(pack.Tools),
		"total_tools", len(r.builtins),
	)
	return nil
}

// Freeze makes the registry read-only. Safe to call more than once.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// GetBuiltinTool returns a builtin tool by name, or nil if not found.
func (r *Registry) GetBuiltinTool(name string) *BuiltinTool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if entry, ok := r.builtins[name]; ok {
		return entry.Tool
	}
	return nil
}

// lookup returns the full entry for dispatch.
func (r *Registry) lookup(name string) *builtinEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.builtins[name]
}

// IsBuiltin returns true if the tool name is a builtin tool.
func (r *Registry) IsBuiltin(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builtins[name]
	return ok
}

// BuiltinPackInfo contains information about a registered builtin pack for display.
type BuiltinPackInfo struct {
	ID    string
	Tools []*BuiltinTool
}

// ListBuiltinPacks returns all registered packs sorted by ID, tools sorted by name.
func (r *Registry) ListBuiltinPacks() []BuiltinPackInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Group tools by pack ID
	packTools := make(map[string][]*BuiltinTool)
	for _, entry := range r.builtins {
		packTools[entry.PackID] = append(packTools[entry.PackID], entry.Tool)
	}

	result := make([]BuiltinPackInfo, 0, len(packTools))
	for packID, tools := range packTools {
		sortTools(tools)
		result = append(result, BuiltinPackInfo{
			ID:    packID,
			Tools: tools,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// GetAllTools returns every registered descriptor sorted by name.
func (r *Registry) GetAllTools() []*ToolDefinition {
	return r.definitions(func(*ToolDefinition) bool { return true })
}

// GetToolsForCapabilities returns descriptors whose required capabilities are
// all held. Tools without required capabilities are always included.
func (r *Registry) GetToolsForCapabilities(caps []string) []*ToolDefinition {
	// Build a set of capabilities for fast lookup
	capSet := make(map[string]struct{}, len(caps))
	for _, c := range caps {
		capSet[c] = struct{}{}
	}
	return r.definitions(func(def *ToolDefinition) bool {
		return HasAllCapabilities(def.RequiredCapabilities, capSet)
	})
}

func (r *Registry) definitions(keep func(*ToolDefinition) bool) []*ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*ToolDefinition
	for _, entry := range r.builtins {
		if keep(entry.Tool.Definition) {
			result = append(result, entry.Tool.Definition)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// HasAllCapabilities checks if the capability set contains all required capabilities.
func HasAllCapabilities(required []string, capSet map[string]struct{}) bool {
	for _, req := range required {
		if _, has := capSet[req]; !has {
			return false
		}
	}
	return true
}

func sortTools(tools []*BuiltinTool) {
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Definition.Name < tools[j].Definition.Name
	})
}
