package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"slideclaw/internal/logging"
	"slideclaw/internal/types"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Items       *PropertyItems `json:"items,omitempty"`
}

// PropertyItems describes the schema for array elements.
type PropertyItems struct {
	Type string `json:"type"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	Required   []string            `json:"required"`
	Properties map[string]Property `json:"properties"`
}

// ToMap renders the schema as the generic JSON-schema object the LLM
// API expects.
func (s ToolSchema) ToMap() map[string]interface{} {
	properties := make(map[string]interface{}, len(s.Properties))
	for name, prop := range s.Properties {
		p := map[string]interface{}{
			"type":        prop.Type,
			"description": prop.Description,
		}
		if prop.Items != nil {
			p["items"] = map[string]interface{}{"type": prop.Items.Type}
		}
		properties[name] = p
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(s.Required) > 0 {
		schema["required"] = s.Required
	}
	return schema
}

// ExecuteFunc is the signature for tool execution. Returns the result
// as a JSON string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]interface{}) (string, error)

// Tool is one callable operation exposed to the model.
type Tool struct {
	Name        string
	Description string
	Schema      ToolSchema
	Execute     ExecuteFunc
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tool name is empty")
	}
	if t.Execute == nil {
		return fmt.Errorf("tool %s has no execute function", t.Name)
	}
	return nil
}

// Registry holds all available tools. It is thread-safe and supports
// registration at runtime.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
	order []string
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool *Tool) error {
	if err := tool.Validate(); err != nil {
		return fmt.Errorf("invalid tool: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool already registered: %s", tool.Name)
	}

	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)

	logging.AgentDebug("Registered tool: %s", tool.Name)
	return nil
}

// MustRegister registers a tool and panics on error.
// Use this for static tool registration at init time.
func (r *Registry) MustRegister(tool *Tool) {
	if err := r.Register(tool); err != nil {
		panic(fmt.Sprintf("failed to register tool %s: %v", tool.Name, err))
	}
}

// Get returns a tool by name, or nil if not found.
func (r *Registry) Get(name string) *Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// Has returns true if a tool with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Definitions renders all tools as LLM tool definitions, in
// registration order.
func (r *Registry) Definitions() []types.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]types.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		defs = append(defs, types.ToolDefinition{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: tool.Schema.ToMap(),
		})
	}
	return defs
}

// Execute runs a tool by name with the given arguments. Missing tools
// and missing required arguments are reported as errors.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	tool := r.Get(name)
	if tool == nil {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	if err := validateArgs(tool, args); err != nil {
		return "", err
	}

	start := time.Now()
	logging.AgentDebug("Executing tool: %s", name)
	result, err := tool.Execute(ctx, args)
	logging.AgentDebug("Tool %s completed in %v (success=%v)", name, time.Since(start), err == nil)
	return result, err
}

// validateArgs checks that all required arguments are present.
func validateArgs(tool *Tool, args map[string]interface{}) error {
	for _, required := range tool.Schema.Required {
		if _, ok := args[required]; !ok {
			return fmt.Errorf("missing required argument: %s", required)
		}
	}
	return nil
}
