// Package types holds the shared data model and the contracts between
// slideclaw's packages. It is deliberately dependency-free so that store,
// deck, agent, export, and server can all import it without cycles.
package types

import "context"

// Slide is one self-contained HTML document plus metadata and a position
// within a presentation. HTML is a complete document (html/head/body) with
// no external local-file references; it renders at exactly 1280x720.
type Slide struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	HTML      string `json:"html"`
	Notes     string `json:"notes,omitempty"`
	Order     int    `json:"order"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Presentation is an ordered collection of slides with descriptive
// metadata. It owns its slides exclusively; no slide exists outside a
// presentation. Timestamps are RFC3339 UTC strings to stay byte-compatible
// with the web client's stored documents.
type Presentation struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Slides      []Slide `json:"slides"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// SlideCount returns the number of slides.
func (p *Presentation) SlideCount() int { return len(p.Slides) }

// DesignLibraryAuto is the sentinel meaning "let the agent choose".
const DesignLibraryAuto = "auto"

// DesignConfig is the single global record holding the user's preferred
// CSS library key. It is read on every agent design consultation and
// overwritten wholesale on update.
type DesignConfig struct {
	Library string `json:"library"`
}

// DefaultDesignConfig returns the config used when none has been saved.
func DefaultDesignConfig() DesignConfig {
	return DesignConfig{Library: DesignLibraryAuto}
}

// PresentationSummary is the list-view projection of a presentation.
type PresentationSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	SlideCount  int    `json:"slideCount"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// Summarize projects a presentation to its list form.
func Summarize(p *Presentation) PresentationSummary {
	return PresentationSummary{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		SlideCount:  len(p.Slides),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// LLMClient defines the interface for the generative-model service.
// The client itself is safe for concurrent use; conversation state
// lives on the ToolSession each caller starts for itself.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// NewToolSession starts a fresh tool-calling conversation with the
	// given system prompt and tool declarations.
	NewToolSession(systemPrompt string, tools []ToolDefinition) ToolSession
}

// ToolSession is one tool-calling conversation. A session tracks its
// own history and is not safe for concurrent use; each agent run owns
// exactly one.
type ToolSession interface {
	// Send opens the conversation with the user prompt and returns the
	// model's first turn.
	Send(ctx context.Context, userPrompt string) (*LLMToolResponse, error)
	// Continue feeds tool results back and returns the model's next
	// turn. Must follow a Send (or Continue) that returned tool calls.
	Continue(ctx context.Context, results []ToolResult) (*LLMToolResponse, error)
}

// ToolDefinition describes a tool that the LLM can invoke.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"` // JSON Schema for parameters
}

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

// ToolResult is the outcome of executing one tool call, fed back to the
// model as a structured message. Errors are content, not failures: a bad
// call must not abort the turn.
type ToolResult struct {
	ToolUseID string `json:"tool_use_id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

// UsageMetadata captures token usage metrics from the LLM.
type UsageMetadata struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// LLMToolResponse contains both text response and tool calls from the LLM.
type LLMToolResponse struct {
	Text       string        `json:"text"`
	ToolCalls  []ToolCall    `json:"tool_calls"`
	StopReason string        `json:"stop_reason"`
	Usage      UsageMetadata `json:"usage"`
}
