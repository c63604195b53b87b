package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"slideclaw/internal/logging"
	"slideclaw/internal/types"
)

const systemPrompt = `You are an AI presentation designer for slideclaw.

Your job is to create and manage beautiful, accessible HTML slide presentations. Each slide is a COMPLETE, SELF-CONTAINED HTML document.

Rules for generating slides:
1. Each slide MUST be a complete HTML document with <html>, <head>, and <body> tags
2. Slides are rendered at exactly 1280x720px (16:9 aspect ratio)
3. Set <html> and <body> styles to: margin: 0; padding: 0; width: 1280px; height: 720px; overflow: hidden;
4. Call get_design_config before generating slides to get the available CSS libraries and the user's preference. Use the library specified (or choose the best fit if set to 'auto').
5. You may ALWAYS additionally include: Chart.js (https://cdn.jsdelivr.net/npm/chart.js), Three.js (https://cdn.jsdelivr.net/npm/three), anime.js (https://cdn.jsdelivr.net/npm/animejs) for data and animation.
6. Inline ALL styles - no external local file imports
7. Use CSS animations and transitions freely to make slides visually engaging
8. Make slides visually stunning with rich colors, gradients, and modern design
9. Each slide should look like a professional presentation slide

Accessibility - make slides usable for everyone:
- Use semantic HTML elements: <h1>, <h2>, <p>, <ul>, <ol>, <figure>, <figcaption>, <section>, <article>
- Ensure text has sufficient contrast against its background (WCAG AA: 4.5:1 for normal text)
- Add alt attributes to all <img> elements
- Do not rely on color alone to convey meaning - use text labels or patterns too
- Prefer readable font sizes (minimum 18px for body text in slides)

When asked to create a presentation:
1. Call get_design_config to check the preferred library
2. Call create_presentation to create it
3. Call add_slide for each slide, using the chosen library's CDN tag in <head>
4. After generating ALL slides, call finish() to signal completion

When editing existing presentations, use update_slide, delete_slide, or reorder_slides as needed, then call finish().`

// maxTurns caps the tool-calling loop. When the model is still issuing
// tool calls at the cap, the run ends with whatever was built so far.
const maxTurns = 30

// Result is the outcome of one agent run.
type Result struct {
	PresentationID string `json:"presentationId,omitempty"`
	Message        string `json:"message"`
}

// Runner drives the LLM through the presentation toolset until the
// model calls finish, stops requesting tools, or runs out of turns.
type Runner struct {
	llm      types.LLMClient
	registry *Registry
}

// NewRunner creates an agent runner.
func NewRunner(llm types.LLMClient, registry *Registry) *Runner {
	return &Runner{llm: llm, registry: registry}
}

// Run executes one agent task. presentationID may be empty; when set,
// the prompt is prefixed with a context line so the model edits the
// existing presentation instead of creating a new one.
func (r *Runner) Run(ctx context.Context, prompt, presentationID string) (*Result, error) {
	startTime := time.Now()
	logging.Agent("Run: prompt_len=%d presentation_id=%q", len(prompt), presentationID)

	userPrompt := prompt
	if presentationID != "" {
		userPrompt = fmt.Sprintf("Context: You are working on presentation ID: %s\n\n%s", presentationID, prompt)
	}

	// Fresh conversation per run; concurrent runs never share history.
	session := r.llm.NewToolSession(systemPrompt, r.registry.Definitions())

	resp, err := session.Send(ctx, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("agent turn failed: %w", err)
	}

	trackedID := presentationID
	finalMessage := ""

	for turn := 0; turn < maxTurns; turn++ {
		if len(resp.ToolCalls) == 0 {
			finalMessage = resp.Text
			break
		}

		results := make([]types.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			// finish ends the run immediately, even mid-batch.
			if call.Name == "finish" {
				if id := stringArg(call.Input, "presentationId"); id != "" {
					trackedID = id
				}
				message := stringArg(call.Input, "message")
				if message == "" {
					message = "Presentation generated successfully"
				}
				logging.Agent("Run: finished in %v turns=%d presentation_id=%q", time.Since(startTime), turn+1, trackedID)
				return &Result{PresentationID: trackedID, Message: message}, nil
			}

			results = append(results, r.executeCall(ctx, call, &trackedID))
		}

		resp, err = session.Continue(ctx, results)
		if err != nil {
			return nil, fmt.Errorf("agent turn failed: %w", err)
		}
	}

	if finalMessage == "" {
		finalMessage = "Agent completed"
	}
	logging.Agent("Run: completed in %v presentation_id=%q", time.Since(startTime), trackedID)
	return &Result{PresentationID: trackedID, Message: finalMessage}, nil
}

// executeCall runs one tool call. Failures become structured error
// content for the model, never a loop abort.
func (r *Runner) executeCall(ctx context.Context, call types.ToolCall, trackedID *string) types.ToolResult {
	content, err := r.registry.Execute(ctx, call.Name, call.Input)
	if err != nil {
		logging.AgentWarn("Tool %s failed: %v", call.Name, err)
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		return types.ToolResult{
			ToolUseID: call.ID,
			Name:      call.Name,
			Content:   string(payload),
			IsError:   true,
		}
	}

	if call.Name == "create_presentation" {
		var created struct {
			ID string `json:"id"`
		}
		if json.Unmarshal([]byte(content), &created) == nil && created.ID != "" {
			*trackedID = created.ID
		}
	}

	return types.ToolResult{
		ToolUseID: call.ID,
		Name:      call.Name,
		Content:   content,
	}
}
