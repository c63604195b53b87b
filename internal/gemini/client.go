package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"slideclaw/internal/logging"
	"slideclaw/internal/types"
)

// Config holds configuration for the Gemini client.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.5-flash",
		Timeout:         5 * time.Minute,
		MaxOutputTokens: 65536,
	}
}

// Client talks to the Gemini generateContent REST API. The client holds
// no conversation state and is safe for concurrent use; tool-calling
// history lives on the ToolSession each caller starts.
type Client struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

type pendingCall struct {
	id   string
	name string
}

var _ types.LLMClient = (*Client)(nil)

// New creates a Gemini client from config, filling in defaults for
// anything left zero.
func New(config Config) *Client {
	defaults := DefaultConfig(config.APIKey)
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = defaults.BaseURL
	}
	if strings.TrimSpace(config.Model) == "" {
		config.Model = defaults.Model
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = defaults.MaxOutputTokens
	}
	return &Client{
		apiKey:          config.APIKey,
		baseURL:         strings.TrimRight(config.BaseURL, "/"),
		model:           config.Model,
		maxOutputTokens: config.MaxOutputTokens,
		httpClient:      &http.Client{Timeout: config.Timeout},
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a prompt and returns the completion.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message.
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	startTime := time.Now()
	logging.GeminiDebug("CompleteWithSystem: model=%s system_len=%d user_len=%d", c.model, len(systemPrompt), len(userPrompt))

	reqBody := Request{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: userPrompt}}},
		},
		GenerationConfig: GenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	if systemPrompt != "" {
		reqBody.SystemInstruction = &Content{Parts: []Part{{Text: systemPrompt}}}
	}

	resp, err := c.send(ctx, reqBody)
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	var result strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	text := strings.TrimSpace(result.String())

	logging.Gemini("CompleteWithSystem: completed in %v response_len=%d", time.Since(startTime), len(text))
	return text, nil
}

// ToolSession is one tool-calling conversation against the model. It
// replays the full contents history on every turn, the way the REST API
// requires, and is owned by a single caller.
type ToolSession struct {
	client       *Client
	systemPrompt string
	tools        []types.ToolDefinition

	history   []Content
	lastCalls []pendingCall
}

var _ types.ToolSession = (*ToolSession)(nil)

// NewToolSession starts a fresh tool-calling conversation. Each agent
// run gets its own session; the client carries no exchange state.
func (c *Client) NewToolSession(systemPrompt string, tools []types.ToolDefinition) types.ToolSession {
	return &ToolSession{
		client:       c,
		systemPrompt: systemPrompt,
		tools:        tools,
	}
}

// Send opens the conversation: the user prompt plus tool declarations
// go up, text and any requested tool calls come back.
func (s *ToolSession) Send(ctx context.Context, userPrompt string) (*types.LLMToolResponse, error) {
	startTime := time.Now()
	logging.GeminiDebug("Send: model=%s tools=%d user_len=%d", s.client.model, len(s.tools), len(userPrompt))

	if len(s.history) > 0 {
		return nil, fmt.Errorf("session already started")
	}
	s.history = []Content{
		{Role: "user", Parts: []Part{{Text: userPrompt}}},
	}

	resp, err := s.client.send(ctx, s.buildRequest())
	if err != nil {
		return nil, err
	}

	result := s.consumeResponse(resp)
	logging.Gemini("Send: completed in %v text_len=%d tool_calls=%d stop_reason=%s",
		time.Since(startTime), len(result.Text), len(result.ToolCalls), result.StopReason)
	return result, nil
}

// Continue feeds tool results back into the conversation and returns
// the model's next turn. Must follow a Send (or a previous Continue)
// that returned tool calls.
func (s *ToolSession) Continue(ctx context.Context, results []types.ToolResult) (*types.LLMToolResponse, error) {
	startTime := time.Now()
	logging.GeminiDebug("Continue: model=%s results=%d", s.client.model, len(results))

	if len(s.history) == 0 {
		return nil, fmt.Errorf("no exchange in progress")
	}

	// Match results to the calls from the previous turn so that the
	// functionResponse names line up with the declared functions.
	namesByID := make(map[string]string, len(s.lastCalls))
	for _, call := range s.lastCalls {
		namesByID[call.id] = call.name
	}

	resultParts := make([]Part, 0, len(results))
	for _, tr := range results {
		name := namesByID[tr.ToolUseID]
		if name == "" {
			name = tr.Name
		}
		resultParts = append(resultParts, Part{
			FunctionResponse: &FunctionResponse{
				Name: name,
				Response: map[string]interface{}{
					"content":  tr.Content,
					"is_error": tr.IsError,
				},
			},
		})
	}

	s.history = append(s.history, Content{Role: "function", Parts: resultParts})

	resp, err := s.client.send(ctx, s.buildRequest())
	if err != nil {
		return nil, err
	}

	result := s.consumeResponse(resp)
	logging.Gemini("Continue: completed in %v text_len=%d tool_calls=%d stop_reason=%s",
		time.Since(startTime), len(result.Text), len(result.ToolCalls), result.StopReason)
	return result, nil
}

func (s *ToolSession) buildRequest() Request {
	declarations := make([]FunctionDeclaration, len(s.tools))
	for i, t := range s.tools {
		declarations[i] = FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		}
	}

	reqBody := Request{
		Contents: s.history,
		GenerationConfig: GenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: s.client.maxOutputTokens,
		},
	}
	if s.systemPrompt != "" {
		reqBody.SystemInstruction = &Content{Parts: []Part{{Text: s.systemPrompt}}}
	}
	if len(declarations) > 0 {
		reqBody.Tools = []Tool{{FunctionDeclarations: declarations}}
	}
	return reqBody
}

// consumeResponse parses the candidate into an LLMToolResponse and
// appends the model turn to the session history.
func (s *ToolSession) consumeResponse(resp *Response) *types.LLMToolResponse {
	result := &types.LLMToolResponse{
		Usage: types.UsageMetadata{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		},
	}
	s.lastCalls = nil

	if len(resp.Candidates) == 0 {
		return result
	}

	candidate := resp.Candidates[0]
	result.StopReason = candidate.FinishReason

	var textBuilder strings.Builder
	modelParts := make([]Part, 0, len(candidate.Content.Parts))
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			textBuilder.WriteString(part.Text)
			modelParts = append(modelParts, Part{Text: part.Text})
		}
		if part.FunctionCall != nil {
			id := fmt.Sprintf("call_%d", len(result.ToolCalls))
			result.ToolCalls = append(result.ToolCalls, types.ToolCall{
				ID:    id,
				Name:  part.FunctionCall.Name,
				Input: part.FunctionCall.Args,
			})
			s.lastCalls = append(s.lastCalls, pendingCall{id: id, name: part.FunctionCall.Name})
			modelParts = append(modelParts, Part{FunctionCall: part.FunctionCall})
		}
	}
	result.Text = strings.TrimSpace(textBuilder.String())

	if len(modelParts) > 0 {
		s.history = append(s.history, Content{Role: "model", Parts: modelParts})
	}
	return result
}

// send posts one generateContent request, retrying rate limits with
// exponential backoff.
func (c *Client) send(ctx context.Context, reqBody Request) (*Response, error) {
	if c.apiKey == "" {
		logging.GeminiError("send: API key not configured")
		return nil, fmt.Errorf("API key not configured")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	// Rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	maxRetries := 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-time.After(time.Duration(1<<uint(i-1)) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			logging.GeminiError("send: API returned status %d: %s", resp.StatusCode, string(body))
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var parsed Response
		if err := json.Unmarshal(body, &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}
		if parsed.Error != nil {
			return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
		}
		return &parsed, nil
	}

	logging.GeminiError("send: max retries exceeded: %v", lastErr)
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
