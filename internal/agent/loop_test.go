package agent

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slideclaw/internal/deck"
	"slideclaw/internal/store"
	"slideclaw/internal/types"
)

// scriptedLLM plays back canned tool responses in order and records
// everything the loop sends it.
type scriptedLLM struct {
	t          *testing.T
	script     []*types.LLMToolResponse
	calls      int
	sessions   int
	userPrompt string
	results    [][]types.ToolResult
}

func (s *scriptedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return "", nil
}

func (s *scriptedLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", nil
}

func (s *scriptedLLM) NewToolSession(systemPrompt string, tools []types.ToolDefinition) types.ToolSession {
	s.sessions++
	return &scriptedSession{llm: s}
}

type scriptedSession struct {
	llm *scriptedLLM
}

func (s *scriptedSession) Send(ctx context.Context, userPrompt string) (*types.LLMToolResponse, error) {
	s.llm.userPrompt = userPrompt
	return s.llm.next()
}

func (s *scriptedSession) Continue(ctx context.Context, results []types.ToolResult) (*types.LLMToolResponse, error) {
	s.llm.results = append(s.llm.results, results)
	return s.llm.next()
}

func (s *scriptedLLM) next() (*types.LLMToolResponse, error) {
	if s.calls >= len(s.script) {
		// Keep issuing tool calls so exhaustion tests can run past the cap.
		return &types.LLMToolResponse{ToolCalls: []types.ToolCall{
			{ID: "call_0", Name: "list_presentations", Input: map[string]interface{}{}},
		}}, nil
	}
	resp := s.script[s.calls]
	s.calls++
	return resp, nil
}

func newTestRunner(t *testing.T, llm types.LLMClient) (*Runner, *deck.Service, *store.Store) {
	t.Helper()
	st := store.New(t.TempDir())
	svc := deck.NewService(st)
	return NewRunner(llm, NewToolset(svc, st)), svc, st
}

func toolCall(id, name string, input map[string]interface{}) types.ToolCall {
	if input == nil {
		input = map[string]interface{}{}
	}
	return types.ToolCall{ID: id, Name: name, Input: input}
}

func TestRunNoToolCallsReturnsText(t *testing.T) {
	llm := &scriptedLLM{t: t, script: []*types.LLMToolResponse{
		{Text: "Nothing to do here."},
	}}
	runner, _, _ := newTestRunner(t, llm)

	result, err := runner.Run(context.Background(), "just chat", "")
	require.NoError(t, err)
	assert.Empty(t, result.PresentationID)
	assert.Equal(t, "Nothing to do here.", result.Message)
	assert.Empty(t, llm.results)
}

func TestRunCreateFlow(t *testing.T) {
	slideHTML := "<html><head></head><body>hi</body></html>"
	llm := &scriptedLLM{t: t, script: []*types.LLMToolResponse{
		{ToolCalls: []types.ToolCall{
			toolCall("call_0", "get_design_config", nil),
			toolCall("call_1", "create_presentation", map[string]interface{}{"title": "Q3 Review"}),
		}},
		{ToolCalls: []types.ToolCall{
			toolCall("call_0", "add_slide", map[string]interface{}{
				"presentationId": "__FILL__", "title": "Intro", "html": slideHTML,
			}),
		}},
		{ToolCalls: []types.ToolCall{
			toolCall("call_0", "finish", map[string]interface{}{
				"presentationId": "__FILL__", "message": "built one slide",
			}),
		}},
	}}
	runner, svc, _ := newTestRunner(t, llm)

	// The scripted add_slide and finish calls need the real id, which is
	// only known after create_presentation runs. Patch them in lazily by
	// wrapping the llm with an id-rewriting step.
	rewriting := &idRewritingLLM{inner: llm}
	runner = NewRunner(rewriting, runner.registry)

	result, err := runner.Run(context.Background(), "make a q3 deck", "")
	require.NoError(t, err)
	assert.Equal(t, "built one slide", result.Message)
	require.NotEmpty(t, result.PresentationID)

	p, err := svc.GetPresentation(result.PresentationID)
	require.NoError(t, err)
	assert.Equal(t, "Q3 Review", p.Title)
	require.Len(t, p.Slides, 1)
	assert.Equal(t, "Intro", p.Slides[0].Title)
	assert.Equal(t, slideHTML, p.Slides[0].HTML)
}

// idRewritingLLM substitutes the id returned by create_presentation for
// the __FILL__ placeholder in later scripted calls.
type idRewritingLLM struct {
	inner     *scriptedLLM
	createdID string
}

func (l *idRewritingLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return l.inner.Complete(ctx, prompt)
}

func (l *idRewritingLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return l.inner.CompleteWithSystem(ctx, systemPrompt, userPrompt)
}

func (l *idRewritingLLM) NewToolSession(systemPrompt string, tools []types.ToolDefinition) types.ToolSession {
	return &idRewritingSession{llm: l, inner: l.inner.NewToolSession(systemPrompt, tools)}
}

type idRewritingSession struct {
	llm   *idRewritingLLM
	inner types.ToolSession
}

func (s *idRewritingSession) Send(ctx context.Context, userPrompt string) (*types.LLMToolResponse, error) {
	resp, err := s.inner.Send(ctx, userPrompt)
	return s.llm.rewrite(resp), err
}

func (s *idRewritingSession) Continue(ctx context.Context, results []types.ToolResult) (*types.LLMToolResponse, error) {
	for _, r := range results {
		if r.Name != "create_presentation" || r.IsError {
			continue
		}
		var created struct {
			ID string `json:"id"`
		}
		if json.Unmarshal([]byte(r.Content), &created) == nil {
			s.llm.createdID = created.ID
		}
	}
	resp, err := s.inner.Continue(ctx, results)
	return s.llm.rewrite(resp), err
}

func (l *idRewritingLLM) rewrite(resp *types.LLMToolResponse) *types.LLMToolResponse {
	if resp == nil {
		return nil
	}
	for _, call := range resp.ToolCalls {
		if call.Input["presentationId"] == "__FILL__" {
			call.Input["presentationId"] = l.createdID
		}
	}
	return resp
}

func TestRunFinishShortCircuitsMidBatch(t *testing.T) {
	llm := &scriptedLLM{t: t, script: []*types.LLMToolResponse{
		{ToolCalls: []types.ToolCall{
			toolCall("call_0", "finish", map[string]interface{}{"presentationId": "p-1", "message": "done"}),
			toolCall("call_1", "create_presentation", map[string]interface{}{"title": "never created"}),
		}},
	}}
	runner, svc, _ := newTestRunner(t, llm)

	result, err := runner.Run(context.Background(), "whatever", "")
	require.NoError(t, err)
	assert.Equal(t, "p-1", result.PresentationID)
	assert.Equal(t, "done", result.Message)

	// The call after finish must not have executed.
	list, _, err := svc.ListPresentations()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRunFinishDefaultsMessage(t *testing.T) {
	llm := &scriptedLLM{t: t, script: []*types.LLMToolResponse{
		{ToolCalls: []types.ToolCall{
			toolCall("call_0", "finish", map[string]interface{}{"presentationId": "p-1"}),
		}},
	}}
	runner, _, _ := newTestRunner(t, llm)

	result, err := runner.Run(context.Background(), "whatever", "")
	require.NoError(t, err)
	assert.Equal(t, "Presentation generated successfully", result.Message)
}

func TestRunToolErrorsFedBackAsContent(t *testing.T) {
	llm := &scriptedLLM{t: t, script: []*types.LLMToolResponse{
		{ToolCalls: []types.ToolCall{
			toolCall("call_0", "get_presentation", map[string]interface{}{"presentationId": "missing"}),
		}},
		{Text: "could not find it"},
	}}
	runner, _, _ := newTestRunner(t, llm)

	result, err := runner.Run(context.Background(), "show me the deck", "")
	require.NoError(t, err)
	assert.Equal(t, "could not find it", result.Message)

	require.Len(t, llm.results, 1)
	require.Len(t, llm.results[0], 1)
	fed := llm.results[0][0]
	assert.True(t, fed.IsError)

	var payload map[string]string
	require.NoError(t, json.Unmarshal([]byte(fed.Content), &payload))
	assert.NotEmpty(t, payload["error"])
}

func TestRunUnknownToolReportedNotFatal(t *testing.T) {
	llm := &scriptedLLM{t: t, script: []*types.LLMToolResponse{
		{ToolCalls: []types.ToolCall{
			toolCall("call_0", "launch_rockets", nil),
		}},
		{Text: "sorry"},
	}}
	runner, _, _ := newTestRunner(t, llm)

	result, err := runner.Run(context.Background(), "do something weird", "")
	require.NoError(t, err)
	assert.Equal(t, "sorry", result.Message)

	require.Len(t, llm.results, 1)
	fed := llm.results[0][0]
	assert.True(t, fed.IsError)
	assert.Contains(t, fed.Content, "unknown tool")
}

func TestRunTurnCapExhaustion(t *testing.T) {
	// Empty script: the fake keeps issuing tool calls forever.
	llm := &scriptedLLM{t: t}
	runner, _, _ := newTestRunner(t, llm)

	result, err := runner.Run(context.Background(), "loop forever", "")
	require.NoError(t, err)
	assert.Equal(t, "Agent completed", result.Message)
	assert.Len(t, llm.results, maxTurns)
}

func TestRunStartsFreshSessionPerRun(t *testing.T) {
	llm := &scriptedLLM{t: t, script: []*types.LLMToolResponse{
		{Text: "first"},
		{Text: "second"},
	}}
	runner, _, _ := newTestRunner(t, llm)

	_, err := runner.Run(context.Background(), "one", "")
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), "two", "")
	require.NoError(t, err)
	assert.Equal(t, 2, llm.sessions)
}

func TestRunEditPromptCarriesContext(t *testing.T) {
	llm := &scriptedLLM{t: t, script: []*types.LLMToolResponse{
		{Text: "ok"},
	}}
	runner, _, _ := newTestRunner(t, llm)

	result, err := runner.Run(context.Background(), "add a closing slide", "p-42")
	require.NoError(t, err)
	assert.Equal(t, "p-42", result.PresentationID)
	assert.Contains(t, llm.userPrompt, "presentation ID: p-42")
	assert.Contains(t, llm.userPrompt, "add a closing slide")
}

func TestToolsetDefinitions(t *testing.T) {
	st := store.New(t.TempDir())
	registry := NewToolset(deck.NewService(st), st)

	defs := registry.Definitions()
	require.Len(t, defs, 9)
	assert.Equal(t, "create_presentation", defs[0].Name)
	assert.Equal(t, "finish", defs[8].Name)

	for _, def := range defs {
		assert.Equal(t, "object", def.InputSchema["type"], def.Name)
	}
}
