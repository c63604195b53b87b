package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slideclaw/internal/types"
)

// fakeGemini captures every request body and plays back canned responses
// in order.
type fakeGemini struct {
	t         *testing.T
	requests  []Request
	responses []string
	status    int
}

func (f *fakeGemini) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.requests = append(f.requests, req)

		if f.status != 0 {
			http.Error(w, `{"error":{"code":429,"message":"quota"}}`, f.status)
			return
		}

		idx := len(f.requests) - 1
		require.Less(f.t, idx, len(f.responses), "more requests than canned responses")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(f.responses[idx]))
	}
}

func newTestClient(t *testing.T, fake *fakeGemini) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "test-key", BaseURL: srv.URL})
}

const textOnlyResponse = `{
	"candidates": [{"content": {"parts": [{"text": "  hello world  "}], "role": "model"}, "finishReason": "STOP"}],
	"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
}`

const toolCallResponse = `{
	"candidates": [{"content": {"parts": [
		{"text": "creating it"},
		{"functionCall": {"name": "create_presentation", "args": {"title": "Q3 Review"}}}
	], "role": "model"}, "finishReason": "STOP"}],
	"usageMetadata": {"promptTokenCount": 20, "candidatesTokenCount": 8, "totalTokenCount": 28}
}`

func TestCompleteWithSystem(t *testing.T) {
	fake := &fakeGemini{t: t, responses: []string{textOnlyResponse}}
	client := newTestClient(t, fake)

	got, err := client.CompleteWithSystem(context.Background(), "be brief", "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	require.NotNil(t, req.SystemInstruction)
	assert.Equal(t, "be brief", req.SystemInstruction.Parts[0].Text)
	require.Len(t, req.Contents, 1)
	assert.Equal(t, "user", req.Contents[0].Role)
	assert.Equal(t, "say hello", req.Contents[0].Parts[0].Text)
}

func TestCompleteMissingAPIKey(t *testing.T) {
	client := New(Config{})
	_, err := client.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestCompleteNon200(t *testing.T) {
	fake := &fakeGemini{t: t, status: http.StatusInternalServerError}
	client := newTestClient(t, fake)

	_, err := client.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSessionSendParsesCalls(t *testing.T) {
	fake := &fakeGemini{t: t, responses: []string{toolCallResponse}}
	client := newTestClient(t, fake)

	tools := []types.ToolDefinition{{
		Name:        "create_presentation",
		Description: "Create a presentation",
		InputSchema: map[string]interface{}{"type": "object"},
	}}

	resp, err := client.NewToolSession("sys", tools).Send(context.Background(), "make a deck")
	require.NoError(t, err)
	assert.Equal(t, "creating it", resp.Text)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_0", resp.ToolCalls[0].ID)
	assert.Equal(t, "create_presentation", resp.ToolCalls[0].Name)
	assert.Equal(t, "Q3 Review", resp.ToolCalls[0].Input["title"])
	assert.Equal(t, 28, resp.Usage.TotalTokens)

	require.Len(t, fake.requests, 1)
	req := fake.requests[0]
	require.Len(t, req.Tools, 1)
	require.Len(t, req.Tools[0].FunctionDeclarations, 1)
	assert.Equal(t, "create_presentation", req.Tools[0].FunctionDeclarations[0].Name)
}

func TestSessionContinueReplaysHistory(t *testing.T) {
	fake := &fakeGemini{t: t, responses: []string{toolCallResponse, textOnlyResponse}}
	client := newTestClient(t, fake)

	tools := []types.ToolDefinition{{Name: "create_presentation", Description: "d"}}
	session := client.NewToolSession("sys", tools)

	first, err := session.Send(context.Background(), "make a deck")
	require.NoError(t, err)
	require.Len(t, first.ToolCalls, 1)

	results := []types.ToolResult{{
		ToolUseID: first.ToolCalls[0].ID,
		Name:      first.ToolCalls[0].Name,
		Content:   `{"id":"p1"}`,
	}}

	second, err := session.Continue(context.Background(), results)
	require.NoError(t, err)
	assert.Equal(t, "hello world", second.Text)
	assert.Empty(t, second.ToolCalls)

	require.Len(t, fake.requests, 2)
	req := fake.requests[1]
	// user turn, model turn with the function call, function turn with the result
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "user", req.Contents[0].Role)
	assert.Equal(t, "model", req.Contents[1].Role)
	assert.Equal(t, "function", req.Contents[2].Role)

	fnResp := req.Contents[2].Parts[0].FunctionResponse
	require.NotNil(t, fnResp)
	assert.Equal(t, "create_presentation", fnResp.Name)
	assert.Equal(t, `{"id":"p1"}`, fnResp.Response["content"])
	assert.Equal(t, false, fnResp.Response["is_error"])
}

func TestSessionContinueWithoutSendFails(t *testing.T) {
	client := New(Config{APIKey: "k"})
	_, err := client.NewToolSession("sys", nil).Continue(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no exchange in progress")
}

// Interleaved sessions from one shared client must keep separate
// histories; a request for one conversation never carries the other's
// turns.
func TestSessionsFromSharedClientAreIndependent(t *testing.T) {
	fake := &fakeGemini{t: t, responses: []string{
		toolCallResponse, toolCallResponse, textOnlyResponse, textOnlyResponse,
	}}
	client := newTestClient(t, fake)

	tools := []types.ToolDefinition{{Name: "create_presentation", Description: "d"}}
	sessionA := client.NewToolSession("sys-a", tools)
	sessionB := client.NewToolSession("sys-b", tools)

	firstA, err := sessionA.Send(context.Background(), "deck A")
	require.NoError(t, err)
	firstB, err := sessionB.Send(context.Background(), "deck B")
	require.NoError(t, err)

	_, err = sessionA.Continue(context.Background(), []types.ToolResult{{
		ToolUseID: firstA.ToolCalls[0].ID,
		Name:      firstA.ToolCalls[0].Name,
		Content:   `{"id":"a1"}`,
	}})
	require.NoError(t, err)
	_, err = sessionB.Continue(context.Background(), []types.ToolResult{{
		ToolUseID: firstB.ToolCalls[0].ID,
		Name:      firstB.ToolCalls[0].Name,
		Content:   `{"id":"b1"}`,
	}})
	require.NoError(t, err)

	require.Len(t, fake.requests, 4)

	reqA := fake.requests[2]
	require.Len(t, reqA.Contents, 3)
	assert.Equal(t, "deck A", reqA.Contents[0].Parts[0].Text)
	assert.Equal(t, "sys-a", reqA.SystemInstruction.Parts[0].Text)
	assert.Equal(t, `{"id":"a1"}`, reqA.Contents[2].Parts[0].FunctionResponse.Response["content"])

	reqB := fake.requests[3]
	require.Len(t, reqB.Contents, 3)
	assert.Equal(t, "deck B", reqB.Contents[0].Parts[0].Text)
	assert.Equal(t, "sys-b", reqB.SystemInstruction.Parts[0].Text)
	assert.Equal(t, `{"id":"b1"}`, reqB.Contents[2].Parts[0].FunctionResponse.Response["content"])
}

func TestSessionSendTwiceFails(t *testing.T) {
	fake := &fakeGemini{t: t, responses: []string{textOnlyResponse}}
	client := newTestClient(t, fake)

	session := client.NewToolSession("sys", nil)
	_, err := session.Send(context.Background(), "hello")
	require.NoError(t, err)

	_, err = session.Send(context.Background(), "again")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session already started")
}
