package client

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slideclaw/internal/agent"
	"slideclaw/internal/deck"
	"slideclaw/internal/export"
	"slideclaw/internal/server"
	"slideclaw/internal/store"
	"slideclaw/internal/types"
)

type noopLLM struct{}

func (noopLLM) Complete(ctx context.Context, prompt string) (string, error) { return "", nil }
func (noopLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", nil
}
func (noopLLM) NewToolSession(systemPrompt string, tools []types.ToolDefinition) types.ToolSession {
	return noopSession{}
}

type noopSession struct{}

func (noopSession) Send(ctx context.Context, userPrompt string) (*types.LLMToolResponse, error) {
	return &types.LLMToolResponse{Text: "nothing to do"}, nil
}
func (noopSession) Continue(ctx context.Context, results []types.ToolResult) (*types.LLMToolResponse, error) {
	return &types.LLMToolResponse{Text: "nothing to do"}, nil
}

type noopRasterizer struct{}

func (noopRasterizer) RenderSlides(ctx context.Context, slides []types.Slide) ([][]byte, error) {
	return make([][]byte, len(slides)), nil
}

func newTestClient(t *testing.T) *Client {
	t.Helper()

	st := store.New(t.TempDir())
	svc := deck.NewService(st)
	router := server.NewRouter(server.Deps{
		Deck:   svc,
		Store:  st,
		Agent:  agent.NewRunner(noopLLM{}, agent.NewToolset(svc, st)),
		Export: export.NewService(noopRasterizer{}),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestClientRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	p, err := c.CreatePresentation(ctx, "Roadmap", "H2 planning")
	require.NoError(t, err)
	assert.Equal(t, "Roadmap", p.Title)

	s1, err := c.AddSlide(ctx, p.ID, "Intro", "<html><body>1</body></html>", "hello")
	require.NoError(t, err)
	s2, err := c.AddSlide(ctx, p.ID, "Detail", "<html><body>2</body></html>", "")
	require.NoError(t, err)

	newTitle := "Overview"
	updated, err := c.UpdateSlide(ctx, p.ID, s1.ID, SlideUpdate{Title: &newTitle})
	require.NoError(t, err)
	assert.Equal(t, "Overview", updated.Title)

	reordered, err := c.ReorderSlides(ctx, p.ID, []string{s2.ID, s1.ID})
	require.NoError(t, err)
	require.Len(t, reordered.Slides, 2)
	assert.Equal(t, s2.ID, reordered.Slides[0].ID)

	list, err := c.ListPresentations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].SlideCount)

	require.NoError(t, c.DeleteSlide(ctx, p.ID, s2.ID))

	got, err := c.GetPresentation(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Slides, 1)

	require.NoError(t, c.DeletePresentation(ctx, p.ID))
	_, err = c.GetPresentation(ctx, p.ID)
	require.Error(t, err)
}

func TestClientSurfacesServerErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreatePresentation(ctx, "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error")

	_, err = c.GetPresentation(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestClientDesignConfig(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	info, err := c.GetDesignConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DesignLibraryAuto, info.Config.Library)
	assert.Len(t, info.Catalog, 5)

	cfg, err := c.SetDesignConfig(ctx, "pico")
	require.NoError(t, err)
	assert.Equal(t, "pico", cfg.Library)

	_, err = c.SetDesignConfig(ctx, "skeleton")
	require.Error(t, err)
}

func TestClientGenerate(t *testing.T) {
	c := newTestClient(t)

	result, err := c.Generate(context.Background(), "make a deck", "")
	require.NoError(t, err)
	assert.Equal(t, "nothing to do", result.Message)
}

func TestExportURL(t *testing.T) {
	c := New("http://example.test")
	assert.Equal(t, "http://example.test/api/presentations/p1/export/pdf", c.ExportURL("p1", "pdf"))
}
