// Package client is a thin HTTP client for the slideclaw API, shared
// by the CLI and the gateway plugin adapter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"slideclaw/internal/design"
	"slideclaw/internal/types"
)

// DefaultBaseURL is where a locally started server listens.
const DefaultBaseURL = "http://localhost:3001"

// Client talks to a running slideclaw server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client. An empty baseURL falls back to the default.
func New(baseURL string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Minute},
	}
}

// GenerateResult is the agent run outcome returned by the server.
type GenerateResult struct {
	PresentationID string `json:"presentationId"`
	Message        string `json:"message"`
}

// DesignInfo is the design config together with the library catalog.
type DesignInfo struct {
	Config  types.DesignConfig    `json:"config"`
	Catalog []design.LibraryEntry `json:"catalog"`
}

// SlideUpdate carries a partial slide patch; nil fields are untouched.
type SlideUpdate struct {
	Title *string `json:"title,omitempty"`
	HTML  *string `json:"html,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

// Generate asks the agent to build or edit a presentation.
func (c *Client) Generate(ctx context.Context, prompt, presentationID string) (*GenerateResult, error) {
	body := map[string]string{"prompt": prompt}
	if presentationID != "" {
		body["presentationId"] = presentationID
	}
	var result GenerateResult
	if err := c.do(ctx, http.MethodPost, "/agent/generate", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListPresentations returns summaries of every stored presentation.
func (c *Client) ListPresentations(ctx context.Context) ([]types.PresentationSummary, error) {
	var summaries []types.PresentationSummary
	if err := c.do(ctx, http.MethodGet, "/presentations", nil, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetPresentation fetches one presentation with all its slides.
func (c *Client) GetPresentation(ctx context.Context, id string) (*types.Presentation, error) {
	var p types.Presentation
	if err := c.do(ctx, http.MethodGet, "/presentations/"+id, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePresentation creates an empty presentation.
func (c *Client) CreatePresentation(ctx context.Context, title, description string) (*types.Presentation, error) {
	body := map[string]string{"title": title}
	if description != "" {
		body["description"] = description
	}
	var p types.Presentation
	if err := c.do(ctx, http.MethodPost, "/presentations", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeletePresentation removes a presentation.
func (c *Client) DeletePresentation(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/presentations/"+id, nil, nil)
}

// AddSlide appends a slide to a presentation.
func (c *Client) AddSlide(ctx context.Context, presentationID, title, html, notes string) (*types.Slide, error) {
	body := map[string]string{"title": title, "html": html}
	if notes != "" {
		body["notes"] = notes
	}
	var s types.Slide
	if err := c.do(ctx, http.MethodPost, "/presentations/"+presentationID+"/slides", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSlide applies a partial patch to a slide.
func (c *Client) UpdateSlide(ctx context.Context, presentationID, slideID string, update SlideUpdate) (*types.Slide, error) {
	var s types.Slide
	if err := c.do(ctx, http.MethodPut, "/presentations/"+presentationID+"/slides/"+slideID, update, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSlide removes a slide.
func (c *Client) DeleteSlide(ctx context.Context, presentationID, slideID string) error {
	return c.do(ctx, http.MethodDelete, "/presentations/"+presentationID+"/slides/"+slideID, nil, nil)
}

// ReorderSlides sets the exact slide order.
func (c *Client) ReorderSlides(ctx context.Context, presentationID string, slideIDs []string) (*types.Presentation, error) {
	var p types.Presentation
	body := map[string][]string{"slideIds": slideIDs}
	if err := c.do(ctx, http.MethodPut, "/presentations/"+presentationID+"/slides/reorder", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDesignConfig returns the current library preference and catalog.
func (c *Client) GetDesignConfig(ctx context.Context) (*DesignInfo, error) {
	var info DesignInfo
	if err := c.do(ctx, http.MethodGet, "/design-config", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SetDesignConfig sets the preferred CSS library.
func (c *Client) SetDesignConfig(ctx context.Context, library string) (*types.DesignConfig, error) {
	var cfg types.DesignConfig
	if err := c.do(ctx, http.MethodPut, "/design-config", map[string]string{"library": library}, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Export downloads a presentation as "pdf" or "pptx".
func (c *Client) Export(ctx context.Context, id, format string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ExportURL(id, format), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	return io.ReadAll(resp.Body)
}

// ExportURL returns the download URL for a presentation export.
func (c *Client) ExportURL(id, format string) string {
	return fmt.Sprintf("%s/api/presentations/%s/export/%s", c.baseURL, id, format)
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// apiError extracts the server's error message, falling back to the
// HTTP status text.
func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("API error: %s", payload.Error)
	}
	return fmt.Errorf("API error: %s", resp.Status)
}
