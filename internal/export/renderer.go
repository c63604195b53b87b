package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"slideclaw/internal/config"
	"slideclaw/internal/logging"
	"slideclaw/internal/types"
)

// Rasterizer turns slides into PNG images, one per slide, in slide
// order.
type Rasterizer interface {
	RenderSlides(ctx context.Context, slides []types.Slide) ([][]byte, error)
}

// ChromeRenderer rasterizes slide HTML in headless Chrome at the
// configured viewport. Each export run launches a fresh browser and
// tears it down when done.
type ChromeRenderer struct {
	cfg config.ExportConfig
}

// NewChromeRenderer creates a renderer from export config.
func NewChromeRenderer(cfg config.ExportConfig) *ChromeRenderer {
	return &ChromeRenderer{cfg: cfg}
}

var _ Rasterizer = (*ChromeRenderer)(nil)

// RenderSlides writes each slide to a temp HTML file, loads it in a
// page sized to the slide viewport, and screenshots it.
func (r *ChromeRenderer) RenderSlides(ctx context.Context, slides []types.Slide) ([][]byte, error) {
	startTime := time.Now()
	logging.Export("RenderSlides: slides=%d viewport=%dx%d", len(slides), r.cfg.ViewportWidth, r.cfg.ViewportHeight)

	if len(slides) == 0 {
		return nil, nil
	}

	launch := launcher.New().Headless(true)
	if r.cfg.ChromeBin != "" {
		launch = launch.Bin(r.cfg.ChromeBin)
	}
	controlURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	tmpDir, err := os.MkdirTemp("", "slideclaw-render-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// One page, reused sequentially across the deck.
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             r.cfg.ViewportWidth,
		Height:            r.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	images := make([][]byte, 0, len(slides))
	for i, slide := range slides {
		png, err := r.renderOne(ctx, page, tmpDir, i, slide)
		if err != nil {
			logging.ExportError("RenderSlides: slide %d (%s) failed: %v", i, slide.ID, err)
			return nil, fmt.Errorf("render slide %d: %w", i, err)
		}
		images = append(images, png)
	}

	logging.Export("RenderSlides: completed in %v slides=%d", time.Since(startTime), len(images))
	return images, nil
}

func (r *ChromeRenderer) renderOne(ctx context.Context, page *rod.Page, tmpDir string, index int, slide types.Slide) ([]byte, error) {
	htmlPath := filepath.Join(tmpDir, fmt.Sprintf("slide-%03d.html", index))
	if err := os.WriteFile(htmlPath, []byte(slide.HTML), 0o644); err != nil {
		return nil, fmt.Errorf("write slide html: %w", err)
	}

	url := "file://" + htmlPath
	timeout := r.cfg.NavigationTimeout()

	if err := page.Context(ctx).Timeout(timeout).Navigate(url); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.Context(ctx).Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}
	// Let CDN stylesheets and web fonts settle before capture.
	select {
	case <-time.After(300 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	png, err := page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return png, nil
}
