// Package export turns stored presentations into PDF and PPTX binaries
// by rasterizing each slide in a headless browser and assembling the
// screenshots into document pages.
package export

import (
	"context"
	"fmt"
	"sort"
	"time"

	"slideclaw/internal/logging"
	"slideclaw/internal/types"
)

// Service assembles export documents from slide rasters.
type Service struct {
	rasterizer Rasterizer
}

// NewService creates an export service on top of a rasterizer.
func NewService(r Rasterizer) *Service {
	return &Service{rasterizer: r}
}

// ExportPDF renders every slide and lays them out one per PDF page, in
// ascending slide order.
func (s *Service) ExportPDF(ctx context.Context, presentation *types.Presentation) ([]byte, error) {
	startTime := time.Now()

	images, err := s.renderOrdered(ctx, presentation)
	if err != nil {
		return nil, err
	}

	data, err := buildPDF(images)
	if err != nil {
		return nil, err
	}

	logging.Export("ExportPDF: presentation=%s slides=%d bytes=%d in %v",
		presentation.ID, len(images), len(data), time.Since(startTime))
	return data, nil
}

// ExportPPTX renders every slide and places each raster full-bleed on
// its own PPTX slide, carrying speaker notes across.
func (s *Service) ExportPPTX(ctx context.Context, presentation *types.Presentation) ([]byte, error) {
	startTime := time.Now()

	ordered := orderedSlides(presentation)
	images, err := s.rasterizer.RenderSlides(ctx, ordered)
	if err != nil {
		return nil, fmt.Errorf("render slides: %w", err)
	}

	orderedPresentation := *presentation
	orderedPresentation.Slides = ordered

	data, err := buildPPTX(&orderedPresentation, images)
	if err != nil {
		return nil, err
	}

	logging.Export("ExportPPTX: presentation=%s slides=%d bytes=%d in %v",
		presentation.ID, len(images), len(data), time.Since(startTime))
	return data, nil
}

func (s *Service) renderOrdered(ctx context.Context, presentation *types.Presentation) ([][]byte, error) {
	images, err := s.rasterizer.RenderSlides(ctx, orderedSlides(presentation))
	if err != nil {
		return nil, fmt.Errorf("render slides: %w", err)
	}
	return images, nil
}

// orderedSlides returns a copy of the slides sorted by their order
// field. Stored slides are already dense, but exports must not depend
// on file layout.
func orderedSlides(presentation *types.Presentation) []types.Slide {
	slides := make([]types.Slide, len(presentation.Slides))
	copy(slides, presentation.Slides)
	sort.SliceStable(slides, func(i, j int) bool {
		return slides[i].Order < slides[j].Order
	})
	return slides
}
