package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
)

// One slide raster per PDF page. The row height exceeds half the
// usable page height, so consecutive rows never share a page.
const pdfSlideRowHeight = 160

// buildPDF lays out the slide images one per page.
func buildPDF(images [][]byte) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	for _, img := range images {
		m.AddRow(pdfSlideRowHeight,
			col.New(12).Add(
				image.NewFromBytes(img, extension.Png),
			),
		)
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return document.GetBytes(), nil
}
