package export

import (
	"bytes"
	"fmt"

	ppt "github.com/VantageDataChat/GoPPT"

	"slideclaw/internal/types"
)

// 16:9 slide geometry (EMU).
const (
	emuPerInch = 914400

	pptxSlideWidth  = int64(10.0 * emuPerInch)
	pptxSlideHeight = int64(5.625 * emuPerInch)
)

// buildPPTX places each slide raster full-bleed on its own slide and
// carries speaker notes across.
func buildPPTX(presentation *types.Presentation, images [][]byte) ([]byte, error) {
	if len(images) != len(presentation.Slides) {
		return nil, fmt.Errorf("image count %d does not match slide count %d", len(images), len(presentation.Slides))
	}

	p := ppt.New()
	p.GetDocumentProperties().Title = presentation.Title
	p.GetDocumentProperties().Creator = "slideclaw"

	for i, img := range images {
		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}

		imgShape := slide.CreateDrawingShape()
		imgShape.SetImageData(img, "image/png")
		imgShape.SetOffsetX(0).SetOffsetY(0)
		imgShape.SetWidth(pptxSlideWidth).SetHeight(pptxSlideHeight)

		if notes := presentation.Slides[i].Notes; notes != "" {
			slide.SetNotes(notes)
		}
	}

	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("failed to create PPTX writer: %w", err)
	}

	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PPTX: %w", err)
	}
	return buf.Bytes(), nil
}
