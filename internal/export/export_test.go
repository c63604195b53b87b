package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slideclaw/internal/types"
)

// fakeRasterizer returns one canned PNG per slide and records what it
// was asked to render.
type fakeRasterizer struct {
	rendered []types.Slide
	err      error
}

func (f *fakeRasterizer) RenderSlides(ctx context.Context, slides []types.Slide) ([][]byte, error) {
	f.rendered = slides
	if f.err != nil {
		return nil, f.err
	}
	images := make([][]byte, len(slides))
	for i := range slides {
		images[i] = testPNG()
	}
	return images, nil
}

// testPNG encodes a small valid PNG.
func testPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 9))
	for x := 0; x < 16; x++ {
		for y := 0; y < 9; y++ {
			img.Set(x, y, color.RGBA{R: 40, G: 80, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func testPresentation(n int) *types.Presentation {
	p := &types.Presentation{ID: "p1", Title: "Deck", Slides: []types.Slide{}}
	for i := 0; i < n; i++ {
		p.Slides = append(p.Slides, types.Slide{
			ID:    string(rune('a' + i)),
			Title: "slide",
			HTML:  "<html></html>",
			Order: i,
		})
	}
	return p
}

func TestExportPDFRendersSlidesInOrder(t *testing.T) {
	fake := &fakeRasterizer{}
	svc := NewService(fake)

	p := testPresentation(3)
	// Shuffle the slice; order fields still say a, b, c.
	p.Slides[0], p.Slides[2] = p.Slides[2], p.Slides[0]

	data, err := svc.ExportPDF(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	require.Len(t, fake.rendered, 3)
	assert.Equal(t, "a", fake.rendered[0].ID)
	assert.Equal(t, "b", fake.rendered[1].ID)
	assert.Equal(t, "c", fake.rendered[2].ID)
}

func TestExportPPTXProducesArchive(t *testing.T) {
	fake := &fakeRasterizer{}
	svc := NewService(fake)

	p := testPresentation(2)
	p.Slides[1].Notes = "mention the roadmap"

	data, err := svc.ExportPPTX(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "pptx must be a zip archive")
	require.Len(t, fake.rendered, 2)
}

func TestExportRenderFailureAborts(t *testing.T) {
	fake := &fakeRasterizer{err: errors.New("chrome crashed")}
	svc := NewService(fake)

	_, err := svc.ExportPDF(context.Background(), testPresentation(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome crashed")

	_, err = svc.ExportPPTX(context.Background(), testPresentation(1))
	require.Error(t, err)
}

func TestBuildPPTXImageCountMismatch(t *testing.T) {
	_, err := buildPPTX(testPresentation(2), [][]byte{testPNG()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestOrderedSlidesDoesNotMutateInput(t *testing.T) {
	p := testPresentation(2)
	p.Slides[0], p.Slides[1] = p.Slides[1], p.Slides[0]

	ordered := orderedSlides(p)
	assert.Equal(t, "a", ordered[0].ID)
	assert.Equal(t, "b", p.Slides[0].ID, "input slice untouched")
}
