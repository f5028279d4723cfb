package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgepadayatti/pdflayout/pdf/images"
	"github.com/georgepadayatti/pdflayout/pdf/layout"
)

func page(index int) layout.PageArea {
	return layout.PageArea{Index: index, Size: layout.A5, Content: layout.NewPageLayout(layout.A5).ContentArea()}
}

func TestBeginPageScales(t *testing.T) {
	s := NewSink(2)
	require.NoError(t, s.BeginPage(page(0)))
	b := s.Image(0).Bounds()
	assert.Equal(t, 840, b.Dx())
	assert.Equal(t, 1190, b.Dy())

	assert.Equal(t, 1.0, NewSink(0).Scale)
	assert.Error(t, NewSink(1).BeginPage(layout.PageArea{}))
}

func TestPlaceRuleFills(t *testing.T) {
	s := NewSink(1)
	require.NoError(t, s.BeginPage(page(0)))
	require.NoError(t, s.PlaceRule(page(0), layout.Rectangle{X: 100, Y: 100, Width: 4, Height: 50}))

	r, g, b, _ := s.Image(0).At(101, 120).RGBA()
	assert.Zero(t, r|g|b)
	r, _, _, _ = s.Image(0).At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r)
}

func TestPlaceBoxDrawsImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	img, err := images.FromImage(src)
	require.NoError(t, err)

	s := NewSink(1)
	require.NoError(t, s.BeginPage(page(0)))
	require.NoError(t, s.PlaceBox(page(0), layout.NewLeaf("logo", img), layout.Rectangle{X: 50, Y: 50, Width: 20, Height: 20}))

	r, g, b, _ := s.Image(0).At(60, 60).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g|b)
	r, g, _, _ = s.Image(0).At(80, 80).RGBA()
	assert.Equal(t, r, g, "outside the image stays white")
}

func TestPlaceBoxNeedsPage(t *testing.T) {
	s := NewSink(1)
	err := s.PlaceBox(page(0), layout.NewBlock("b"), layout.Rectangle{Width: 10, Height: 10})
	assert.Error(t, err)
}

func TestPaginatedPreview(t *testing.T) {
	doc := layout.NewBlock("doc")
	for i := 0; i < 4; i++ {
		doc.Append(layout.NewLeaf("", layout.FixedContent{Width: 100, Height: 300}))
	}
	s := NewSink(0.5)
	p := &layout.Paginator{Areas: layout.NewPageAreas(layout.NewPageLayout(layout.A5)), Sink: s}
	rep, err := p.Run(doc)
	require.NoError(t, err)
	require.Equal(t, len(rep.Pages), s.Len())

	var buf bytes.Buffer
	require.NoError(t, s.WritePNG(0, &buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 210, img.Bounds().Dx())
	assert.Error(t, s.WritePNG(s.Len(), &buf))

	paths, err := s.SavePNGs(t.TempDir(), "page")
	require.NoError(t, err)
	require.Len(t, paths, s.Len())
	_, err = os.Stat(paths[0])
	assert.NoError(t, err)
}
