package raster

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"src.protosketch.dev/pkg/logutil"
	"src.protosketch.dev/pkg/options"
)

var logger = logutil.GetLogger("[raster] ")

// Bitmap is a Rasterizer that draws text with the fixed 7x13 bitmap font,
// scaled up to approximate the configured font size at the configured DPI.
// Runes the font lacks are drawn as replacement glyphs, one per display
// column.
type Bitmap struct {
	face  *basicfont.Face
	scale int
}

var _ Rasterizer = (*Bitmap)(nil)

// NewBitmap creates a Bitmap rasterizer.
func NewBitmap(opts options.Pic) *Bitmap {
	face := basicfont.Face7x13
	scale := int(math.Round(float64(opts.DPI*opts.FontSize) / float64(72*face.Height)))
	if scale < 1 {
		scale = 1
	}
	return &Bitmap{face, scale}
}

// Scale returns the factor that glyphs are scaled up by.
func (b *Bitmap) Scale() int { return b.scale }

func (b *Bitmap) Rasterize(text string) ([]byte, error) {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = b.substitute(line)
	}

	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line))*b.face.Advance)
	}
	lineHeight := b.face.Height
	canvas := image.NewRGBA(image.Rect(0, 0, max(width, 1), max(lineHeight*len(lines), 1)))
	d := font.Drawer{Dst: canvas, Src: image.Black, Face: b.face}
	for i, line := range lines {
		d.Dot = fixed.P(0, b.face.Ascent+i*lineHeight)
		d.DrawString(line)
	}

	box := contentBounds(canvas)
	if box.Empty() {
		box = image.Rect(0, 0, 1, 1)
	}
	trimmed := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(trimmed, trimmed.Bounds(), canvas, box.Min, draw.Src)

	scaled := image.NewRGBA(image.Rect(0, 0, box.Dx()*b.scale, box.Dy()*b.scale))
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), trimmed, trimmed.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	logger.Printf("rasterized %q into %dx%d", text, scaled.Rect.Dx(), scaled.Rect.Dy())
	return buf.Bytes(), nil
}

// Replaces runes that the face has no glyph for.
func (b *Bitmap) substitute(line string) string {
	var sb strings.Builder
	for _, r := range line {
		if r == '\t' {
			sb.WriteString("    ")
			continue
		}
		if _, ok := b.face.GlyphAdvance(r); ok {
			sb.WriteRune(r)
			continue
		}
		sb.WriteString(strings.Repeat("�", max(runewidth.RuneWidth(r), 1)))
	}
	return sb.String()
}
