package render

import (
	"embed"
	"os"
	"path/filepath"

	"src.protosketch.dev/pkg/proto"
)

//go:embed arrow/left.svg arrow/right.svg
var builtinGlyphs embed.FS

// Size of arrowhead glyphs in pixels.
const (
	glyphWidth  = 10
	glyphHeight = 8
)

// Data URIs of the arrowhead glyphs.
type glyphs struct {
	left, right string
}

func (g *glyphs) of(m proto.Marker) string {
	switch m {
	case proto.Left:
		return g.left
	case proto.Right:
		return g.right
	}
	return ""
}

// Loads the glyphs from the folder.arrow option, or the built-in ones.
func (rd *Renderer) loadGlyphs() (*glyphs, error) {
	if rd.glyphs != nil {
		return rd.glyphs, nil
	}
	read := func(name string) ([]byte, error) {
		return builtinGlyphs.ReadFile("arrow/" + name)
	}
	if dir := rd.opts.Folder.Arrow; dir != "" {
		read = func(name string) ([]byte, error) {
			return os.ReadFile(filepath.Join(dir, name))
		}
	}
	left, err := read("left.svg")
	if err != nil {
		return nil, err
	}
	right, err := read("right.svg")
	if err != nil {
		return nil, err
	}
	rd.glyphs = &glyphs{dataURI(svgMIME, left), dataURI(svgMIME, right)}
	return rd.glyphs, nil
}
