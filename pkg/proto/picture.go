package proto

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Picture is an embedded raster image. Its file is read when the declaration
// is constructed.
type Picture struct {
	Attached
	Name string
	// Path as written in the source, with escape sequences intact.
	File   string
	Binary []byte
	Width  Coord
	Height Coord
	// Dimensions of the decoded image.
	PixelWidth, PixelHeight int
}

// ResourceError is returned when a file referenced by a document cannot be
// read or decoded.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("cannot load %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// NewPicture creates a Picture, reading and decoding its file. Relative paths
// are resolved against dir. It accepts width and height.
func NewPicture(name, file string, params Params, dir string) (*Picture, error) {
	pic := &Picture{Name: name, File: file}
	err := applyParams("picture", params, map[string]paramSetter{
		"width":  numberSetter(func(c Coord) { pic.Width = c }),
		"height": numberSetter(func(c Coord) { pic.Height = c }),
	})
	if err != nil {
		return nil, err
	}

	path := Unescape(file)
	if !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}
	pic.Binary, err = os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{path, err}
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(pic.Binary))
	if err != nil {
		return nil, &ResourceError{path, err}
	}
	logger.Printf("loaded %s picture %s (%dx%d)", format, path, cfg.Width, cfg.Height)
	pic.PixelWidth, pic.PixelHeight = cfg.Width, cfg.Height
	return pic, nil
}

// MIMEType returns the MIME type of the picture's content.
func (pic *Picture) MIMEType() string {
	_, format, err := image.DecodeConfig(bytes.NewReader(pic.Binary))
	if err != nil {
		return "application/octet-stream"
	}
	return "image/" + format
}
