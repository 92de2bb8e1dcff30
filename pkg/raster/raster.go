// Package raster turns text fragments into PNG images.
package raster

import (
	"bytes"
	"image"
	"image/png"
)

// Rasterizer renders text into a PNG image trimmed to its content. The text
// has its escape sequences already decoded and may contain newlines.
type Rasterizer interface {
	Rasterize(text string) ([]byte, error)
}

// Size returns the pixel dimensions of a PNG image.
func Size(data []byte) (w, h int, err error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Returns the smallest rectangle containing all non-transparent pixels of img,
// or an empty rectangle.
func contentBounds(img *image.RGBA) image.Rectangle {
	b := img.Bounds()
	box := image.Rectangle{}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A == 0 {
				continue
			}
			box = box.Union(image.Rect(x, y, x+1, y+1))
		}
	}
	return box
}
