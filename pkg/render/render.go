// Package render composes protocol diagrams into SVG documents.
//
// Every text fragment is rasterized into a PNG, and every element (actor box,
// self-action box, arrow, picture) is composed into a small SVG document of
// its own. Both are embedded into their parent as base64 data URIs, so the
// final document is self-contained. Rasterized text is kept in a
// content-addressed store keyed by the hash of the text's source form.
package render

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"src.protosketch.dev/pkg/layout"
	"src.protosketch.dev/pkg/logutil"
	"src.protosketch.dev/pkg/options"
	"src.protosketch.dev/pkg/proto"
	"src.protosketch.dev/pkg/raster"
	"src.protosketch.dev/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[render] ")

// Key returns the content hash of a semantic value, as a hex string.
func Key(semantic string) string {
	sum := sha256.Sum256([]byte(semantic))
	return hex.EncodeToString(sum[:])
}

// Renderer renders protocols. It also implements [layout.Measurer], measuring
// text by rasterizing it, so that layout and rendering agree on sizes.
//
// A Renderer memoizes text images and fragments. It is not safe for concurrent
// use.
type Renderer struct {
	opts     options.Options
	raster   raster.Rasterizer
	store    storedefs.Store
	useCache bool
	engine   *layout.Engine

	texts     map[string]*textImage
	fragments map[string]string
	glyphs    *glyphs
}

var _ layout.Measurer = (*Renderer)(nil)

// A rasterized text fragment.
type textImage struct {
	png []byte
	// Display size in pixels.
	w, h int
}

// New creates a Renderer. When useCache is false, the store is neither read
// nor written.
func New(opts options.Options, r raster.Rasterizer, st storedefs.Store, useCache bool) *Renderer {
	rd := &Renderer{
		opts: opts, raster: r, store: st, useCache: useCache,
		texts:     map[string]*textImage{},
		fragments: map[string]string{},
	}
	rd.engine = layout.New(opts, rd)
	return rd
}

// Engine returns the layout engine that measures text with this Renderer.
func (rd *Renderer) Engine() *layout.Engine { return rd.engine }

// MeasureText returns the display size of the rasterized text.
func (rd *Renderer) MeasureText(msg proto.Message) (int, int, error) {
	img, err := rd.text(msg)
	if err != nil {
		return 0, 0, err
	}
	return img.w, img.h, nil
}

func (rd *Renderer) text(msg proto.Message) (*textImage, error) {
	key := Key(msg.Key())
	if img, ok := rd.texts[key]; ok {
		return img, nil
	}

	var data []byte
	if rd.useCache {
		data = rd.cached(key, msg)
	}
	if data == nil {
		logger.Println("rasterizing", msg.Quoted())
		var err error
		data, err = rd.raster.Rasterize(msg.Unescape())
		if err != nil {
			return nil, fmt.Errorf("rasterize %s: %w", msg.Quoted(), err)
		}
		if rd.useCache {
			if err := rd.store.Put(key, data); err != nil {
				logger.Printf("cache write for %s failed: %v", msg.Quoted(), err)
			}
		}
	}

	w, h, err := raster.Size(data)
	if err != nil {
		return nil, fmt.Errorf("image of %s: %w", msg.Quoted(), err)
	}
	zoom := rd.opts.Pic.Zoom
	img := &textImage{data, w / zoom, h / zoom}
	rd.texts[key] = img
	return img, nil
}

// Returns the cached image of msg, or nil if there is none. An entry that does
// not decode is deleted so that it gets rasterized and stored again.
func (rd *Renderer) cached(key string, msg proto.Message) []byte {
	data, err := rd.store.Get(key)
	switch {
	case errors.Is(err, storedefs.ErrNotFound):
		return nil
	case err != nil:
		logger.Printf("cache read for %s failed: %v", msg.Quoted(), err)
		return nil
	}
	if _, _, err := raster.Size(data); err != nil {
		logger.Printf("dropping damaged cache entry for %s: %v", msg.Quoted(), err)
		if err := rd.store.Delete(key); err != nil {
			logger.Printf("cache delete for %s failed: %v", msg.Quoted(), err)
		}
		return nil
	}
	logger.Println("cache hit for", msg.Quoted())
	return data
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
