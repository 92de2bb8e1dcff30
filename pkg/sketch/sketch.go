// Package sketch compiles protocol documents. It ties the parser, the layout
// engine and the renderer together, and implements the command-line
// subprogram.
package sketch

import (
	"path/filepath"
	"strings"

	"src.protosketch.dev/pkg/layout"
	"src.protosketch.dev/pkg/logutil"
	"src.protosketch.dev/pkg/options"
	"src.protosketch.dev/pkg/parse"
	"src.protosketch.dev/pkg/proto"
	"src.protosketch.dev/pkg/raster"
	"src.protosketch.dev/pkg/render"
	"src.protosketch.dev/pkg/store"
	"src.protosketch.dev/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[sketch] ")

// Compiler parses, formats and draws protocol documents with a fixed set of
// options. It is not safe for concurrent use.
type Compiler struct {
	opts  options.Options
	store storedefs.Store
	rd    *render.Renderer
}

// New creates a Compiler. The raster cache selected by opts is opened when
// useCache is true; otherwise every text is rasterized afresh and nothing is
// cached. A cache that cannot be opened, such as a bolt file locked by another
// process, is logged and treated like no cache.
func New(opts options.Options, useCache bool) (*Compiler, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	var st storedefs.Store
	if useCache {
		var err error
		st, err = store.Open(opts)
		if err != nil {
			logger.Printf("cannot open %s cache, continuing without: %v", opts.Cache.Backend, err)
			st = nil
		} else {
			logger.Printf("opened %s cache", opts.Cache.Backend)
		}
	}
	return NewWithStore(opts, raster.NewBitmap(opts.Pic), st), nil
}

// NewWithStore creates a Compiler that rasterizes text with r and caches it in
// st. A nil st disables caching.
func NewWithStore(opts options.Options, r raster.Rasterizer, st storedefs.Store) *Compiler {
	return &Compiler{opts, st, render.New(opts, r, st, st != nil)}
}

// Close releases the cache.
func (c *Compiler) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Parse parses a document. Unlike [parse.Parse], it fails on lex errors too.
func (c *Compiler) Parse(name, code string) (*proto.Protocol, error) {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	p, err := parse.Parse(parse.Source{Name: name, Code: code}, parse.Config{Dir: c.opts.Folder.Work})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Format returns the canonical form of a document after preprocessing, with
// every actor position and draw row spelled out.
func (c *Compiler) Format(name, code string) (string, error) {
	p, err := c.Parse(name, code)
	if err != nil {
		return "", err
	}
	if _, err := layout.Preprocess(p, c.rd.Engine()); err != nil {
		return "", err
	}
	return proto.Format(p), nil
}

// Draw renders a document to outfile and returns the path written. When
// outfile is empty, the document goes to <folder.output>/<protocol name>.svg.
func (c *Compiler) Draw(name, code, outfile string) (string, error) {
	p, err := c.Parse(name, code)
	if err != nil {
		return "", err
	}
	if outfile == "" {
		outfile = c.OutputPath(p)
	}
	if err := c.rd.Draw(p, outfile); err != nil {
		return "", err
	}
	return outfile, nil
}

// OutputPath returns the default output path of a protocol.
func (c *Compiler) OutputPath(p *proto.Protocol) string {
	return filepath.Join(c.opts.Folder.Output, p.Name+".svg")
}
