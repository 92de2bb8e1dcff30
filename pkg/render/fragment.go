package render

import (
	"bytes"
	"fmt"
	"math"

	svg "github.com/ajstarks/svgo"

	"src.protosketch.dev/pkg/proto"
)

const (
	svgMIME = "image/svg+xml"
	pngMIME = "image/png"
)

// Returns the data URI of a fragment, composing it with draw only when a
// fragment with the same semantic value has not been composed yet.
func (rd *Renderer) fragment(semantic string, w, h int, draw func(*svg.SVG)) string {
	key := Key(semantic)
	if uri, ok := rd.fragments[key]; ok {
		return uri
	}
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h)
	draw(canvas)
	canvas.End()
	uri := dataURI(svgMIME, buf.Bytes())
	rd.fragments[key] = uri
	return uri
}

// Actor box of w x h pixels, with the label centered and nudged down by half
// of the picture margin.
func (rd *Renderer) actorFragment(a *proto.Actor, w, h int) (string, error) {
	label, err := rd.text(proto.Message{Text: a.Name})
	if err != nil {
		return "", err
	}
	semantic := fmt.Sprintf("actor %s %dx%d", a.Name, w, h)
	return rd.fragment(semantic, w, h, func(canvas *svg.SVG) {
		x := (w - label.w) / 2
		y := (h-label.h)/2 + rd.opts.Pic.Margin/2
		canvas.Image(x, y, label.w, label.h, dataURI(pngMIME, label.png))
	}), nil
}

// Self-action box of w x h pixels with the label centered.
func (rd *Renderer) actionFragment(d *proto.Draw, w, h int) (string, error) {
	label, err := rd.text(d.Message)
	if err != nil {
		return "", err
	}
	semantic := fmt.Sprintf("action %s %dx%d", d.Message.Key(), w, h)
	return rd.fragment(semantic, w, h, func(canvas *svg.SVG) {
		x := (w - label.w) / 2
		y := int(math.Round(float64(h-label.h) / 2))
		canvas.Image(x, y, label.w, label.h, dataURI(pngMIME, label.png))
	}), nil
}

// Arrow area of w x h pixels, drawn left to right: the label centered, the
// line below it, and the glyphs for the markers at both ends.
func (rd *Renderer) arrowFragment(msg proto.Message, lm, rm proto.Marker, w, h int) (string, error) {
	label, err := rd.text(msg)
	if err != nil {
		return "", err
	}
	g, err := rd.loadGlyphs()
	if err != nil {
		return "", err
	}
	semantic := fmt.Sprintf("arrow %s %s%s %dx%d", msg.Key(), lm, rm, w, h)
	return rd.fragment(semantic, w, h, func(canvas *svg.SVG) {
		x, y := (w-label.w)/2, (h-label.h)/2
		canvas.Image(x, y, label.w, label.h, dataURI(pngMIME, label.png))

		lineY := y + label.h + rd.opts.Message.BottomMarginPixel
		x0, x1 := 0, w
		if lm != proto.None {
			x0 = glyphWidth / 2
		}
		if rm != proto.None {
			x1 -= glyphWidth / 2
		}
		canvas.Line(x0, lineY, x1, lineY, rd.strokeStyle())

		glyphY := lineY - glyphHeight/2
		if uri := g.of(lm); uri != "" {
			canvas.Image(0, glyphY, glyphWidth, glyphHeight, uri)
		}
		if uri := g.of(rm); uri != "" {
			canvas.Image(w-glyphWidth, glyphY, glyphWidth, glyphHeight, uri)
		}
	}), nil
}

// Picture scaled to w x h pixels.
func (rd *Renderer) pictureFragment(pic *proto.Picture, w, h int) string {
	semantic := fmt.Sprintf("picture %s %s %dx%d", pic.Name, Key(string(pic.Binary)), w, h)
	return rd.fragment(semantic, w, h, func(canvas *svg.SVG) {
		canvas.Image(0, 0, w, h, dataURI(pic.MIMEType(), pic.Binary))
	})
}

func (rd *Renderer) strokeStyle() string {
	return fmt.Sprintf("stroke:black;stroke-width:%d", rd.opts.Protocol.LineWidth)
}
