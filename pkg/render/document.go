package render

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	svg "github.com/ajstarks/svgo"

	"src.protosketch.dev/pkg/layout"
	"src.protosketch.dev/pkg/proto"
)

// Render renders p, laid out as res, into an SVG document. The protocol must
// have been preprocessed with [layout.Preprocess] using the Renderer's engine,
// which also produces res.
//
// Lifelines are drawn first so that every other element covers them, then
// actor boxes, then draws in order, then the end caps.
func (rd *Renderer) Render(p *proto.Protocol, res *layout.Result) ([]byte, error) {
	if len(res.Actors) != len(p.Actors) || len(res.Rows) != len(p.Draws) {
		return nil, &layout.Error{Message: "layout does not match protocol"}
	}
	g := rd.opts.Protocol.GridSize
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(p.Width.Or(res.Width)*g, p.Height.Or(res.Height)*g)
	canvas.Title(p.Name)

	if len(p.Pictures) > 0 {
		canvas.Def()
		for _, pic := range p.Pictures {
			w, h := pic.Width.Or(pic.PixelWidth), pic.Height.Or(pic.PixelHeight)
			if pic.Width.Set {
				w *= g
			}
			if pic.Height.Set {
				h *= g
			}
			canvas.Image(0, 0, w, h, rd.pictureFragment(pic, w, h),
				fmt.Sprintf(`id="picture-%s"`, pic.Name))
		}
		canvas.DefEnd()
	}

	for _, box := range res.Actors {
		x := box.Center * g
		canvas.Line(x, res.Top*g, x, res.End*g, rd.strokeStyle())
	}

	boxStyle := "fill:white;" + rd.strokeStyle()
	for i, a := range p.Actors {
		box := res.Actors[i]
		x, y, w, h := box.GridX*g, res.Top*g, box.Width*g, box.Height*g
		uri, err := rd.actorFragment(a, w, h)
		if err != nil {
			return nil, err
		}
		canvas.Rect(x, y, w, h, boxStyle)
		canvas.Image(x, y, w, h, uri)
	}

	for k, d := range p.Draws {
		row := res.Rows[k]
		src, dst := p.ActorIndex(d.Src), p.ActorIndex(d.Dst)
		if src < 0 || dst < 0 {
			return nil, &layout.Error{Message: fmt.Sprintf("draw %d refers to an undeclared actor", k)}
		}
		if d.IsAction() {
			w, h := row.Width*g, row.Height*g
			x, y := res.Actors[src].Center*g-w/2, row.Y*g
			uri, err := rd.actionFragment(d, w, h)
			if err != nil {
				return nil, err
			}
			canvas.Roundrect(x, y, w, h, 10, 10, boxStyle)
			canvas.Image(x, y, w, h, uri)
			continue
		}
		left, right, lm, rm := orient(src, dst, d.LArrow, d.RArrow, res)
		x0, x1 := res.Actors[left].Center*g, res.Actors[right].Center*g
		h := row.Height * g
		uri, err := rd.arrowFragment(d.Message, lm, rm, x1-x0, h)
		if err != nil {
			return nil, err
		}
		canvas.Image(x0, row.Y*g, x1-x0, h, uri)
	}

	o := rd.opts.Protocol
	capW := int(math.Round(float64(o.EndWidth*g) * o.EndZoom))
	capH := int(math.Round(float64(o.EndHeight*g) * o.EndZoom))
	for _, box := range res.Actors {
		canvas.Rect(box.Center*g-capW/2, res.End*g, capW, capH, "fill:black;"+rd.strokeStyle())
	}

	canvas.End()
	return buf.Bytes(), nil
}

// Orients an arrow from actor src to actor dst so that it goes from left to
// right. When the arrow is flipped, its markers swap ends and are mirrored, so
// that every arrowhead keeps pointing at the same actor.
func orient(src, dst int, lm, rm proto.Marker, res *layout.Result) (left, right int, l, r proto.Marker) {
	if res.Actors[src].Center > res.Actors[dst].Center {
		return dst, src, rm.Mirror(), lm.Mirror()
	}
	return src, dst, lm, rm
}

// Draw preprocesses p, renders it and writes the document to outfile. The
// file is replaced atomically, so a failed Draw never leaves a partial file.
func (rd *Renderer) Draw(p *proto.Protocol, outfile string) error {
	res, err := layout.Preprocess(p, rd.engine)
	if err != nil {
		return err
	}
	doc, err := rd.Render(p, res)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(outfile, doc); err != nil {
		return err
	}
	logger.Printf("wrote %s (%d bytes)", outfile, len(doc))
	return nil
}

func writeFileAtomic(name string, data []byte) error {
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(name)+"-*")
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(f.Name(), 0644)
	}
	if err == nil {
		err = os.Rename(f.Name(), name)
	}
	if err != nil {
		os.Remove(f.Name())
	}
	return err
}
