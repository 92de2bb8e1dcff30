package render

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"src.protosketch.dev/pkg/layout"
	"src.protosketch.dev/pkg/options"
	"src.protosketch.dev/pkg/parse"
	"src.protosketch.dev/pkg/proto"
	"src.protosketch.dev/pkg/store"
	"src.protosketch.dev/pkg/store/storedefs"
	"src.protosketch.dev/pkg/testutil"
)

// Rasterizes text into a blank PNG of 80 pixels per rune and 160 pixels per
// line, counting calls.
type fakeRasterizer struct {
	calls int
	fail  string
}

func (r *fakeRasterizer) Rasterize(text string) ([]byte, error) {
	r.calls++
	if r.fail != "" && text == r.fail {
		return nil, errors.New("no font")
	}
	lines := strings.Split(text, "\n")
	w := 1
	for _, line := range lines {
		w = max(w, len([]rune(line)))
	}
	var buf bytes.Buffer
	png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w*80, len(lines)*160)))
	return buf.Bytes(), nil
}

func setup(st storedefs.Store, useCache bool) (*Renderer, *fakeRasterizer) {
	r := &fakeRasterizer{}
	return New(options.Default(), r, st, useCache), r
}

func mustPreprocess(t *testing.T, rd *Renderer, code string) (*proto.Protocol, *layout.Result) {
	t.Helper()
	p, err := parse.Parse(parse.Source{Name: "[test]", Code: code}, parse.Config{})
	if err != nil {
		t.Fatal(err)
	}
	res, err := layout.Preprocess(p, rd.Engine())
	if err != nil {
		t.Fatal(err)
	}
	return p, res
}

type element struct {
	name  string
	attrs map[string]string
}

func (e element) int(t *testing.T, attr string) int {
	t.Helper()
	n, err := strconv.Atoi(e.attrs[attr])
	if err != nil {
		t.Fatalf("attribute %s of %s: %v", attr, e.name, err)
	}
	return n
}

func elements(t *testing.T, doc []byte) []element {
	t.Helper()
	var elems []element
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return elems
		}
		if err != nil {
			t.Fatalf("invalid SVG: %v\n%s", err, doc)
		}
		if se, ok := tok.(xml.StartElement); ok {
			attrs := map[string]string{}
			for _, a := range se.Attr {
				attrs[a.Name.Local] = a.Value
			}
			elems = append(elems, element{se.Name.Local, attrs})
		}
	}
}

func decodeDataURI(t *testing.T, uri, mime string) []byte {
	t.Helper()
	prefix := "data:" + mime + ";base64,"
	if !strings.HasPrefix(uri, prefix) {
		t.Fatalf("%.40s... is not a %s data URI", uri, mime)
	}
	data, err := base64.StdEncoding.DecodeString(uri[len(prefix):])
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestKey(t *testing.T) {
	k := Key(`"hi"`)
	if len(k) != 64 || k != Key(`"hi"`) || k == Key(`"ho"`) {
		t.Errorf("Key is not a stable hex SHA-256: %s", k)
	}
}

func TestMeasureText_UsesCache(t *testing.T) {
	st := store.NewMemStore()
	rd, r := setup(st, true)
	msg := proto.Message{Text: "hello"}
	for i := 0; i < 2; i++ {
		w, h, err := rd.MeasureText(msg)
		if err != nil || w != 50 || h != 20 {
			t.Errorf("MeasureText -> (%d, %d, %v), want (50, 20, nil)", w, h, err)
		}
	}
	if r.calls != 1 {
		t.Errorf("rasterized %d times, want 1", r.calls)
	}
	if _, err := st.Get(Key(msg.Key())); err != nil {
		t.Errorf("image not stored: %v", err)
	}

	rd2, r2 := setup(st, true)
	rd2.MeasureText(msg)
	if r2.calls != 0 {
		t.Errorf("second renderer rasterized %d times, want 0", r2.calls)
	}
}

func TestMeasureText_ReplacesDamagedCacheEntry(t *testing.T) {
	st := store.NewMemStore()
	msg := proto.Message{Text: "hello"}
	key := Key(msg.Key())
	testutil.Must(st.Put(key, []byte("\x89PNG truncated")))

	rd, r := setup(st, true)
	w, h, err := rd.MeasureText(msg)
	if err != nil || w != 50 || h != 20 {
		t.Errorf("MeasureText -> (%d, %d, %v), want (50, 20, nil)", w, h, err)
	}
	if r.calls != 1 {
		t.Errorf("rasterized %d times, want 1", r.calls)
	}
	data, err := st.Get(key)
	if err != nil {
		t.Fatalf("image not stored again: %v", err)
	}
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		t.Errorf("stored image does not decode: %v", err)
	}

	rd2, r2 := setup(st, true)
	rd2.MeasureText(msg)
	if r2.calls != 0 {
		t.Errorf("renderer after repair rasterized %d times, want 0", r2.calls)
	}
}

func TestMeasureText_NoCache(t *testing.T) {
	st := store.NewMemStore()
	rd, r := setup(st, false)
	rd.MeasureText(proto.Message{Text: "x"})
	if r.calls != 1 {
		t.Errorf("rasterized %d times, want 1", r.calls)
	}
	if _, err := st.Get(Key(`"x"`)); !errors.Is(err, storedefs.ErrNotFound) {
		t.Errorf("store was written without cache: %v", err)
	}
}

func TestMeasureText_Unescapes(t *testing.T) {
	rd, _ := setup(store.NewMemStore(), false)
	_, h, _ := rd.MeasureText(proto.Message{Text: `one\ntwo`})
	if h != 40 {
		t.Errorf("height %d, want 40 for two lines", h)
	}
}

func TestRender_SelfActionCenteredOnActor(t *testing.T) {
	rd, _ := setup(store.NewMemStore(), true)
	p, res := mustPreprocess(t, rd, testutil.Dedent(`
		protocol P
		actor Alice
		actor B
		B: "a rather long self action"
		Alice: "short"
		`))
	doc, err := rd.Render(p, res)
	if err != nil {
		t.Fatal(err)
	}
	var lifelines, actions []element
	for _, e := range elements(t, doc) {
		switch {
		case e.name == "line":
			lifelines = append(lifelines, e)
		case e.name == "rect" && e.attrs["rx"] != "":
			actions = append(actions, e)
		}
	}
	if len(lifelines) != 2 || len(actions) != 2 {
		t.Fatalf("got %d lifelines and %d action boxes, want 2 and 2", len(lifelines), len(actions))
	}
	// Actions are on B then Alice.
	for i, actor := range []int{1, 0} {
		box := actions[i]
		center := box.int(t, "x") + box.int(t, "width")/2
		if line := lifelines[actor].int(t, "x1"); center != line {
			t.Errorf("action %d centered at %d, lifeline at %d", i, center, line)
		}
	}
}

func TestOrient(t *testing.T) {
	res := &layout.Result{Actors: []layout.ActorBox{{Center: 7}, {Center: 32}}}
	left, right, l, r := orient(1, 0, proto.None, proto.Right, res)
	if left != 0 || right != 1 || l != proto.Left || r != proto.None {
		t.Errorf("orient(B->A) = %d, %d, %v, %v; want 0, 1, <, -", left, right, l, r)
	}
	left, right, l, r = orient(0, 1, proto.Left, proto.Right, res)
	if left != 0 || right != 1 || l != proto.Left || r != proto.Right {
		t.Errorf("orient(A<>B) = %d, %d, %v, %v; want 0, 1, <, >", left, right, l, r)
	}
}

func TestRender_ArrowDrawnLeftToRight(t *testing.T) {
	rd, _ := setup(store.NewMemStore(), true)
	p, res := mustPreprocess(t, rd, "protocol P\nactor A\nactor B\nB->A: \"back\"\n")
	doc, err := rd.Render(p, res)
	if err != nil {
		t.Fatal(err)
	}
	g := options.Default().Protocol.GridSize
	var arrow *element
	for _, e := range elements(t, doc) {
		if e.name == "image" && e.attrs["y"] == strconv.Itoa(res.Rows[0].Y*g) {
			a := e
			arrow = &a
			break
		}
	}
	if arrow == nil {
		t.Fatalf("no arrow image in\n%s", doc)
	}
	x0, x1 := res.Actors[0].Center*g, res.Actors[1].Center*g
	if arrow.int(t, "x") != x0 || arrow.int(t, "width") != x1-x0 {
		t.Errorf("arrow spans x=%s width=%s, want %d and %d",
			arrow.attrs["x"], arrow.attrs["width"], x0, x1-x0)
	}

	glyphs, err := rd.loadGlyphs()
	if err != nil {
		t.Fatal(err)
	}
	fragment := decodeDataURI(t, arrow.attrs["href"], svgMIME)
	var heads []element
	for _, e := range elements(t, fragment) {
		if e.name == "image" && e.attrs["width"] == strconv.Itoa(glyphWidth) {
			heads = append(heads, e)
		}
	}
	if len(heads) != 1 {
		t.Fatalf("got %d arrowheads, want 1", len(heads))
	}
	if heads[0].attrs["x"] != "0" || heads[0].attrs["href"] != glyphs.left {
		t.Errorf("arrowhead at x=%s, want a left-pointing head at x=0", heads[0].attrs["x"])
	}
}

func TestRender_Deterministic(t *testing.T) {
	code := testutil.Dedent(`
		protocol P
		A->B: "same"
		B->A: "same"
		A: "same"
		`)
	var docs [2][]byte
	for i := range docs {
		rd, _ := setup(store.NewMemStore(), true)
		p, res := mustPreprocess(t, rd, code)
		doc, err := rd.Render(p, res)
		if err != nil {
			t.Fatal(err)
		}
		docs[i] = doc
	}
	if !bytes.Equal(docs[0], docs[1]) {
		t.Errorf("rendering the same document twice gave different bytes")
	}
}

func TestRender_EndCaps(t *testing.T) {
	rd, _ := setup(store.NewMemStore(), true)
	p, res := mustPreprocess(t, rd, "protocol P\nactor A\n")
	doc, _ := rd.Render(p, res)
	elems := elements(t, doc)
	last := elems[len(elems)-1]
	if last.name != "rect" || last.attrs["width"] != "40" || last.attrs["height"] != "2" {
		t.Errorf("last element is %+v, want a 40x2 end cap", last)
	}
	g := options.Default().Protocol.GridSize
	if last.int(t, "y") != res.End*g || last.int(t, "x") != res.Actors[0].Center*g-20 {
		t.Errorf("end cap at (%s, %s)", last.attrs["x"], last.attrs["y"])
	}
}

func TestRender_CanvasSize(t *testing.T) {
	rd, _ := setup(store.NewMemStore(), true)
	p, res := mustPreprocess(t, rd, "protocol P(width=100)\nactor A\n")
	doc, _ := rd.Render(p, res)
	root := elements(t, doc)[0]
	if root.attrs["width"] != "1000" || root.int(t, "height") != res.Height*10 {
		t.Errorf("canvas is %sx%s, want 1000x%d", root.attrs["width"], root.attrs["height"], res.Height*10)
	}
}

func TestRender_Pictures(t *testing.T) {
	dir := testutil.InTempDir(t)
	var img bytes.Buffer
	png.Encode(&img, image.NewGray(image.Rect(0, 0, 30, 20)))
	testutil.MustWriteFile(filepath.Join(dir, "logo.png"), img.Bytes())

	rd, _ := setup(store.NewMemStore(), true)
	p, res := mustPreprocess(t, rd, "protocol P\npicture Logo(height=4): \"logo.png\"\n")
	doc, err := rd.Render(p, res)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range elements(t, doc) {
		if e.attrs["id"] == "picture-Logo" {
			if e.attrs["width"] != "30" || e.attrs["height"] != "40" {
				t.Errorf("picture is %sx%s, want 30x40", e.attrs["width"], e.attrs["height"])
			}
			inner := decodeDataURI(t, e.attrs["href"], svgMIME)
			if !bytes.Contains(inner, []byte("data:image/png;base64,")) {
				t.Errorf("picture fragment does not embed the PNG")
			}
			return
		}
	}
	t.Errorf("no picture-Logo element in\n%s", doc)
}

func TestRender_CustomGlyphFolder(t *testing.T) {
	opts := options.Default()
	opts.Folder.Arrow = testutil.TempDir(t)
	rd := New(opts, &fakeRasterizer{}, store.NewMemStore(), true)
	p, res := mustPreprocess(t, rd, "protocol P\nA->B: \"x\"\n")
	if _, err := rd.Render(p, res); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing glyphs: got %v, want ErrNotExist", err)
	}

	testutil.ApplyDirIn(testutil.Dir{"left.svg": "<svg/>", "right.svg": "<svg/>"}, opts.Folder.Arrow)
	rd = New(opts, &fakeRasterizer{}, store.NewMemStore(), true)
	p, res = mustPreprocess(t, rd, "protocol P\nA->B: \"x\"\n")
	if _, err := rd.Render(p, res); err != nil {
		t.Errorf("custom glyphs: %v", err)
	}
}

func TestDraw(t *testing.T) {
	dir := testutil.TempDir(t)
	outfile := filepath.Join(dir, "out", "P.svg")
	rd, _ := setup(store.NewMemStore(), true)
	p, _ := parse.Parse(parse.Source{Name: "[test]", Code: "protocol P\nA->B: \"hi\"\n"}, parse.Config{})
	if err := rd.Draw(p, outfile); err != nil {
		t.Fatal(err)
	}
	data := testutil.MustReadFile(outfile)
	if !bytes.HasPrefix(data, []byte("<?xml")) {
		t.Errorf("output is not an SVG document: %.40s", data)
	}
	if !p.Width.Set || !p.Height.Set {
		t.Errorf("Draw did not resolve the canvas size")
	}
	entries := testutil.Must1(os.ReadDir(filepath.Dir(outfile)))
	if len(entries) != 1 {
		t.Errorf("output directory has %d entries, want 1", len(entries))
	}
}

func TestDraw_FailureLeavesNoFile(t *testing.T) {
	outfile := filepath.Join(testutil.TempDir(t), "P.svg")
	r := &fakeRasterizer{fail: "boom"}
	rd := New(options.Default(), r, store.NewMemStore(), true)
	p, _ := parse.Parse(parse.Source{Name: "[test]", Code: "protocol P\nA: \"boom\"\n"}, parse.Config{})
	if err := rd.Draw(p, outfile); err == nil {
		t.Errorf("got nil error")
	}
	if _, err := os.Stat(outfile); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("output file exists after a failed Draw")
	}
}
