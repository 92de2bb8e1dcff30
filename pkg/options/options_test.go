package options

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.protosketch.dev/pkg/testutil"
	"src.protosketch.dev/pkg/tt"
)

func TestDefault_IsValid(t *testing.T) {
	o := Default()
	if err := o.Validate(); err != nil {
		t.Errorf("default options invalid: %v", err)
	}
}

func TestSet(t *testing.T) {
	o := Default()
	for _, kv := range [][2]string{
		{"actor.min_span", "30"},
		{"protocol.end_zoom", "0.5"},
		{"folder.arrow", "glyphs"},
		{"cache.redis_addr", "redis:6380"},
	} {
		if err := o.Set(kv[0], kv[1]); err != nil {
			t.Fatalf("Set(%q, %q): %v", kv[0], kv[1], err)
		}
	}
	want := Default()
	want.Actor.MinSpan = 30
	want.Protocol.EndZoom = 0.5
	want.Folder.Arrow = "glyphs"
	want.Cache.RedisAddr = "redis:6380"
	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("options after Set (-want +got):\n%s", diff)
	}
}

func set(key, value string) error {
	o := Default()
	return o.Set(key, value)
}

func TestSet_Errors(t *testing.T) {
	tt.Test(t, tt.Fn(set).Named("Set"),
		tt.Args("actor.nope", "1").Rets(tt.ErrorMatching("unknown option actor.nope")),
		tt.Args("actor", "1").Rets(tt.ErrorMatching("unknown option actor")),
		tt.Args("pic.dpi", "lots").Rets(tt.ErrorMatching("option pic.dpi")),
		tt.Args("pic.dpi", "").Rets(tt.ErrorMatching("is not a scalar")),
		tt.Args("pic.dpi", "[1, 2]").Rets(tt.ErrorMatching("is not a scalar")),
		tt.Args("pic.dpi", "300").Rets(nil),
	)
	if err := set("x.y", "1"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("got %v, want ErrUnknownKey", err)
	}
}

func TestKeys(t *testing.T) {
	o := Default()
	kvs := o.Keys()
	if len(kvs) != 25 {
		t.Errorf("got %d keys, want 25", len(kvs))
	}
	if kvs[0] != (KeyValue{"pic.dpi", "600"}) {
		t.Errorf("first key is %v, want pic.dpi=600", kvs[0])
	}
	for _, kv := range kvs {
		got, ok := o.Get(kv.Key)
		if !ok || got != kv.Value {
			t.Errorf("Get(%q) = (%q, %v), want (%q, true)", kv.Key, got, ok, kv.Value)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.ApplyDirIn(testutil.Dir{
		"good.yaml": "actor:\n  min_span: 40\ncache:\n  backend: bolt\n",
		"empty.yaml": "",
		"bad.yaml":   "actor:\n  min_spam: 40\n",
	}, dir)

	o, err := Load(filepath.Join(dir, "good.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Actor.MinSpan = 40
	want.Cache.Backend = BoltBackend
	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("Load (-want +got):\n%s", diff)
	}

	o, err = Load(filepath.Join(dir, "empty.yaml"))
	if err != nil || o != Default() {
		t.Errorf("empty file: got (%v, %v), want defaults", o, err)
	}

	_, err = Load(filepath.Join(dir, "bad.yaml"))
	if err == nil || !strings.Contains(err.Error(), "min_spam") {
		t.Errorf("unknown key: got %v, want error mentioning min_spam", err)
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	if err == nil {
		t.Errorf("missing file: got nil error")
	}
}

func TestValidate(t *testing.T) {
	o := Default()
	o.Protocol.GridSize = 0
	o.Cache.Backend = "memcached"
	err := o.Validate()
	if err == nil {
		t.Fatal("got nil error")
	}
	for _, want := range []string{"protocol.grid_size", "cache.backend"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}
