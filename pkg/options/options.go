// Package options holds the tunable constants of layout and rendering.
//
// Options are plain values: they are copied into the engines that use them and
// never shared as global state. Every option has a dotted key made of its
// group and name, such as "actor.min_span", which is used both by
// [Options.Set] and in YAML option files:
//
//	actor:
//	  min_span: 30
//	cache:
//	  backend: bolt
package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"src.protosketch.dev/pkg/errutil"
)

// Options is the full set of options.
type Options struct {
	Pic      Pic      `yaml:"pic"`
	Actor    Actor    `yaml:"actor"`
	Action   Action   `yaml:"action"`
	Message  Message  `yaml:"message"`
	Protocol Protocol `yaml:"protocol"`
	Folder   Folder   `yaml:"folder"`
	Cache    Cache    `yaml:"cache"`
}

// Pic configures text rasterization.
type Pic struct {
	DPI      int `yaml:"dpi"`
	Zoom     int `yaml:"zoom"`
	Margin   int `yaml:"margin"`
	FontSize int `yaml:"font_size"`
}

// Actor configures actor boxes, in grid units.
type Actor struct {
	MinWidth int `yaml:"min_width"`
	MinSpan  int `yaml:"min_span"`
	Margin   int `yaml:"margin"`
}

// Action configures self-action boxes, in grid units.
type Action struct {
	MinWidth int `yaml:"min_width"`
	XMargin  int `yaml:"x_margin"`
	YMargin  int `yaml:"y_margin"`
}

// Message configures arrow labels.
type Message struct {
	LineHeight        int `yaml:"line_height"`
	BottomMarginPixel int `yaml:"bottom_margin_pixel"`
}

// Protocol configures the canvas.
type Protocol struct {
	Margin    int     `yaml:"margin"`
	EndMargin int     `yaml:"end_margin"`
	EndHeight int     `yaml:"end_height"`
	EndWidth  int     `yaml:"end_width"`
	EndZoom   float64 `yaml:"end_zoom"`
	LineWidth int     `yaml:"line_width"`
	GridSize  int     `yaml:"grid_size"`
}

// Folder configures the directories used.
type Folder struct {
	Work   string `yaml:"work"`
	Cache  string `yaml:"cache"`
	Output string `yaml:"output"`
	// Directory with left.svg and right.svg. Built-in glyphs are used when
	// empty.
	Arrow string `yaml:"arrow"`
}

// Cache configures the raster cache.
type Cache struct {
	Backend   string `yaml:"backend"`
	RedisAddr string `yaml:"redis_addr"`
}

// Cache backends.
const (
	DirBackend   = "dir"
	BoltBackend  = "bolt"
	RedisBackend = "redis"
)

// Default returns the default options.
func Default() Options {
	return Options{
		Pic:      Pic{DPI: 600, Zoom: 8, Margin: 3, FontSize: 20},
		Actor:    Actor{MinWidth: 8, MinSpan: 25, Margin: 3},
		Action:   Action{MinWidth: 6, XMargin: 3, YMargin: 3},
		Message:  Message{LineHeight: 3, BottomMarginPixel: 2},
		Protocol: Protocol{Margin: 3, EndMargin: 1, EndHeight: 1, EndWidth: 20, EndZoom: 0.2, LineWidth: 1, GridSize: 10},
		Folder:   Folder{Work: ".", Cache: ".proto-sketch/cache", Output: ".proto-sketch/output"},
		Cache:    Cache{Backend: DirBackend, RedisAddr: "localhost:6379"},
	}
}

// ErrUnknownKey is wrapped in errors returned by [Options.Set] for keys that
// don't exist.
var ErrUnknownKey = errors.New("unknown option")

// Set sets the option with the given dotted key. The value is parsed as a YAML
// scalar of the option's type, except for string options which take the value
// verbatim.
func (o *Options) Set(key, value string) error {
	field, ok := o.field(key)
	if !ok {
		return fmt.Errorf("%w %s", ErrUnknownKey, key)
	}
	if field.Kind() == reflect.String {
		field.SetString(value)
		return nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(value), &node); err != nil {
		return fmt.Errorf("option %s: %w", key, err)
	}
	if len(node.Content) != 1 || node.Content[0].Kind != yaml.ScalarNode {
		return fmt.Errorf("option %s: %q is not a scalar", key, value)
	}
	if err := node.Content[0].Decode(field.Addr().Interface()); err != nil {
		return fmt.Errorf("option %s: %w", key, err)
	}
	return nil
}

// Get returns the value of the option with the given dotted key, formatted as
// in [Options.Keys].
func (o *Options) Get(key string) (string, bool) {
	field, ok := o.field(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(field.Interface()), true
}

// KeyValue is an option key with its current value.
type KeyValue struct {
	Key   string
	Value string
}

// Keys returns all option keys with their current values, in declaration
// order.
func (o *Options) Keys() []KeyValue {
	var kvs []KeyValue
	v := reflect.ValueOf(o).Elem()
	for i := 0; i < v.NumField(); i++ {
		group := v.Type().Field(i)
		for j := 0; j < group.Type.NumField(); j++ {
			key := yamlName(group) + "." + yamlName(group.Type.Field(j))
			kvs = append(kvs, KeyValue{key, fmt.Sprint(v.Field(i).Field(j).Interface())})
		}
	}
	return kvs
}

func (o *Options) field(key string) (reflect.Value, bool) {
	groupName, name, ok := strings.Cut(key, ".")
	if !ok {
		return reflect.Value{}, false
	}
	v := reflect.ValueOf(o).Elem()
	for i := 0; i < v.NumField(); i++ {
		group := v.Type().Field(i)
		if yamlName(group) != groupName {
			continue
		}
		for j := 0; j < group.Type.NumField(); j++ {
			if yamlName(group.Type.Field(j)) == name {
				return v.Field(i).Field(j), true
			}
		}
	}
	return reflect.Value{}, false
}

func yamlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
	return name
}

// Load reads a YAML option file on top of the default options. Unknown keys
// are errors.
func Load(path string) (Options, error) {
	o := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return o, err
	}
	if err := o.Merge(data); err != nil {
		return o, fmt.Errorf("%s: %w", path, err)
	}
	return o, nil
}

// Merge overrides options with the ones in a YAML document.
func (o *Options) Merge(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(o)
	if errors.Is(err, io.EOF) {
		// Empty document.
		return nil
	}
	return err
}

// Validate checks that the options can be used for rendering.
func (o *Options) Validate() error {
	var errs []error
	positive := func(key string, n int) {
		if n <= 0 {
			errs = append(errs, fmt.Errorf("option %s must be positive, got %d", key, n))
		}
	}
	positive("pic.dpi", o.Pic.DPI)
	positive("pic.zoom", o.Pic.Zoom)
	positive("pic.font_size", o.Pic.FontSize)
	positive("protocol.grid_size", o.Protocol.GridSize)
	if o.Protocol.EndZoom <= 0 {
		errs = append(errs, fmt.Errorf("option protocol.end_zoom must be positive, got %v", o.Protocol.EndZoom))
	}
	switch o.Cache.Backend {
	case DirBackend, BoltBackend, RedisBackend:
	default:
		errs = append(errs, fmt.Errorf("option cache.backend must be one of dir, bolt and redis, got %q", o.Cache.Backend))
	}
	return errutil.Multi(errs...)
}
