// Package prog provides the entry point to protosketch. Its subpackages
// correspond to subprograms of protosketch.
package prog

// This package sets up the basic environment and calls the appropriate
// "subprogram", one of the version printer, the language server, or the
// compiler.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"src.protosketch.dev/pkg/logutil"
)

// Flags keeps command-line flags.
type Flags struct {
	Log string

	Help, Version, BuildInfo, JSON bool

	File, Output string

	Format, Draw, NoCache bool

	Options     string
	Option      KeyValues
	OptionsHelp bool

	LSP bool
}

// KeyValues collects repeated "key=value" flags in order.
type KeyValues []string

func (kv *KeyValues) String() string { return strings.Join(*kv, ",") }

func (kv *KeyValues) Set(s string) error {
	if !strings.Contains(s, "=") {
		return fmt.Errorf("%q is not of the form key=value", s)
	}
	*kv = append(*kv, s)
	return nil
}

// Pairs splits each element into its key and value.
func (kv KeyValues) Pairs() [][2]string {
	pairs := make([][2]string, len(kv))
	for i, s := range kv {
		k, v, _ := strings.Cut(s, "=")
		pairs[i] = [2]string{strings.TrimSpace(k), strings.TrimSpace(v)}
	}
	return pairs
}

func newFlagSet(f *Flags) *flag.FlagSet {
	fs := flag.NewFlagSet("protosketch", flag.ContinueOnError)
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)

	fs.StringVar(&f.Log, "log", "", "a file to write debug log to")

	fs.BoolVar(&f.Help, "help", false, "show usage help and quit")
	fs.BoolVar(&f.Version, "version", false, "show version and quit")
	fs.BoolVar(&f.BuildInfo, "buildinfo", false, "show build info and quit")
	fs.BoolVar(&f.JSON, "json", false, "show output in JSON. Useful with -buildinfo")

	fs.StringVar(&f.File, "f", "", "read the protocol source from `file` instead of the argument")
	fs.StringVar(&f.Output, "o", "", "write the SVG to `file` instead of <folder.output>/<name>.svg")
	fs.BoolVar(&f.Format, "format", false, "print the canonical form of the protocol")
	fs.BoolVar(&f.Draw, "draw", false, "render the protocol to SVG")
	fs.BoolVar(&f.NoCache, "no-cache", false, "neither read nor write the raster cache")

	fs.StringVar(&f.Options, "options", "", "load options from a YAML `file`")
	fs.Var(&f.Option, "option", "set an option as `key=value`; may be repeated")
	fs.BoolVar(&f.OptionsHelp, "options-help", false, "list all options with their values and quit")

	fs.BoolVar(&f.LSP, "lsp", false, "run the language server")

	return fs
}

func usage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: protosketch [flags] [file]")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// Run parses command-line flags and runs the first applicable subprogram. It
// returns the exit status of the program.
func Run(fds [3]*os.File, args []string, p Program) int {
	f := &Flags{}
	fs := newFlagSet(f)
	err := fs.Parse(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			// (*flag.FlagSet).Parse returns ErrHelp when -h or -help was
			// requested but *not* defined. -help is defined but -h is not, so
			// treat -h like any other undefined flag.
			fmt.Fprintln(fds[2], "flag provided but not defined: -h")
		} else {
			fmt.Fprintln(fds[2], err)
		}
		usage(fds[2], fs)
		return 2
	}

	if f.Log != "" {
		err = logutil.SetOutputFile(f.Log)
		if err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}

	if f.Help {
		usage(fds[1], fs)
		return 0
	}

	err = p.Run(fds, f, fs.Args())
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(fds[2], msg)
	}
	var (
		bad  badUsageError
		exit exitError
	)
	switch {
	case errors.As(err, &bad):
		usage(fds[2], fs)
	case errors.As(err, &exit):
		return exit.exit
	}
	return 2
}

// Composite returns a Program that tries each of the given programs,
// terminating at the first one that doesn't return ErrNotSuitable.
func Composite(programs ...Program) Program {
	return compositeProgram(programs)
}

type compositeProgram []Program

func (cp compositeProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	for _, p := range cp {
		err := p.Run(fds, f, args)
		if err != ErrNotSuitable {
			return err
		}
	}
	// If we have reached here, all subprograms have returned ErrNotSuitable
	return ErrNotSuitable
}

// ErrNotSuitable is a special error that may be returned by Program.Run, to
// signify that this Program should not be run. It is useful when a Program is
// used in Composite.
var ErrNotSuitable = errors.New("internal error: no suitable subprogram")

// BadUsage returns a special error that may be returned by Program.Run. It
// causes the main function to print out a message, the usage information and
// exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by Program.Run. It causes
// the main function to exit with the given code without printing any error
// messages. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }

// Program represents a subprogram.
type Program interface {
	// Run runs the subprogram.
	Run(fds [3]*os.File, f *Flags, args []string) error
}
