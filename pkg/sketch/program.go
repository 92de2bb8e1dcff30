package sketch

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"src.protosketch.dev/pkg/diag"
	"src.protosketch.dev/pkg/options"
	"src.protosketch.dev/pkg/prog"
)

// Program is the compiler subprogram. It formats or draws the document given
// with -f, as the only argument, or on stdin.
var Program prog.Program = program{}

type program struct{}

func (program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	opts, err := loadOptions(f)
	if err != nil {
		return err
	}
	if f.OptionsHelp {
		for _, kv := range opts.Keys() {
			fmt.Fprintf(fds[1], "%s = %s\n", kv.Key, kv.Value)
		}
		return nil
	}

	name, code, err := readSource(fds[0], f, args)
	if err != nil {
		return err
	}

	c, err := New(opts, !f.NoCache)
	if err != nil {
		return err
	}
	defer c.Close()

	var res result
	if f.Format {
		res.Result, err = c.Format(name, code)
		if err != nil {
			return reportError(fds, f, name, err)
		}
	}
	if f.Draw || !f.Format {
		res.Output, err = c.Draw(name, code, f.Output)
		if err != nil {
			return reportError(fds, f, name, err)
		}
	}

	if f.JSON {
		b, err := json.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(fds[1], string(b))
		return nil
	}
	if res.Result != "" {
		fmt.Fprint(fds[1], res.Result)
	}
	if res.Output != "" {
		fmt.Fprintln(fds[1], res.Output)
	}
	return nil
}

type result struct {
	Result string `json:"result,omitempty"`
	Output string `json:"output,omitempty"`
}

func loadOptions(f *prog.Flags) (options.Options, error) {
	opts := options.Default()
	if f.Options != "" {
		var err error
		opts, err = options.Load(f.Options)
		if err != nil {
			return opts, err
		}
	}
	for _, kv := range f.Option.Pairs() {
		if err := opts.Set(kv[0], kv[1]); err != nil {
			return opts, prog.BadUsage(err.Error())
		}
	}
	return opts, nil
}

func readSource(stdin *os.File, f *prog.Flags, args []string) (name, code string, err error) {
	if len(args) > 1 || (f.File != "" && len(args) > 0) {
		return "", "", prog.BadUsage("only one file may be given")
	}
	switch {
	case f.File != "":
		name = f.File
	case len(args) == 1:
		name = args[0]
	default:
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", err
		}
		return "[stdin]", string(b), nil
	}
	b, err := os.ReadFile(name)
	if err != nil {
		return "", "", err
	}
	return name, string(b), nil
}

func reportError(fds [3]*os.File, f *prog.Flags, name string, err error) error {
	if f.JSON {
		fds[1].Write(errorToJSON(name, err))
		fds[1].WriteString("\n")
	} else {
		diag.ShowError(fds[2], err)
	}
	return prog.Exit(2)
}
