// Protosketch compiles protocol sequence diagrams written in a small text
// language into self-contained SVG documents. It also canonically formats
// documents and serves as a language server for editors.
package main

import (
	"os"

	"src.protosketch.dev/pkg/buildinfo"
	"src.protosketch.dev/pkg/lsp"
	"src.protosketch.dev/pkg/prog"
	"src.protosketch.dev/pkg/sketch"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program, lsp.Program, sketch.Program)))
}
