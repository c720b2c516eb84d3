package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nust-lang/nust/internal/bytecode"
	"github.com/nust-lang/nust/internal/compiler"
	"github.com/nust-lang/nust/internal/parser"
	"github.com/nust-lang/nust/internal/types"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: nustc <source_file>\n")
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(flag.Arg(0), os.Stderr))
}

// run compiles one source file and writes the assembly listing
// (`.ns`) and bytecode image (`.no`) next to it. Outputs are written
// only after compilation completed without error.
func run(path string, stderr io.Writer) int {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open file: %s\n", path)
		return 1
	}

	program, err := parser.New(string(source)).Parse()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	checker := types.NewChecker()
	checker.SetErrorOutput(stderr)
	if !checker.Check(program) {
		fmt.Fprintf(stderr, "Type checking failed\n")
		return 1
	}

	instructions, err := compiler.New().Compile(program)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 1
	}

	base := strings.TrimSuffix(path, filepath.Ext(path))

	if !writeArtifact(base+".ns", stderr, func(w io.Writer) error {
		return bytecode.WriteListing(w, instructions)
	}) {
		return 1
	}

	if !writeArtifact(base+".no", stderr, func(w io.Writer) error {
		return bytecode.WriteBinary(w, instructions)
	}) {
		return 1
	}

	return 0
}

func writeArtifact(path string, stderr io.Writer, write func(io.Writer) error) bool {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to open output file: %s\n", path)
		return false
	}

	if err := write(f); err != nil {
		f.Close()
		fmt.Fprintf(stderr, "Failed to write output file: %s\n", path)
		return false
	}

	if err := f.Close(); err != nil {
		fmt.Fprintf(stderr, "Failed to write output file: %s\n", path)
		return false
	}

	return true
}
