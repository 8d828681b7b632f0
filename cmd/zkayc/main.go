// Package main implements component P: the zkayc command-line front-end.
// It reads a single source file, drives it through the pipeline, and
// prints either a success summary (including the generated verifier
// manifest) or every diagnostic the pipeline collected, in the teacher's
// caret-style convention.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	zkerrors "github.com/m-unkel/zkay-go/internal/errors"
	"github.com/m-unkel/zkay-go/internal/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: zkayc <file.kay>")
		os.Exit(1)
	}

	path := os.Args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	res := pipeline.Run(path, string(source))

	if len(res.Errors) > 0 {
		reporter := zkerrors.NewErrorReporter(path, string(source))
		for _, e := range res.Errors {
			fmt.Print(reporter.FormatError(e))
		}
	}

	if res.HasErrors() {
		color.Red("failed to process %s", path)
		os.Exit(1)
	}

	color.Green("processed %s", path)
	printManifest(res.Manifest)
}

func printManifest(m *pipeline.Manifest) {
	entries := m.Entries()
	if len(entries) == 0 {
		return
	}
	fmt.Println("\nverifier manifest:")
	for _, e := range entries {
		fmt.Printf("  %s.%s -> %s\n", e.Contract, e.Function, e.VerifierName)
	}
}
