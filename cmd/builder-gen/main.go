// Package main provides the CLI entrypoint for builder-gen.
//
// builder-gen reads record types from Go packages or descriptor files and
// writes a fluent builder for each of them:
//   - gen: generate and write builder files
//   - check: run the whole pipeline and report diagnostics without writing
package main

import (
	"errors"
	"fmt"
	"os"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "builder-gen:", err)
		}

		os.Exit(1)
	}
}
