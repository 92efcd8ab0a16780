package main

import (
	"errors"
	"os"

	"github.com/pterm/pterm"

	"gibberish/pkg/compiler"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Compile failures were already reported with their counts.
		if !errors.Is(err, compiler.ErrCompileFailed) {
			pterm.Error.Printfln("%v", err)
		}
		os.Exit(1)
	}
}
