package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gibberish/pkg/compiler"
)

var checkAST bool

var checkCmd = &cobra.Command{
	Use:   "check <file.gib>",
	Short: "Run the front end only and report diagnostics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		cfg, err := LoadConfig(filepath.Dir(path))
		if err != nil {
			return err
		}
		prog, rep := compiler.Analyze(string(src), os.Stderr, compiler.Options{
			Entry: cfg.Build.Entry,
		})
		if rep.Errors > 0 {
			pterm.Error.Printfln("%s: %d error(s)", path, rep.Errors)
			return fmt.Errorf("%s: %w", path, compiler.ErrCompileFailed)
		}
		pterm.Success.Printfln("%s: no errors", path)
		if checkAST && prog != nil {
			fmt.Print(compiler.Unparse(prog))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkAST, "ast", false, "print the parsed program")
}
