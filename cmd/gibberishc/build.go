package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"gibberish/pkg/compiler"
)

var buildOutput string

var buildCmd = &cobra.Command{
	Use:   "build <file.gib>",
	Short: "Compile a source file to assembly text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		res, cfg, err := compileFile(path)
		if err != nil {
			return err
		}

		out := buildOutput
		if out == "" {
			out = cfg.Build.Output
		}
		if out == "" {
			out = strings.TrimSuffix(path, filepath.Ext(path)) + ".s"
		}
		if err := os.WriteFile(out, []byte(res.Assembly), 0o644); err != nil {
			return err
		}
		pterm.Success.Printfln("wrote %s", out)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "assembly output path")
}

// compileFile reads, configures and compiles one source file.
// Diagnostics go to stderr as they are produced.
func compileFile(path string) (*compiler.Result, *Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := LoadConfig(filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}
	res, err := compiler.Compile(string(src), os.Stderr, compiler.Options{
		Entry: cfg.Build.Entry,
	})
	if err != nil {
		pterm.Error.Printfln("%s: %d error(s)", path, res.Errors)
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, cfg, nil
}
