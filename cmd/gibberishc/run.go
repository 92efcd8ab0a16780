package main

import (
	"os"

	"github.com/spf13/cobra"

	"gibberish/pkg/asm"
	"gibberish/pkg/mips"
)

var runCmd = &cobra.Command{
	Use:   "run <file.gib>",
	Short: "Compile, assemble and execute a source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _, err := compileFile(args[0])
		if err != nil {
			return err
		}
		prog, err := asm.Assemble(res.Assembly)
		if err != nil {
			return err
		}
		m := mips.New(os.Stdout, os.Stdin)
		return m.Run(prog)
	},
}
