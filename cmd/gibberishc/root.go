package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "gibberishc",
	Short:         "Compiler for the Gibberish teaching language",
	Long:          "gibberishc compiles Gibberish source to stack-machine assembly,\nand can assemble and execute the result directly.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
}
