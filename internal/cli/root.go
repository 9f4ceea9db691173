// Package cli provides the nem12 command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/milad/simplenem12/internal/cli/commands"
)

// Execute runs the root command with args and returns the exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	commands.ExitCode = commands.ExitOK

	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return commands.ExitError
	}
	return commands.ExitCode
}

// Main is the entry point used by cmd/nem12.
func Main() int {
	return Execute(os.Args[1:], os.Stdout, os.Stderr)
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nem12",
		Short: "Parse and validate SimpleNEM12 metering files",
		Long: `nem12 reads SimpleNEM12 files: a 100 start marker, 200 meter read
definitions, 300 interval volumes and a 900 end marker, one record per line.

A file is either entirely valid or rejected at its first error.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
