package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a SimpleNEM12 file without printing its contents",
		Long: `Validate a SimpleNEM12 file.

Checks:
  - 100 is the first line and 900 the last non-blank line
  - Field counts per record type
  - NMI length, energy unit, date, volume and quality values
  - Every 300 record follows a 200 record`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	reads, ok, err := load(args[0], cmd.ErrOrStderr())
	if err != nil || !ok {
		return err
	}

	intervals := 0
	for _, mr := range reads {
		intervals += len(mr.Volumes)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d meter reads, %d intervals)\n", args[0], len(reads), intervals)
	return nil
}
