package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/milad/simplenem12/internal/export"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Output string
	Out    string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a SimpleNEM12 file and print its meter reads",
		Long: `Parse a SimpleNEM12 file and render every meter read.

Exit codes:
  0 - File is valid
  1 - File is invalid
  2 - Usage or I/O error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|csv|xlsx)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write to this file instead of stdout")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) (err error) {
	format, err := export.ParseFormat(opts.Output)
	if err != nil {
		return err
	}

	reads, ok, err := load(args[0], cmd.ErrOrStderr())
	if err != nil || !ok {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if opts.Out != "" {
		f, cerr := os.Create(opts.Out)
		if cerr != nil {
			return fmt.Errorf("creating output: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing output: %w", cerr)
			}
		}()
		w = f
	}

	if err := export.Write(w, format, reads); err != nil {
		return fmt.Errorf("writing %s output: %w", format, err)
	}
	return nil
}
