package cmd

import (
	"scsm/internal/cli"

	"github.com/spf13/cobra"
)

// outputFlag is the -o flag of list and status. The empty default is the
// status line stream.
type outputFlag struct {
	format string
}

func (f *outputFlag) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "output", "o", "", "Output format (table, json, yaml)")
}

func (f *outputFlag) validate() error {
	if f.format == "" {
		return nil
	}
	return cli.ValidateOutputFormat(f.format)
}

func (f *outputFlag) structured() bool {
	return f.format == string(cli.OutputFormatJSON) || f.format == string(cli.OutputFormatYAML)
}

func (f *outputFlag) table() bool {
	return f.format == string(cli.OutputFormatTable)
}
