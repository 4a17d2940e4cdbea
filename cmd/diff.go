package cmd

import (
	"github.com/spf13/cobra"
	"srcverify.dev/pkg/srcverify/internal/domain"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <base-report> <head-report>",
		Short: "Compare the per-file outcomes of two reports",
		Long: `Show a unified diff of the per-file outcomes of two saved reports, for
example a clean checkout against a CI workspace.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Diff(cmd.Context(), domain.DiffArgs{
				Base: m.Path(args[0]),
				Head: m.Path(args[1]),
			})
		},
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
