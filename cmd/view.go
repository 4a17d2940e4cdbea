package cmd

import (
	"github.com/spf13/cobra"
	"srcverify.dev/pkg/srcverify/internal/domain"
	m "srcverify.dev/pkg/srcverify/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <report>",
		Short: "View a previously saved verification report",
		Long:  "View a verification report written by `srcverify verify`. The report digest is checked before it is shown.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.View(cmd.Context(), domain.ViewArgs{Report: m.Path(args[0])})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
