package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/datanode/internal/app"
)

func (c *CLI) newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit [roots...]",
		Short: "List running, failed and corrupt tasks below the given roots",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")
			failOnIncomplete, _ := cmd.Flags().GetBool("fail-on-incomplete")

			return c.app.Audit(cmd.Context(), args, app.AuditOptions{
				Watch:            watch,
				FailOnIncomplete: failOnIncomplete,
				Output:           outputFlag(cmd),
			})
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Audit again whenever the trees change")
	cmd.Flags().Bool("fail-on-incomplete", false, "Exit with an error when incomplete tasks are found")
	return cmd
}
