package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/datanode/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <node> <task> -- <command> [args...]",
		Short: "Run a command as a task of a data node",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dash := cmd.ArgsLenAtDash()
			if dash != 2 || len(args) == dash {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			redo, _ := cmd.Flags().GetBool("redo")
			keepOldData, _ := cmd.Flags().GetBool("keep-old-data")
			class, _ := cmd.Flags().GetString("class")
			required, _ := cmd.Flags().GetStringSlice("require")
			outputs, _ := cmd.Flags().GetStringSlice("expect")

			return c.app.Run(cmd.Context(), args[0], args[1], args[dash:], app.RunOptions{
				Redo:            redo,
				KeepOldData:     keepOldData,
				Class:           class,
				RequiredTasks:   required,
				ExpectedOutputs: outputs,
				Output:          outputFlag(cmd),
			})
		},
	}
	cmd.Flags().BoolP("redo", "r", false, "Run the task again even if it completed")
	cmd.Flags().Bool("keep-old-data", false, "Keep the files of a previous run")
	cmd.Flags().StringP("class", "c", "", "Fail unless the node is of this class")
	cmd.Flags().StringSlice("require", nil, "Tasks that must have completed first")
	cmd.Flags().StringSlice("expect", nil, "Outputs, relative to the task directory, the command must produce")
	return cmd
}
