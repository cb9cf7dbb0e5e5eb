package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/datanode/internal/app"
)

func (c *CLI) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <parent> <name>",
		Short: "Create a data node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, _ := cmd.Flags().GetString("class")
			onExists, _ := cmd.Flags().GetString("on-exists")

			return c.app.Create(cmd.Context(), args[0], args[1], app.CreateOptions{
				Class:    class,
				OnExists: onExists,
				Output:   outputFlag(cmd),
			})
		},
	}
	cmd.Flags().StringP("class", "c", "", "Class recorded in the node marker")
	cmd.Flags().String("on-exists", "fail", "What to do when the node exists: fail, override or reuse")
	return cmd
}

func (c *CLI) newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks <node>",
		Short: "List the tasks of a data node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, _ := cmd.Flags().GetString("class")
			return c.app.Tasks(cmd.Context(), args[0], app.ListOptions{Class: class, Output: outputFlag(cmd)})
		},
	}
	cmd.Flags().StringP("class", "c", "", "Fail unless the node is of this class")
	return cmd
}

func (c *CLI) newChildrenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "children <node>",
		Short: "List the child nodes of a data node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, _ := cmd.Flags().GetString("class")
			return c.app.Children(cmd.Context(), args[0], app.ListOptions{Class: class, Output: outputFlag(cmd)})
		},
	}
	cmd.Flags().StringP("class", "c", "", "Fail unless the node is of this class")
	return cmd
}

func (c *CLI) newDeclareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "declare <node> <task>...",
		Short: "Declare tasks so they show up as not started",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Declare(cmd.Context(), args[0], args[1:])
		},
	}
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <node>",
		Short: "Remove a data node or one of its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, _ := cmd.Flags().GetString("task")
			yes, _ := cmd.Flags().GetBool("yes")
			return c.app.Remove(cmd.Context(), args[0], app.RemoveOptions{Task: task, Yes: yes})
		},
	}
	cmd.Flags().StringP("task", "t", "", "Remove only this task")
	cmd.Flags().BoolP("yes", "y", false, "Confirm the irreversible removal")
	return cmd
}
