package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maestro/hello-world-dag/internal/workflow"
)

func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [workflow.yaml]",
		Short: "Validate a workflow file, or the built-in workflow",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}

			wf, err := a.loadWorkflow(path)
			if err != nil {
				a.logger.Error().Err(err).Msg("Workflow validation failed")
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Workflow %s is valid\n", wf.Name)
			return nil
		},
	}
}

func newDescribeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [workflow.yaml]",
		Short: "Print params, tasks and retry policy of a workflow",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var path string
			if len(args) == 1 {
				path = args[0]
			}

			wf, err := a.loadWorkflow(path)
			if err != nil {
				return err
			}

			levels, err := workflow.NewValidator(a.registry.Has).Levels(wf)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Workflow:    %s\n", wf.Name)
			fmt.Fprintf(w, "Description: %s\n", wf.Description)
			fmt.Fprintf(w, "Tags:        %s\n", strings.Join(wf.Tags, ", "))
			fmt.Fprintf(w, "Owner:       %s\n", wf.DefaultArgs.Owner)
			fmt.Fprintf(w, "Run timeout: %s\n", wf.RunTimeout.Duration)
			fmt.Fprintf(w, "Retries:     %d (delay %s)\n", wf.DefaultArgs.Retries, wf.DefaultArgs.RetryDelay.Duration)

			names := make([]string, 0, len(wf.Params))
			for name := range wf.Params {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Fprintln(w, "\nParams:")
			for _, name := range names {
				p := wf.Params[name]
				required := "optional"
				if p.Required() {
					required = "required"
				}
				fmt.Fprintf(w, "  %s (%s, %s): %s\n", name, p.Type, required, p.Title)
			}

			fmt.Fprintln(w, "\nTasks:")
			for i, level := range levels {
				for _, id := range level {
					task, _ := wf.Task(id)
					fmt.Fprintf(w, "  [%d] %s (%s) upstream: %s downstream: %s\n",
						i, id, task.Operator, joinIDs(task.Upstream), joinIDs(workflow.Downstream(wf, id)))
				}
			}

			return nil
		},
	}
}

func joinIDs(ids []string) string {
	if len(ids) == 0 {
		return "-"
	}
	return strings.Join(ids, ", ")
}
