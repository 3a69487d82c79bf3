package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/maestro/hello-world-dag/internal/domain"
)

func newExecuteCmd(flags *rootFlags) *cobra.Command {
	var (
		workflowFile string
		inputJSON    string
		params       []string
	)

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Run the workflow once and wait for it to finish",
		Example: `  hello-world-dag execute -p s3SourceBucket=demo-bucket -p s3SourceBucketKey=input.json
  hello-world-dag execute -f workflows/hello-world-dag.yaml -i '{"s3SourceBucket":"demo-bucket","s3SourceBucketKey":"input.json"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := parseParams(inputJSON, params)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			wf, err := a.loadWorkflow(workflowFile)
			if err != nil {
				return err
			}

			logger := a.logger.With().Str("command", "execute").Logger()
			logger.Info().Str("workflow", wf.Name).Msg("Executing workflow")

			result, err := a.orch.ExecuteWorkflow(cmd.Context(), wf.Name, values)
			if result != nil {
				printRun(cmd.OutOrStdout(), result)
			}
			if err != nil {
				return fmt.Errorf("workflow %s: %w", wf.Name, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workflowFile, "workflow", "f", "", "Path to workflow YAML file (default: built-in hello-world-dag)")
	cmd.Flags().StringVarP(&inputJSON, "input", "i", "", "Params as a JSON object")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Param as key=value (repeatable)")

	return cmd
}

func printRun(w io.Writer, result *domain.RunResult) {
	fmt.Fprintf(w, "\nRun %s of %s: %s\n", result.RunID, result.DagID, result.Status)

	ids := make([]string, 0, len(result.Tasks))
	for id := range result.Tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		ti := result.Tasks[id]
		fmt.Fprintf(w, "  %-20s %-16s tries=%d\n", id, ti.State, ti.TryNumber)
		if ti.Error != nil {
			fmt.Fprintf(w, "  %-20s error: %v\n", "", ti.Error)
		}
		if ti.Output != nil {
			if data, err := json.MarshalIndent(ti.Output, "  ", "  "); err == nil {
				fmt.Fprintf(w, "  output:\n  %s\n", data)
			}
		}
	}
}
