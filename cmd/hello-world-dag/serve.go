package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/maestro/hello-world-dag/internal/dags"
	"github.com/maestro/hello-world-dag/internal/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		port          int
		workflowFiles []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the gRPC trigger API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), flags, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if err := registerServeWorkflows(a, workflowFiles); err != nil {
				return err
			}

			if !cmd.Flags().Changed("port") {
				port = a.cfg.Server.Port
			}

			lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
			if err != nil {
				return fmt.Errorf("failed to listen on port %d: %w", port, err)
			}

			logger := a.logger.With().Str("command", "serve").Logger()
			logger.Info().Int("port", port).Msg("Starting orchestrator server")

			err = server.New(cmd.Context(), a.orch, logger).Serve(cmd.Context(), lis)

			logger.Info().Msg("Shutting down orchestrator server")
			return err
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on")
	cmd.Flags().StringArrayVarP(&workflowFiles, "workflow", "f", nil, "Additional workflow YAML file to serve (repeatable)")

	return cmd
}

// registerServeWorkflows loads the given files, then the built-in workflow
// unless a file already declared its name.
func registerServeWorkflows(a *app, files []string) error {
	for _, path := range files {
		if _, err := a.loadWorkflow(path); err != nil {
			return err
		}
	}

	if _, exists := a.orch.GetWorkflow(dags.HelloWorldID); exists {
		a.logger.Info().
			Str("dag_id", dags.HelloWorldID).
			Msg("Built-in workflow overridden by file")
		return nil
	}

	_, err := a.loadWorkflow("")
	return err
}
