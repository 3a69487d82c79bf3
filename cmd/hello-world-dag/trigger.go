package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/maestro/hello-world-dag/internal/dags"
	pb "github.com/maestro/hello-world-dag/pkg/proto"
)

func newTriggerCmd(_ *rootFlags) *cobra.Command {
	var (
		addr      string
		name      string
		inputJSON string
		params    []string
		wait      bool
		poll      time.Duration
	)

	cmd := &cobra.Command{
		Use:     "trigger",
		Short:   "Trigger a run on a running server",
		Example: `  hello-world-dag trigger --addr localhost:8080 -p s3SourceBucket=demo-bucket -p s3SourceBucketKey=input.json`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values, err := parseParams(inputJSON, params)
			if err != nil {
				return err
			}

			conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
			if err != nil {
				return fmt.Errorf("failed to create gRPC client: %w", err)
			}
			defer conn.Close()

			status, err := triggerRun(cmd, pb.NewDagServiceClient(conn), pb.TriggerRequest{
				Workflow: name,
				Params:   values,
			}, wait, poll)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Run %s of %s: %s\n", status.RunID, name, status.Status)
			if status.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "  error: %s\n", status.Error)
			}
			if wait && status.Status != "success" {
				return fmt.Errorf("run %s finished with status %s", status.RunID, status.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "Server address")
	cmd.Flags().StringVarP(&name, "workflow", "w", dags.HelloWorldID, "Workflow to trigger")
	cmd.Flags().StringVarP(&inputJSON, "input", "i", "", "Params as a JSON object")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "Param as key=value (repeatable)")
	cmd.Flags().BoolVar(&wait, "wait", true, "Wait for the run to finish")
	cmd.Flags().DurationVar(&poll, "poll", time.Second, "Polling interval while waiting")

	return cmd
}

func triggerRun(
	cmd *cobra.Command,
	client pb.DagServiceClient,
	req pb.TriggerRequest,
	wait bool,
	poll time.Duration,
) (pb.RunStatus, error) {
	ctx := cmd.Context()

	in, err := req.ToStruct()
	if err != nil {
		return pb.RunStatus{}, fmt.Errorf("failed to encode request: %w", err)
	}

	out, err := client.Trigger(ctx, in)
	if err != nil {
		return pb.RunStatus{}, fmt.Errorf("failed to trigger run: %w", err)
	}

	ref, err := pb.ParseRunRef(out)
	if err != nil {
		return pb.RunStatus{}, err
	}

	if !wait {
		return pb.RunStatus{RunID: ref.RunID, Status: "queued"}, nil
	}

	refStruct, err := ref.ToStruct()
	if err != nil {
		return pb.RunStatus{}, err
	}

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		resp, err := client.GetRun(ctx, refStruct)
		if err != nil {
			return pb.RunStatus{}, fmt.Errorf("failed to get run %s: %w", ref.RunID, err)
		}

		status := pb.ParseRunStatus(resp)
		switch status.Status {
		case "success", "failed", "cancelled":
			return status, nil
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}
