package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile string
	debug      bool
	trace      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdout)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "hello-world-dag",
		Short: "Sample workflow that reads a JSON object from S3 and logs it",
		Long: `hello-world-dag runs a two task workflow: read-s3-input fetches a JSON
object from S3 and logs it, then the end task marks the run complete.

Configuration is read from an optional YAML file (--config) and from
environment variables prefixed with HELLO_DAG_, e.g. HELLO_DAG_AWS__REGION.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to config YAML file")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&flags.trace, "trace", false, "Enable trace logging")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newExecuteCmd(flags),
		newValidateCmd(flags),
		newDescribeCmd(flags),
		newServeCmd(flags),
		newTriggerCmd(flags),
	)

	return root
}
