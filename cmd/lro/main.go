package main

import (
	"context"
	"os/signal"
	"syscall"

	opcmd "github.com/longrunio/lro/cmd/lro/operations"
	errorutils "github.com/longrunio/lro/pkg/errors"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:   "lro",
		Short: "Tool for long-running operation management",
		Long:  "Tool for inspecting, waiting on, and managing long-running operations on any gRPC endpoint that implements google.longrunning.Operations.",
	}

	rootCmd.AddCommand(
		opcmd.NewOperationsGroup(),
	)

	errorutils.Try(rootCmd.ExecuteContext(ctx))
}
