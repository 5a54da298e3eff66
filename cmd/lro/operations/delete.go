package opcmd

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/spf13/cobra"
)

func NewDeleteOperationCmd() *cobra.Command {
	var (
		operationName string
		endpointAddr  string
		tls           bool
		caFile        string
		timeout       time.Duration
		project       string
		location      string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete operation record",
		RunE: func(cmd *cobra.Command, args []string) error {
			if operationName == "" {
				return fmt.Errorf("--name is required")
			}

			name, err := resolveName(operationName, project, location)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			conn, err := dialEndpoint(ctx, endpointAddr, tls, caFile)
			if err != nil {
				return err
			}
			defer conn.Close()

			client := longrunningpb.NewOperationsClient(conn)
			if _, err := client.DeleteOperation(ctx, &longrunningpb.DeleteOperationRequest{
				Name: name,
			}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "operation %s deleted\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&operationName, "name", "", "Operation name or id, e.g. operations/my-op")
	cmd.Flags().StringVar(&endpointAddr, "endpoint", "127.0.0.1:55055", "Operations gRPC address host:port")
	cmd.Flags().BoolVar(&tls, "tls", false, "Use TLS")
	cmd.Flags().StringVar(&caFile, "tls-ca", "", "CA file (PEM), optional")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Overall timeout")
	cmd.Flags().StringVar(&project, "project", "", "Default project for bare operation ids")
	cmd.Flags().StringVar(&location, "location", "", "Default location for bare operation ids")

	return cmd
}
