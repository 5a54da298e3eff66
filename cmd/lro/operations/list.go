package opcmd

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/spf13/cobra"
)

func NewListOperationsCmd() *cobra.Command {
	var (
		endpointAddr string
		tls          bool
		caFile       string
		timeout      time.Duration

		filter    string
		pageSize  int32
		pageToken string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			conn, err := dialEndpoint(ctx, endpointAddr, tls, caFile)
			if err != nil {
				return err
			}
			defer conn.Close()

			client := longrunningpb.NewOperationsClient(conn)
			resp, err := client.ListOperations(ctx, &longrunningpb.ListOperationsRequest{
				Filter:    filter,
				PageSize:  pageSize,
				PageToken: pageToken,
			})
			if err != nil {
				return err
			}

			for _, op := range resp.GetOperations() {
				if op == nil {
					continue
				}
				if err := printOperation(cmd.OutOrStdout(), op); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "next_page_token=%s\n", resp.GetNextPageToken())
			return nil
		},
	}

	cmd.Flags().StringVar(&endpointAddr, "endpoint", "127.0.0.1:55055", "Operations gRPC address host:port")
	cmd.Flags().BoolVar(&tls, "tls", false, "Use TLS")
	cmd.Flags().StringVar(&caFile, "tls-ca", "", "CA file (PEM), optional")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Overall timeout")

	cmd.Flags().StringVar(&filter, "filter", "", "Filter expression, e.g. done=true")
	cmd.Flags().Int32Var(&pageSize, "page-size", 0, "Max number of operations to return (0 = server default)")
	cmd.Flags().StringVar(&pageToken, "page-token", "", "Pagination token from previous response")

	return cmd
}
