package opcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	opdomain "github.com/longrunio/lro/internal/domains/operations"
	"github.com/longrunio/lro/internal/poller"
	opapi "github.com/longrunio/lro/internal/transport/grpc/operations"
	"github.com/spf13/cobra"
)

func NewWaitOperationCmd() *cobra.Command {
	var (
		operationName string
		endpointAddr  string
		tls           bool
		caFile        string
		dialTimeout   time.Duration
		project       string
		location      string

		interval    time.Duration
		maxInterval time.Duration
		multiplier  float64
		maxWait     time.Duration
		message     string
	)

	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Poll operation until it completes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if operationName == "" {
				return fmt.Errorf("--name is required")
			}

			name, err := resolveName(operationName, project, location)
			if err != nil {
				return err
			}

			dialCtx, dialCancel := context.WithTimeout(cmd.Context(), dialTimeout)
			defer dialCancel()

			conn, err := dialEndpoint(dialCtx, endpointAddr, tls, caFile)
			if err != nil {
				return err
			}
			defer conn.Close()

			client := longrunningpb.NewOperationsClient(conn)
			get := func(ctx context.Context, n opdomain.OperationName) (*opdomain.Operation, error) {
				msg, err := client.GetOperation(ctx, &longrunningpb.GetOperationRequest{
					Name: string(n),
				})
				if err != nil {
					return nil, err
				}
				return opapi.OperationFromProto(msg)
			}

			out := cmd.OutOrStdout()
			op, err := poller.Poll(cmd.Context(), opdomain.OperationName(name), get, poller.Options{
				Interval:    interval,
				MaxInterval: maxInterval,
				Multiplier:  multiplier,
				MaxWait:     maxWait,
				Message:     message,
				OnPoll: func(op *opdomain.Operation, msg string) {
					if op.Done {
						return
					}
					if msg == "" {
						msg = "operation is running"
					}
					fmt.Fprintf(out, "waiting on %s: %s\n", op.Name, msg)
				},
			})

			var failed *poller.OperationFailedError
			var transport *poller.TransportError
			switch {
			case err == nil:
				return printDone(out, op)
			case errors.Is(err, poller.ErrDeadlineExceeded):
				fmt.Fprintf(out, "operation %s still running after %s\n", name, maxWait)
				return err
			case errors.As(err, &failed):
				fmt.Fprintf(out, "operation: name=%s, state=FAILED, error_code=%d, error=%s\n",
					failed.Name, failed.Code, failed.Message)
				return err
			case errors.As(err, &transport):
				return transport.Unwrap()
			default:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&operationName, "name", "", "Operation name or id, e.g. operations/my-op")
	cmd.Flags().StringVar(&endpointAddr, "endpoint", "127.0.0.1:55055", "Operations gRPC address host:port")
	cmd.Flags().BoolVar(&tls, "tls", false, "Use TLS")
	cmd.Flags().StringVar(&caFile, "tls-ca", "", "CA file (PEM), optional")
	cmd.Flags().DurationVar(&dialTimeout, "dial-timeout", 15*time.Second, "Connection timeout")
	cmd.Flags().StringVar(&project, "project", "", "Default project for bare operation ids")
	cmd.Flags().StringVar(&location, "location", "", "Default location for bare operation ids")

	cmd.Flags().DurationVar(&interval, "interval", poller.DefaultInterval, "Delay between polls")
	cmd.Flags().DurationVar(&maxInterval, "max-interval", 0, "Upper bound on the poll interval when it grows (0 = stay at --interval)")
	cmd.Flags().Float64Var(&multiplier, "multiplier", 1, "Interval growth factor per poll")
	cmd.Flags().DurationVar(&maxWait, "max-wait", 0, "Give up after this long (0 = wait forever)")
	cmd.Flags().StringVar(&message, "message", "", "Status line printed while waiting")

	return cmd
}

func printDone(w io.Writer, op *opdomain.Operation) error {
	_, err := fmt.Fprintln(w, formatOperation(op))
	return err
}
