package opcmd

import "github.com/spf13/cobra"

func NewOperationsGroup() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "Commands for operation managing",
	}

	cmd.AddCommand(
		NewGetOperationCmd(),
		NewListOperationsCmd(),
		NewWaitOperationCmd(),
		NewCancelOperationCmd(),
		NewDeleteOperationCmd(),
	)

	return cmd
}
