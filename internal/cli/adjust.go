package cli

import (
	"fmt"
	"strconv"

	"go-warehouse/internal/model"

	"github.com/spf13/cobra"
)

func newAdjustCommand(a *app) *cobra.Command {
	var remark string
	cmd := &cobra.Command{
		Use:   "adjust <code> <in|out> <count>",
		Short: "Move stock in or out of a product",
		Example: `  warehouse adjust A1 in 3 --remark "delivery"
  warehouse adjust A1 out 1`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			direction, err := model.ParseDirection(args[1])
			if err != nil {
				return err
			}
			count, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid count %q", args[2])
			}

			adj, err := a.ledger().AdjustStockByCode(cmd.Context(), args[0], count, direction, remark)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d: %s\n", direction, count, adj.Product.DisplayText())
			return nil
		},
	}
	cmd.Flags().StringVarP(&remark, "remark", "r", "", "free-text note stored with the record")
	return cmd
}
