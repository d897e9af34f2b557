package cli

import (
	"fmt"
	"text/tabwriter"

	"go-warehouse/internal/model"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newProductCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalog",
	}
	cmd.AddCommand(newProductAddCommand(a), newProductListCommand(a))
	return cmd
}

func newProductAddCommand(a *app) *cobra.Command {
	var (
		p     model.Product
		price string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("invalid --price %q", price)
			}
			p.Price = d
			if err := a.inventory(nil).CreateProduct(cmd.Context(), &p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added #%d %s\n", p.ID, p.DisplayText())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Code, "code", "", "unique product code (required)")
	f.StringVar(&p.Name, "name", "", "product name (required)")
	f.StringVar(&p.Category, "category", "", "category")
	f.StringVar(&p.Unit, "unit", "", "unit of measure")
	f.StringVar(&price, "price", "0", "unit price")
	f.IntVar(&p.Quantity, "quantity", 0, "opening stock")
	f.IntVar(&p.MinStock, "min-stock", 0, "low stock warning threshold")
	cmd.MarkFlagRequired("code")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newProductListCommand(a *app) *cobra.Command {
	var (
		search string
		low    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := a.inventory(nil)
			var (
				products []model.Product
				err      error
			)
			if low {
				products, err = svc.GetLowStockProducts(cmd.Context())
			} else {
				products, err = svc.GetProducts(cmd.Context(), search)
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tNAME\tCATEGORY\tUNIT\tPRICE\tQTY\tMIN\t")
			for _, p := range products {
				flag := ""
				if p.IsLowStock() {
					flag = "LOW"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					p.ID, p.Code, p.Name, p.Category, p.Unit, p.Price.String(), p.Quantity, p.MinStock, flag)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive name filter")
	cmd.Flags().BoolVar(&low, "low", false, "only products under their warning threshold")
	return cmd
}
