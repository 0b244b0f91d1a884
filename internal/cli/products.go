package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/favcart/internal/client"
)

// NewProductsCommand lists the public catalog without logging in.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "products",
		Short:        "List products",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			hc, err := rootOpts.newHTTPClient()
			if err != nil {
				return err
			}
			store := client.NewStore(hc, nil)
			defer store.Close()

			if err := store.FetchProducts(cmd.Context()); err != nil {
				return fmt.Errorf("fetch products: %w", err)
			}
			return printProducts(cmd.OutOrStdout(), store.Products(), nil)
		},
	}
}

func printProducts(w io.Writer, products []client.Product, user *client.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tRATING\tSELLER\tFAV")
	for _, p := range products {
		seller := ""
		if p.SoldBy != nil {
			seller = p.SoldBy.FullName
		}
		fav := ""
		if user.IsFavorite(p.ID) {
			fav = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.1f\t%s\t%s\n", p.ID, p.Name, p.Price, p.Ratings, seller, fav)
	}
	return tw.Flush()
}

func printCart(w io.Writer, lines []client.CartLine) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tNAME\tQTY\tSUBTOTAL")
	var total float64
	for _, l := range lines {
		if l.Product == nil {
			fmt.Fprintf(tw, "%s\t(no longer available)\t%d\t-\n", l.ProductID(), l.Quantity)
			continue
		}
		sub := l.Product.Price * float64(l.Quantity)
		total += sub
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\n", l.Product.ID, l.Product.Name, l.Quantity, sub)
	}
	fmt.Fprintf(tw, "\t\tTOTAL\t%.2f\n", total)
	return tw.Flush()
}
