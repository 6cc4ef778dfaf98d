package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/report"
)

// ProductOptions holds flags shared by product add and update.
type ProductOptions struct {
	*RootOptions
	ID          string
	Code        string
	Name        string
	BuyPrice    float64
	SellPrice   float64
	Quantity    int
	MinQuantity int
	Category    string
	Description string
	Query       string
}

// NewProductCommand creates the product command group.
func NewProductCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage the product catalogue",
	}
	cmd.AddCommand(newProductAddCommand(rootOpts))
	cmd.AddCommand(newProductUpdateCommand(rootOpts))
	cmd.AddCommand(newProductDeleteCommand(rootOpts))
	cmd.AddCommand(newProductListCommand(rootOpts))
	return cmd
}

func productFlags(cmd *cobra.Command, opts *ProductOptions) {
	cmd.Flags().StringVar(&opts.Code, "code", "", "product code or barcode")
	cmd.Flags().StringVar(&opts.Name, "name", "", "product name")
	cmd.Flags().Float64Var(&opts.BuyPrice, "buy", 0, "buy price")
	cmd.Flags().Float64Var(&opts.SellPrice, "sell", 0, "sell price")
	cmd.Flags().IntVar(&opts.Quantity, "qty", 0, "quantity in stock")
	cmd.Flags().IntVar(&opts.MinQuantity, "min", 0, "reorder level (low stock at or below)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "category")
	cmd.Flags().StringVar(&opts.Description, "description", "", "description")
}

// applyProductFlags copies every flag the user set onto p.
func applyProductFlags(cmd *cobra.Command, opts *ProductOptions, p *model.Product) {
	f := cmd.Flags()
	if f.Changed("code") {
		p.Code = opts.Code
	}
	if f.Changed("name") {
		p.Name = opts.Name
	}
	if f.Changed("buy") {
		p.BuyPrice = opts.BuyPrice
	}
	if f.Changed("sell") {
		p.SellPrice = opts.SellPrice
	}
	if f.Changed("qty") {
		p.Quantity = opts.Quantity
	}
	if f.Changed("min") {
		m := opts.MinQuantity
		p.MinQuantity = &m
	}
	if f.Changed("category") {
		p.Category = opts.Category
	}
	if f.Changed("description") {
		p.Description = opts.Description
	}
}

func newProductAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Long: `Add a product to the catalogue. An existing --id is replaced.

Example:
  nezam product add --name "Green tea" --code 6221 --buy 30 --sell 45 --qty 24`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Name == "" {
				return NewExitError(ExitCommandError, "--name is required")
			}
			p := model.Product{ID: opts.ID}
			applyProductFlags(cmd, opts, &p)
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				added, err := s.store.AddProduct(ctx, p)
				if err != nil {
					return storeError("add product", err)
				}
				return s.out.Emit(added, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Added product %s (%s)\n", added.Name, added.ID)
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "product ID (generated when empty)")
	productFlags(cmd, opts)
	return cmd
}

func newProductUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a product",
		Long: `Update a product. Only the flags given are changed.

Example:
  nezam product update 0192f3c1-... --sell 50 --min 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				p, ok := s.store.Product(args[0])
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("product not found: %s", args[0]))
				}
				applyProductFlags(cmd, opts, &p)
				if _, err := s.store.UpdateProduct(ctx, p); err != nil {
					return storeError("update product", err)
				}
				return s.out.Emit(p, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Updated product %s (%s)\n", p.Name, p.ID)
				})
			})
		},
	}

	productFlags(cmd, opts)
	return cmd
}

func newProductDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				ok, err := s.store.DeleteProduct(ctx, args[0])
				if err != nil {
					return storeError("delete product", err)
				}
				if !ok {
					return NewExitError(ExitFailure, fmt.Sprintf("product not found: %s", args[0]))
				}
				return s.out.Emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Deleted product %s\n", args[0])
				})
			})
		},
	}
}

func newProductListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products with stock status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				products := model.FilterProducts(s.store.Products(), opts.Query)
				return s.out.Emit(products, func(w io.Writer) {
					rows := make([][]string, 0, len(products))
					for _, p := range products {
						rows = append(rows, []string{
							p.ID, p.Code, p.Name,
							money(p.BuyPrice), money(p.SellPrice),
							strconv.Itoa(p.Quantity), string(report.Status(p)),
						})
					}
					s.out.Table([]string{"ID", "CODE", "NAME", "BUY", "SELL", "QTY", "STATUS"}, rows)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "filter by name or code")
	return cmd
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
