package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/pos"
	"github.com/idartimm2-jpg/nezam/internal/whatsapp"
)

// SellOptions holds flags for the sell command.
type SellOptions struct {
	*RootOptions
	Customer string
	Phone    string
	Items    []string
	Whatsapp bool
}

// SaleResult is the output of a completed sale.
type SaleResult struct {
	Invoice  model.Invoice `json:"invoice"`
	Whatsapp string        `json:"whatsapp,omitempty"`
}

// NewSellCommand creates the sell command.
func NewSellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Check out a cart and record the invoice",
		Long: `Check out a cart for a customer. Items are given as <product>[:<qty>]
where product is an ID or a product code. The customer is found by phone
or registered on the spot.

Exit codes:
  0 - Invoice recorded
  1 - Sale rejected (empty cart, unknown product, insufficient stock)
  2 - Command error

Example:
  nezam sell --customer "Sara Ali" --phone 01001234567 -i 6221:2 -i 6222`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				lines, err := parseItems(s.store, opts.Items)
				if err != nil {
					return err
				}
				inv, err := s.store.Checkout(ctx, pos.CheckoutRequest{
					Lines:         lines,
					CustomerName:  opts.Customer,
					CustomerPhone: opts.Phone,
				})
				if err != nil {
					return storeError("checkout", err)
				}

				result := SaleResult{Invoice: inv}
				if opts.Whatsapp {
					msg := whatsapp.ThankYouMessage(s.store.Settings(), inv.CustomerName, inv.Total)
					if link, err := whatsapp.Link(inv.CustomerPhone, msg); err == nil {
						result.Whatsapp = link
					}
				}
				return s.out.Emit(result, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Invoice %s for %s\n", inv.ID, inv.CustomerName)
					printInvoiceItems(s.out, inv)
					fmt.Fprintf(w, "Total: %s  Profit: %s\n", money(inv.Total), money(inv.TotalProfit))
					if result.Whatsapp != "" {
						fmt.Fprintf(w, "WhatsApp: %s\n", result.Whatsapp)
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Customer, "customer", "", "customer name")
	cmd.Flags().StringVar(&opts.Phone, "phone", "", "customer phone")
	cmd.Flags().StringArrayVarP(&opts.Items, "item", "i", nil, "cart line <product>[:<qty>] (repeatable)")
	cmd.Flags().BoolVar(&opts.Whatsapp, "whatsapp", false, "print a thank-you WhatsApp link")
	return cmd
}

// parseItems turns <product>[:<qty>] arguments into checkout lines.
// Product references resolve by ID first, then by code.
func parseItems(st *pos.Store, items []string) ([]pos.CheckoutLine, error) {
	lines := make([]pos.CheckoutLine, 0, len(items))
	for _, item := range items {
		ref, qtyStr, hasQty := strings.Cut(item, ":")
		qty := 1
		if hasQty {
			n, err := strconv.Atoi(qtyStr)
			if err != nil {
				return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity in %q", item))
			}
			qty = n
		}
		lines = append(lines, pos.CheckoutLine{ProductID: resolveProduct(st, ref), Quantity: qty})
	}
	return lines, nil
}

func resolveProduct(st *pos.Store, ref string) string {
	if _, ok := st.Product(ref); ok {
		return ref
	}
	for _, p := range st.Products() {
		if p.Code != "" && p.Code == ref {
			return p.ID
		}
	}
	return ref
}

func printInvoiceItems(out *OutputFormatter, inv model.Invoice) {
	rows := make([][]string, 0, len(inv.Items))
	for _, it := range inv.Items {
		rows = append(rows, []string{
			it.Name, strconv.Itoa(it.Quantity), money(it.Price), money(it.LineTotal()),
		})
	}
	out.Table([]string{"ITEM", "QTY", "PRICE", "AMOUNT"}, rows)
}
