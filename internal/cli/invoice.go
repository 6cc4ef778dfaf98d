package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/pos"
)

// InvoiceOptions holds flags for invoice commands.
type InvoiceOptions struct {
	*RootOptions
	Query string
	Limit int
	File  string
}

// NewInvoiceCommand creates the invoice command group.
func NewInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "List and record invoices",
	}
	cmd.AddCommand(newInvoiceListCommand(rootOpts))
	cmd.AddCommand(newInvoiceCommitCommand(rootOpts))
	return cmd
}

func newInvoiceListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvoiceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				invoices := model.FilterInvoices(s.store.Invoices(), opts.Query)
				if opts.Limit > 0 && len(invoices) > opts.Limit {
					invoices = invoices[:opts.Limit]
				}
				return s.out.Emit(invoices, func(w io.Writer) {
					rows := make([][]string, 0, len(invoices))
					for _, inv := range invoices {
						rows = append(rows, []string{
							inv.ID, inv.Date.Format(time.DateTime), inv.CustomerName,
							strconv.Itoa(len(inv.Items)), money(inv.Total), money(inv.TotalProfit),
						})
					}
					s.out.Table([]string{"ID", "DATE", "CUSTOMER", "ITEMS", "TOTAL", "PROFIT"}, rows)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "filter by invoice ID, customer name or phone")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show at most this many invoices")
	return cmd
}

func newInvoiceCommitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvoiceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record a pre-built invoice from JSON",
		Long: `Record an invoice exactly as given: stock is deducted for every item
and the referenced customer accrues totals and points. Totals are taken
as given. A missing id or date is filled in.

Example:
  nezam invoice commit --file invoice.json
  cat invoice.json | nezam invoice commit --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var inv model.Invoice
			if err := readDocument(cmd, opts.File, "invoice", &inv); err != nil {
				return err
			}
			if inv.ID == "" {
				inv.ID = pos.UUIDv7Generator{}.Generate()
			}
			if inv.Date.IsZero() {
				inv.Date = pos.SystemClock{}.Now()
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				committed, err := s.store.CommitInvoice(ctx, inv)
				if err != nil {
					return storeError("commit invoice", err)
				}
				return s.out.Emit(committed, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Recorded invoice %s (%s)\n", committed.ID, money(committed.Total))
				})
			})
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "invoice JSON file, - for stdin (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readDocument decodes a JSON file, or stdin for "-", into v.
func readDocument(cmd *cobra.Command, path, what string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read "+what, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return WrapExitError(ExitCommandError, "invalid "+what+" JSON", err)
	}
	return nil
}
