package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/pos"
)

// AdjustOptions holds flags for the adjust command.
type AdjustOptions struct {
	*RootOptions
	Reason string
}

// NewAdjustCommand creates the adjust command.
func NewAdjustCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AdjustOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "adjust <product> <change>",
		Short: "Record a non-sale stock change",
		Long: `Record a stock change that is not a sale. Change is signed: negative
for losses, positive for surplus. Product is an ID or product code.

Reasons: damage, theft, expired, error, other.

Example:
  nezam adjust --reason damage 6221 -- -2
  nezam adjust --reason error 6221 5`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			change, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid change %q", args[1]))
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				productID := resolveProduct(s.store, args[0])
				log, err := s.store.AdjustStock(ctx, productID, change, model.Reason(opts.Reason))
				if err != nil {
					return storeError("adjust stock", err)
				}
				p, _ := s.store.Product(productID)
				return s.out.Emit(log, func(w io.Writer) {
					fmt.Fprintf(w, "✓ %s %+d (%s), now %d in stock\n", log.ProductName, log.Change, log.Reason, p.Quantity)
				})
			})
		},
	}

	cmd.Flags().StringVar(&opts.Reason, "reason", string(model.ReasonOther), "damage|theft|expired|error|other")
	return cmd
}

// NewStockLogCommand creates the stocklog command group.
func NewStockLogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stocklog",
		Short: "Inspect and record stock adjustments",
	}
	cmd.AddCommand(newStockLogCommitCommand(rootOpts))

	var product string
	list := &cobra.Command{
		Use:   "list",
		Short: "List stock adjustments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				logs := s.store.StockLogs()
				if product != "" {
					id := resolveProduct(s.store, product)
					filtered := logs[:0]
					for _, l := range logs {
						if l.ProductID == id {
							filtered = append(filtered, l)
						}
					}
					logs = filtered
				}
				return s.out.Emit(logs, func(w io.Writer) {
					rows := make([][]string, 0, len(logs))
					for _, l := range logs {
						rows = append(rows, []string{
							l.Date.Format(time.DateTime), l.ProductName,
							strconv.Itoa(l.Change), string(l.Reason),
						})
					}
					s.out.Table([]string{"DATE", "PRODUCT", "CHANGE", "REASON"}, rows)
				})
			})
		},
	}
	list.Flags().StringVar(&product, "product", "", "only this product (ID or code)")
	cmd.AddCommand(list)
	return cmd
}

func newStockLogCommitCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record a pre-built stock log from JSON",
		Long: `Record a stock log exactly as given: its signed change is applied to
the product, and the log is kept even when the product no longer exists.
A missing id or date is filled in. Use adjust for the checked form.

Example:
  nezam stocklog commit --file log.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var log model.StockLog
			if err := readDocument(cmd, file, "stock log", &log); err != nil {
				return err
			}
			if log.ID == "" {
				log.ID = pos.UUIDv7Generator{}.Generate()
			}
			if log.Date.IsZero() {
				log.Date = pos.SystemClock{}.Now()
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				committed, err := s.store.CommitStockLog(ctx, log)
				if err != nil {
					return storeError("commit stock log", err)
				}
				return s.out.Emit(committed, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Recorded stock log %s (%+d %s)\n", committed.ID, committed.Change, committed.Reason)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "stock log JSON file, - for stdin (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
