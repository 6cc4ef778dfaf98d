package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/report"
)

// StatsResult is the dashboard summary printed by the stats command.
type StatsResult struct {
	Stats       report.Stats          `json:"stats"`
	TopProducts []report.ProductSales `json:"topProducts"`
	LowStock    []report.StockAlert   `json:"lowStock"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show sales, profit and stock figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				snap := s.store.Snapshot()
				res := StatsResult{
					Stats:       report.Summarize(snap),
					TopProducts: report.TopProducts(snap.Invoices, top),
					LowStock:    report.LowStock(snap.Products),
				}
				return s.out.Emit(res, func(w io.Writer) { printStats(s.out, res) })
			})
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "number of best sellers to show")
	return cmd
}

func printStats(out *OutputFormatter, res StatsResult) {
	st := res.Stats
	out.Table([]string{"FIGURE", "VALUE"}, [][]string{
		{"total sales", money(st.TotalSales)},
		{"total profit", money(st.TotalProfit)},
		{"net profit", money(st.NetProfit)},
		{"invoices", strconv.Itoa(st.InvoiceCount)},
		{"customers", strconv.Itoa(st.CustomerCount)},
		{"products", strconv.Itoa(st.ProductCount)},
		{"inventory value", money(st.InventoryValue)},
		{"potential profit", money(st.PotentialProfit)},
	})

	if len(res.TopProducts) > 0 {
		fmt.Fprintln(out.Writer, "\nBest sellers:")
		rows := make([][]string, 0, len(res.TopProducts))
		for _, p := range res.TopProducts {
			rows = append(rows, []string{p.Name, strconv.Itoa(p.Quantity), money(p.Revenue)})
		}
		out.Table([]string{"PRODUCT", "SOLD", "REVENUE"}, rows)
	}

	if len(res.LowStock) > 0 {
		fmt.Fprintln(out.Writer, "\nLow stock:")
		rows := make([][]string, 0, len(res.LowStock))
		for _, a := range res.LowStock {
			rows = append(rows, []string{a.Product.Name, strconv.Itoa(a.Product.Quantity), string(a.Status)})
		}
		out.Table([]string{"PRODUCT", "QTY", "STATUS"}, rows)
	}
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the sales and inventory report",
		Long: `Write the sales and inventory report. The format follows the file
extension: .xlsx for a workbook with Sales and Inventory sheets, .csv for
the sales sheet only.

Example:
  nezam report --out sales.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := strings.ToLower(filepath.Ext(out))
			if ext != ".xlsx" && ext != ".csv" {
				return NewExitError(ExitCommandError, fmt.Sprintf("unsupported report format %q: use .xlsx or .csv", ext))
			}
			return withSession(rootOpts, cmd, func(ctx context.Context, s *session) error {
				if err := writeReport(out, ext, s.store.Snapshot()); err != nil {
					return WrapExitError(ExitCommandError, "failed to write report", err)
				}
				return s.out.Emit(map[string]string{"path": out}, func(w io.Writer) {
					fmt.Fprintf(w, "✓ Report written to %s\n", out)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "sales.xlsx", "output file (.xlsx or .csv)")
	return cmd
}

func writeReport(path, ext string, snap model.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if ext == ".csv" {
		return report.WriteSalesCSV(f, snap.Invoices)
	}
	return report.WriteXLSX(f, snap)
}
