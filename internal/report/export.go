package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

const (
	salesSheet     = "Sales"
	inventorySheet = "Inventory"
)

var (
	salesHeaders     = []string{"Invoice ID", "Date", "Customer", "Total", "Profit"}
	inventoryHeaders = []string{"Code", "Name", "Quantity", "Buy Price", "Sell Price", "Value", "Status"}
)

// WriteXLSX writes a workbook with a Sales sheet (one row per invoice) and
// an Inventory sheet (one row per product).
func WriteXLSX(w io.Writer, snap model.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(inventorySheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	sales := make([][]any, 0, len(snap.Invoices))
	for _, inv := range snap.Invoices {
		sales = append(sales, []any{inv.ID, inv.Date.Format(time.DateOnly), inv.CustomerName, inv.Total, inv.TotalProfit})
	}
	if err := writeSheet(f, salesSheet, salesHeaders, sales); err != nil {
		return err
	}

	stock := make([][]any, 0, len(snap.Products))
	for _, p := range snap.Products {
		stock = append(stock, []any{
			p.Code, p.Name, p.Quantity, p.BuyPrice, p.SellPrice,
			p.BuyPrice * float64(p.Quantity), string(Status(p)),
		})
	}
	if err := writeSheet(f, inventorySheet, inventoryHeaders, stock); err != nil {
		return err
	}

	widths := []struct {
		sheet, from, to string
		width           float64
	}{
		{salesSheet, "A", "A", 40},
		{salesSheet, "B", "C", 20},
		{inventorySheet, "A", "B", 20},
	}
	for _, w := range widths {
		if err := f.SetColWidth(w.sheet, w.from, w.to, w.width); err != nil {
			return fmt.Errorf("%s column width: %w", w.sheet, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("%s header: %w", sheet, err)
		}
	}
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("%s row %d: %w", sheet, r+1, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("%s row %d: %w", sheet, r+1, err)
			}
		}
	}
	return nil
}

// WriteSalesCSV writes the sales table as UTF-8 CSV with a byte order mark
// so spreadsheet tools detect the encoding.
func WriteSalesCSV(w io.Writer, invoices []model.Invoice) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeaders); err != nil {
		return err
	}
	for _, inv := range invoices {
		record := []string{
			inv.ID,
			inv.Date.Format(time.DateOnly),
			inv.CustomerName,
			formatAmount(inv.Total),
			formatAmount(inv.TotalProfit),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
