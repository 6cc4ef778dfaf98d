// Package report derives dashboard figures, stock status and spreadsheet
// exports from a store snapshot. Nothing here mutates data.
package report

import (
	"sort"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// LowStockThreshold applies to products without their own MinQuantity.
const LowStockThreshold = 10

// Stats are the headline figures shown on the dashboard and reports page.
type Stats struct {
	TotalSales      float64 `json:"totalSales"`
	TotalProfit     float64 `json:"totalProfit"`
	TotalCost       float64 `json:"totalCost"`
	NetProfit       float64 `json:"netProfit"`
	InvoiceCount    int     `json:"invoiceCount"`
	CustomerCount   int     `json:"customerCount"`
	ProductCount    int     `json:"productCount"`
	InventoryValue  float64 `json:"inventoryValue"`
	PotentialProfit float64 `json:"potentialProfit"`
}

// Summarize computes Stats. TotalProfit sums the invoices' recorded profit;
// NetProfit is sales minus the buy cost of sold items.
func Summarize(snap model.Snapshot) Stats {
	var st Stats
	for _, inv := range snap.Invoices {
		st.TotalSales += inv.Total
		st.TotalProfit += inv.TotalProfit
		st.TotalCost += inv.Cost()
	}
	st.NetProfit = st.TotalSales - st.TotalCost
	for _, p := range snap.Products {
		st.InventoryValue += p.BuyPrice * float64(p.Quantity)
		st.PotentialProfit += (p.SellPrice - p.BuyPrice) * float64(p.Quantity)
	}
	st.InvoiceCount = len(snap.Invoices)
	st.CustomerCount = len(snap.Customers)
	st.ProductCount = len(snap.Products)
	return st
}

// ProductSales is the sold quantity of one product across invoices.
type ProductSales struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Revenue   float64 `json:"revenue"`
}

// TopProducts ranks products by quantity sold, highest first, and returns
// at most n entries (all when n <= 0). Ties keep first-seen order. The name
// comes from the newest invoice, so invoices are expected newest first.
func TopProducts(invoices []model.Invoice, n int) []ProductSales {
	index := make(map[string]int)
	var out []ProductSales
	for _, inv := range invoices {
		for _, it := range inv.Items {
			i, ok := index[it.ProductID]
			if !ok {
				i = len(out)
				index[it.ProductID] = i
				out = append(out, ProductSales{ProductID: it.ProductID, Name: it.Name})
			}
			out[i].Quantity += it.Quantity
			out[i].Revenue += it.LineTotal()
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Quantity > out[b].Quantity
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	if out == nil {
		out = []ProductSales{}
	}
	return out
}

// StockStatus classifies a product's quantity.
type StockStatus string

const (
	StatusOut StockStatus = "out"
	StatusLow StockStatus = "low"
	StatusOK  StockStatus = "ok"
)

// Status returns out for quantity <= 0, low for quantity at or under the
// product's MinQuantity (LowStockThreshold when unset), ok otherwise.
func Status(p model.Product) StockStatus {
	threshold := LowStockThreshold
	if p.MinQuantity != nil {
		threshold = *p.MinQuantity
	}
	switch {
	case p.Quantity <= 0:
		return StatusOut
	case p.Quantity <= threshold:
		return StatusLow
	default:
		return StatusOK
	}
}

// StockAlert pairs a product with its non-ok status.
type StockAlert struct {
	Product model.Product `json:"product"`
	Status  StockStatus   `json:"status"`
}

// LowStock lists every product that is out or low, in catalogue order.
func LowStock(products []model.Product) []StockAlert {
	alerts := []StockAlert{}
	for _, p := range products {
		if st := Status(p); st != StatusOK {
			alerts = append(alerts, StockAlert{Product: p.Clone(), Status: st})
		}
	}
	return alerts
}

// RecentInvoices returns the first n invoices (the newest, given the
// store's ordering).
func RecentInvoices(invoices []model.Invoice, n int) []model.Invoice {
	if n < 0 {
		n = 0
	}
	if len(invoices) > n {
		invoices = invoices[:n]
	}
	return model.CloneInvoices(invoices)
}
