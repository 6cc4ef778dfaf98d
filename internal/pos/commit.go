package pos

import (
	"context"
	"errors"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// CommitInvoice records a completed sale in one transaction:
//
//  1. the invoice is prepended to the invoice list;
//  2. every item's quantity is deducted from the product with its
//     ProductID (duplicate lines deduct twice, missing products are
//     skipped, stock may go negative);
//  3. if CustomerID names an existing customer, TotalSpent grows by Total,
//     PurchaseCount by one and Points by Total × PointsPerCurrency.
//
// Totals are taken as given.
func (s *Store) CommitInvoice(ctx context.Context, inv model.Invoice) (model.Invoice, error) {
	if err := inv.Validate(); err != nil {
		return model.Invoice{}, invalid(ErrCodeInvalidInvoice, inv.ID, err)
	}
	inv = inv.Clone()
	err := s.update(ctx, "commit invoice", func(t *tx) error {
		applyInvoice(t, inv)
		return nil
	})
	if err != nil {
		return model.Invoice{}, err
	}
	return inv.Clone(), nil
}

func applyInvoice(t *tx, inv model.Invoice) {
	invoices := make([]model.Invoice, 0, len(t.next.invoices)+1)
	invoices = append(invoices, inv)
	t.setInvoices(append(invoices, t.next.invoices...))

	for _, it := range inv.Items {
		if indexProduct(t.next.products, it.ProductID) < 0 {
			continue
		}
		products := t.products()
		products[indexProduct(products, it.ProductID)].Quantity -= it.Quantity
	}

	if inv.CustomerID == "" {
		return
	}
	if indexCustomer(t.next.customers, inv.CustomerID) < 0 {
		return
	}
	customers := t.customers()
	c := &customers[indexCustomer(customers, inv.CustomerID)]
	c.TotalSpent += inv.Total
	c.PurchaseCount++
	if earned := inv.Total * t.next.settings.PointsPerCurrency; earned > 0 {
		c.Points += earned
	}
}

// CommitStockLog records a non-sale inventory change: the log is prepended
// and its signed Change is added to the product's quantity. A missing
// product is skipped; the log is kept regardless.
func (s *Store) CommitStockLog(ctx context.Context, log model.StockLog) (model.StockLog, error) {
	if err := log.Validate(); err != nil {
		return model.StockLog{}, invalid(ErrCodeInvalidStockLog, log.ID, err)
	}
	err := s.update(ctx, "commit stock log", func(t *tx) error {
		applyStockLog(t, log)
		return nil
	})
	if err != nil {
		return model.StockLog{}, err
	}
	return log, nil
}

func applyStockLog(t *tx, log model.StockLog) {
	logs := make([]model.StockLog, 0, len(t.next.stockLogs)+1)
	logs = append(logs, log)
	t.setStockLogs(append(logs, t.next.stockLogs...))

	if indexProduct(t.next.products, log.ProductID) < 0 {
		return
	}
	products := t.products()
	products[indexProduct(products, log.ProductID)].Quantity += log.Change
}

// AdjustStock builds a stock log for an existing product, stamping ID,
// product name and date, and commits it.
func (s *Store) AdjustStock(ctx context.Context, productID string, change int, reason model.Reason) (model.StockLog, error) {
	if change == 0 {
		return model.StockLog{}, invalid(ErrCodeInvalidStockLog, productID, errors.New("change must not be zero"))
	}
	if !reason.Valid() {
		return model.StockLog{}, invalid(ErrCodeInvalidStockLog, productID, errors.New("unknown reason "+string(reason)))
	}
	var log model.StockLog
	err := s.update(ctx, "adjust stock", func(t *tx) error {
		i := indexProduct(t.next.products, productID)
		if i < 0 {
			return &Error{Code: ErrCodeUnknownProduct, Message: "product not found", ID: productID}
		}
		log = model.StockLog{
			ID:          s.ids.Generate(),
			ProductID:   productID,
			ProductName: t.next.products[i].Name,
			Reason:      reason,
			Change:      change,
			Date:        s.clock.Now(),
		}
		applyStockLog(t, log)
		return nil
	})
	if err != nil {
		return model.StockLog{}, err
	}
	return log, nil
}
