package model

import (
	"errors"
	"fmt"
)

// Validate checks the invariants a product must hold: prices and the
// optional reorder level are non-negative. Quantity is unconstrained.
func (p Product) Validate() error {
	var errs []error
	if p.BuyPrice < 0 {
		errs = append(errs, fmt.Errorf("buyPrice must be >= 0, got %v", p.BuyPrice))
	}
	if p.SellPrice < 0 {
		errs = append(errs, fmt.Errorf("sellPrice must be >= 0, got %v", p.SellPrice))
	}
	if p.MinQuantity != nil && *p.MinQuantity < 0 {
		errs = append(errs, fmt.Errorf("minQuantity must be >= 0, got %d", *p.MinQuantity))
	}
	return errors.Join(errs...)
}

// Validate checks that the cumulative counters are non-negative.
func (c Customer) Validate() error {
	var errs []error
	if c.TotalSpent < 0 {
		errs = append(errs, fmt.Errorf("totalSpent must be >= 0, got %v", c.TotalSpent))
	}
	if c.Points < 0 {
		errs = append(errs, fmt.Errorf("points must be >= 0, got %v", c.Points))
	}
	if c.PurchaseCount < 0 {
		errs = append(errs, fmt.Errorf("purchaseCount must be >= 0, got %d", c.PurchaseCount))
	}
	return errors.Join(errs...)
}

// Validate checks that an invoice is well formed for commit: it has an id,
// at least one item, every item quantity is at least 1 and the total is not
// negative. Totals are not recomputed.
func (inv Invoice) Validate() error {
	var errs []error
	if inv.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if len(inv.Items) == 0 {
		errs = append(errs, errors.New("items must not be empty"))
	}
	for i, it := range inv.Items {
		if it.Quantity < 1 {
			errs = append(errs, fmt.Errorf("items[%d]: quantity must be >= 1, got %d", i, it.Quantity))
		}
	}
	if inv.Total < 0 {
		errs = append(errs, fmt.Errorf("total must be >= 0, got %v", inv.Total))
	}
	return errors.Join(errs...)
}

// Validate checks that a stock log has an id and a known reason.
func (l StockLog) Validate() error {
	var errs []error
	if l.ID == "" {
		errs = append(errs, errors.New("id is required"))
	}
	if !l.Reason.Valid() {
		errs = append(errs, fmt.Errorf("reason %q is not one of %v", l.Reason, Reasons))
	}
	return errors.Join(errs...)
}
