package model

import "slices"

// Clone returns a copy of p that shares no memory with it.
func (p Product) Clone() Product {
	if p.MinQuantity != nil {
		v := *p.MinQuantity
		p.MinQuantity = &v
	}
	return p
}

// Clone returns a copy of inv with its own Items slice.
func (inv Invoice) Clone() Invoice {
	inv.Items = slices.Clone(inv.Items)
	return inv
}

// CloneProducts deep-copies a product slice. A nil input yields an empty,
// non-nil slice.
func CloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// CloneInvoices deep-copies an invoice slice.
func CloneInvoices(in []Invoice) []Invoice {
	out := make([]Invoice, len(in))
	for i, inv := range in {
		out[i] = inv.Clone()
	}
	return out
}

// CloneCustomers copies a customer slice. Customers hold no references.
func CloneCustomers(in []Customer) []Customer {
	out := make([]Customer, len(in))
	copy(out, in)
	return out
}

// CloneStockLogs copies a stock log slice.
func CloneStockLogs(in []StockLog) []StockLog {
	out := make([]StockLog, len(in))
	copy(out, in)
	return out
}

// Clone returns a deep copy of the snapshot with non-nil collections.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Products:  CloneProducts(s.Products),
		Customers: CloneCustomers(s.Customers),
		Invoices:  CloneInvoices(s.Invoices),
		StockLogs: CloneStockLogs(s.StockLogs),
		Settings:  s.Settings,
	}
}
