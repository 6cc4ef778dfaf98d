package store

import (
	"context"
	"slices"
)

// Key names a persisted collection.
type Key string

const (
	KeyProducts  Key = "products"
	KeyCustomers Key = "customers"
	KeyInvoices  Key = "invoices"
	KeyStockLogs Key = "stockLogs"
	KeySettings  Key = "settings"
)

// Keys lists the five collection keys in load order.
var Keys = []Key{KeyProducts, KeyCustomers, KeyInvoices, KeyStockLogs, KeySettings}

// Adapter is a key-value byte store.
//
// Load reports ok=false when the key has never been saved or was cleared.
// SaveAll must be atomic: either every entry is stored or none is.
type Adapter interface {
	Load(ctx context.Context, key Key) (data []byte, ok bool, err error)
	Save(ctx context.Context, key Key, data []byte) error
	SaveAll(ctx context.Context, entries map[Key][]byte) error
	ClearAll(ctx context.Context) error
}

// sortedKeys returns the keys of entries in a stable order.
func sortedKeys(entries map[Key][]byte) []Key {
	keys := make([]Key, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
