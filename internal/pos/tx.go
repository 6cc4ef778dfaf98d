package pos

import (
	"context"

	"go.uber.org/zap"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/store"
)

// tx is the working copy of one transaction. Collections are cloned the
// first time they are touched, so the published state is never aliased.
type tx struct {
	next    state
	dirty   map[store.Key]bool
	cleared bool
}

func (t *tx) products() []model.Product {
	if !t.dirty[store.KeyProducts] {
		t.next.products = model.CloneProducts(t.next.products)
		t.dirty[store.KeyProducts] = true
	}
	return t.next.products
}

func (t *tx) customers() []model.Customer {
	if !t.dirty[store.KeyCustomers] {
		t.next.customers = model.CloneCustomers(t.next.customers)
		t.dirty[store.KeyCustomers] = true
	}
	return t.next.customers
}

func (t *tx) setProducts(p []model.Product) {
	t.next.products = p
	t.dirty[store.KeyProducts] = true
}

func (t *tx) setCustomers(c []model.Customer) {
	t.next.customers = c
	t.dirty[store.KeyCustomers] = true
}

func (t *tx) setInvoices(inv []model.Invoice) {
	t.next.invoices = inv
	t.dirty[store.KeyInvoices] = true
}

func (t *tx) setStockLogs(logs []model.StockLog) {
	t.next.stockLogs = logs
	t.dirty[store.KeyStockLogs] = true
}

func (t *tx) setSettings(st model.Settings) {
	t.next.settings = st
	t.dirty[store.KeySettings] = true
}

// update runs fn against a working copy and commits it. Nothing is
// published if fn fails or the adapter rejects the write.
func (s *Store) update(ctx context.Context, op string, fn func(t *tx) error) error {
	s.mu.Lock()
	t := &tx{next: s.state, dirty: make(map[store.Key]bool)}
	if err := fn(t); err != nil {
		s.mu.Unlock()
		return err
	}
	if !t.cleared && len(t.dirty) == 0 {
		s.mu.Unlock()
		return nil
	}
	if err := s.persist(ctx, t); err != nil {
		s.mu.Unlock()
		s.logger.Error("persist failed", zap.String("op", op), zap.Error(err))
		return &Error{Code: ErrCodePersistFailed, Message: op + " not saved", Err: err}
	}
	s.state = t.next
	s.logger.Debug("committed", zap.String("op", op), zap.Strings("keys", dirtyKeys(t)))

	var subs []func(model.Snapshot)
	var snap model.Snapshot
	if len(s.subscribers) > 0 {
		subs = make([]func(model.Snapshot), 0, len(s.subscribers))
		for _, fn := range s.subscribers {
			subs = append(subs, fn)
		}
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, t *tx) error {
	if t.cleared {
		return s.adapter.ClearAll(ctx)
	}
	batch := make(map[store.Key][]byte, len(t.dirty))
	for key := range t.dirty {
		var (
			data []byte
			err  error
		)
		switch key {
		case store.KeyProducts:
			data, err = store.Encode(t.next.products)
		case store.KeyCustomers:
			data, err = store.Encode(t.next.customers)
		case store.KeyInvoices:
			data, err = store.Encode(t.next.invoices)
		case store.KeyStockLogs:
			data, err = store.Encode(t.next.stockLogs)
		case store.KeySettings:
			data, err = store.Encode(t.next.settings)
		}
		if err != nil {
			return err
		}
		batch[key] = data
	}
	return s.adapter.SaveAll(ctx, batch)
}

func dirtyKeys(t *tx) []string {
	if t.cleared {
		return []string{"*"}
	}
	keys := make([]string, 0, len(t.dirty))
	for _, k := range store.Keys {
		if t.dirty[k] {
			keys = append(keys, string(k))
		}
	}
	return keys
}
