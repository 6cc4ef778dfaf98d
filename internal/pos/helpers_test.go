package pos

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/store"
	"github.com/idartimm2-jpg/nezam/internal/testutil"
)

var errDisk = errors.New("disk full")

// flakyAdapter wraps Memory and fails on demand.
type flakyAdapter struct {
	*store.Memory

	mu        sync.Mutex
	failSave  bool
	failClear bool
	failLoad  bool
	saves     int
}

func (f *flakyAdapter) setFailSave(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSave = v
}

func (f *flakyAdapter) Load(ctx context.Context, key store.Key) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failLoad
	f.mu.Unlock()
	if fail {
		return nil, false, errDisk
	}
	return f.Memory.Load(ctx, key)
}

func (f *flakyAdapter) SaveAll(ctx context.Context, entries map[store.Key][]byte) error {
	f.mu.Lock()
	fail := f.failSave
	f.saves++
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.Memory.SaveAll(ctx, entries)
}

func (f *flakyAdapter) ClearAll(ctx context.Context) error {
	f.mu.Lock()
	fail := f.failClear
	f.mu.Unlock()
	if fail {
		return errDisk
	}
	return f.Memory.ClearAll(ctx)
}

// createTestStore returns an initialised Store with deterministic IDs and
// clock over a fresh in-memory adapter.
func createTestStore(t *testing.T, opts ...Option) (*Store, *flakyAdapter) {
	t.Helper()
	adapter := &flakyAdapter{Memory: store.NewMemory()}
	base := []Option{
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(testutil.NewSequentialIDs("id")),
	}
	s := New(adapter, append(base, opts...)...)
	require.NoError(t, s.Init(context.Background()))
	return s, adapter
}

// reopen builds a second Store over the same adapter to observe what was
// persisted.
func reopen(t *testing.T, adapter store.Adapter) *Store {
	t.Helper()
	s := New(adapter)
	require.NoError(t, s.Init(context.Background()))
	return s
}

func seedProduct(t *testing.T, s *Store, id, name string, buy, sell float64, qty int) model.Product {
	t.Helper()
	p, err := s.AddProduct(context.Background(), model.Product{
		ID: id, Code: "C-" + id, Name: name, BuyPrice: buy, SellPrice: sell, Quantity: qty,
	})
	require.NoError(t, err)
	return p
}

func seedCustomer(t *testing.T, s *Store, id, name, phone string) model.Customer {
	t.Helper()
	c, err := s.AddCustomer(context.Background(), model.Customer{ID: id, Name: name, Phone: phone})
	require.NoError(t, err)
	return c
}

func setPoints(t *testing.T, s *Store, ppc float64) {
	t.Helper()
	st := s.Settings()
	st.PointsPerCurrency = ppc
	require.NoError(t, s.UpdateSettings(context.Background(), st))
}
