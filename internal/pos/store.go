package pos

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/store"
)

// state is one immutable generation of the store's data. Slices are never
// mutated in place once published; transactions copy what they touch.
type state struct {
	products  []model.Product
	customers []model.Customer
	invoices  []model.Invoice
	stockLogs []model.StockLog
	settings  model.Settings
}

func emptyState() state {
	return state{
		products:  []model.Product{},
		customers: []model.Customer{},
		invoices:  []model.Invoice{},
		stockLogs: []model.StockLog{},
		settings:  model.DefaultSettings(),
	}
}

// Store is the single source of truth for one shop's data.
//
// Thread-safety: all methods are safe for concurrent use. Mutations are
// serialised by one mutex; subscribers run after the mutex is released.
type Store struct {
	mu      sync.Mutex
	adapter store.Adapter
	state   state

	logger       *zap.Logger
	clock        Clock
	ids          IDGenerator
	enforceStock bool

	nextSub     int
	subscribers map[int]func(model.Snapshot)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for dates the Store stamps itself.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator sets the generator for IDs the Store assigns itself.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithStockEnforcement controls whether Checkout rejects lines that exceed
// available stock. CommitInvoice never checks.
func WithStockEnforcement(enabled bool) Option {
	return func(s *Store) {
		s.enforceStock = enabled
	}
}

// New creates a Store over the given adapter holding defaults. Call Init
// to load persisted data.
func New(adapter store.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter:      adapter,
		state:        emptyState(),
		logger:       zap.NewNop(),
		clock:        SystemClock{},
		ids:          UUIDv7Generator{},
		enforceStock: true,
		subscribers:  make(map[int]func(model.Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads every collection from the adapter. Absent keys keep their
// defaults, and so do settings fields missing from the stored document. A malformed payload is logged and skipped, leaving that
// collection at its default. Adapter read failures are returned.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := emptyState()
	if err := loadKey(ctx, s, store.KeyProducts, &next.products); err != nil {
		return err
	}
	if err := loadKey(ctx, s, store.KeyCustomers, &next.customers); err != nil {
		return err
	}
	if err := loadKey(ctx, s, store.KeyInvoices, &next.invoices); err != nil {
		return err
	}
	if err := loadKey(ctx, s, store.KeyStockLogs, &next.stockLogs); err != nil {
		return err
	}
	if err := loadKey(ctx, s, store.KeySettings, &next.settings); err != nil {
		return err
	}

	// A stored JSON null decodes to a nil slice.
	if next.products == nil {
		next.products = []model.Product{}
	}
	if next.customers == nil {
		next.customers = []model.Customer{}
	}
	if next.invoices == nil {
		next.invoices = []model.Invoice{}
	}
	if next.stockLogs == nil {
		next.stockLogs = []model.StockLog{}
	}

	s.state = next
	s.logger.Debug("store initialised",
		zap.Int("products", len(next.products)),
		zap.Int("customers", len(next.customers)),
		zap.Int("invoices", len(next.invoices)),
		zap.Int("stock_logs", len(next.stockLogs)))
	return nil
}

func loadKey[T any](ctx context.Context, s *Store, key store.Key, v *T) error {
	load := store.LoadInto[T]
	if key == store.KeySettings {
		load = store.LoadOnto[T]
	}
	found, err := load(ctx, s.adapter, key, v)
	if err == nil {
		return nil
	}
	if !found {
		return fmt.Errorf("init: %w", err)
	}
	s.logger.Warn("skipping malformed stored collection",
		zap.String("key", string(key)), zap.Error(err))
	return nil
}

// Snapshot returns a deep copy of all collections.
func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Snapshot {
	return model.Snapshot{
		Products:  s.state.products,
		Customers: s.state.customers,
		Invoices:  s.state.invoices,
		StockLogs: s.state.stockLogs,
		Settings:  s.state.settings,
	}.Clone()
}

// Products returns a copy of all products in insertion order.
func (s *Store) Products() []model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneProducts(s.state.products)
}

// Customers returns a copy of all customers in insertion order.
func (s *Store) Customers() []model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneCustomers(s.state.customers)
}

// Invoices returns a copy of all invoices, newest first.
func (s *Store) Invoices() []model.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneInvoices(s.state.invoices)
}

// StockLogs returns a copy of all stock logs, newest first.
func (s *Store) StockLogs() []model.StockLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneStockLogs(s.state.stockLogs)
}

// Settings returns the current settings.
func (s *Store) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.settings
}

// Product looks up a product by ID.
func (s *Store) Product(id string) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexProduct(s.state.products, id); i >= 0 {
		return s.state.products[i].Clone(), true
	}
	return model.Product{}, false
}

// Customer looks up a customer by ID.
func (s *Store) Customer(id string) (model.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexCustomer(s.state.customers, id); i >= 0 {
		return s.state.customers[i], true
	}
	return model.Customer{}, false
}

// FindCustomerByPhone returns the first customer whose phone matches after
// normalisation. Phone is not unique; earlier records win.
func (s *Store) FindCustomerByPhone(phone string) (model.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexCustomerByPhone(s.state.customers, phone); i >= 0 {
		return s.state.customers[i], true
	}
	return model.Customer{}, false
}

// Subscribe registers fn to receive a snapshot after every committed
// transaction. fn runs on the committing goroutine after the Store lock is
// released. The returned function unregisters fn.
func (s *Store) Subscribe(fn func(model.Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func indexProduct(products []model.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func indexCustomer(customers []model.Customer, id string) int {
	for i := range customers {
		if customers[i].ID == id {
			return i
		}
	}
	return -1
}

func indexCustomerByPhone(customers []model.Customer, phone string) int {
	for i := range customers {
		if model.SamePhone(customers[i].Phone, phone) {
			return i
		}
	}
	return -1
}
