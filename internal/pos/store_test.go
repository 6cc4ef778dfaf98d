package pos

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/store"
)

func TestInit_FreshStoreHasDefaults(t *testing.T) {
	s, _ := createTestStore(t)

	snap := s.Snapshot()
	assert.Empty(t, snap.Products)
	assert.Empty(t, snap.Customers)
	assert.Empty(t, snap.Invoices)
	assert.Empty(t, snap.StockLogs)
	assert.NotNil(t, snap.Products, "collections must be empty, not nil")
	assert.Equal(t, model.DefaultSettings(), snap.Settings)
	assert.Equal(t, model.DefaultStoreName, snap.Settings.StoreName)
	assert.Equal(t, 0.1, snap.Settings.PointsPerCurrency)
}

func TestInit_LoadsPersistedCollections(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.SaveAll(ctx, map[store.Key][]byte{
		store.KeyProducts: []byte(`[{"id":"p1","code":"A","name":"Tea","buyPrice":2,"sellPrice":3,"quantity":7}]`),
		store.KeySettings: []byte(`{"storeName":"Corner","pointsPerCurrency":0.5}`),
	}))

	s := New(mem)
	require.NoError(t, s.Init(ctx))

	p, ok := s.Product("p1")
	require.True(t, ok)
	assert.Equal(t, "Tea", p.Name)
	assert.Equal(t, 7, p.Quantity)
	assert.Equal(t, "Corner", s.Settings().StoreName)
	assert.Empty(t, s.Customers())
}

func TestInit_MalformedKeyIsSkipped(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.SaveAll(ctx, map[store.Key][]byte{
		store.KeyProducts:  []byte(`{not json`),
		store.KeyCustomers: []byte(`[{"id":"c1","name":"Amal","phone":"0500"}]`),
	}))

	s := New(mem)
	require.NoError(t, s.Init(ctx))

	assert.Empty(t, s.Products())
	assert.NotNil(t, s.Products())
	require.Len(t, s.Customers(), 1)
}

func TestInit_NullCollectionBecomesEmpty(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.Save(ctx, store.KeyInvoices, []byte(`null`)))

	s := New(mem)
	require.NoError(t, s.Init(ctx))
	assert.NotNil(t, s.Invoices())
	assert.Empty(t, s.Invoices())
}

func TestInit_SettingsMissingFieldsKeepDefaults(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want func(*model.Settings)
	}{
		{name: "null document", doc: `null`, want: func(*model.Settings) {}},
		{name: "empty object", doc: `{}`, want: func(*model.Settings) {}},
		{name: "no points rate", doc: `{"storeName":"Corner"}`, want: func(st *model.Settings) { st.StoreName = "Corner" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := store.NewMemory()
			require.NoError(t, mem.Save(ctx, store.KeySettings, []byte(tt.doc)))

			s := New(mem)
			require.NoError(t, s.Init(ctx))

			want := model.DefaultSettings()
			tt.want(&want)
			assert.Equal(t, want, s.Settings())
		})
	}
}

func TestInit_AdapterErrorIsReturned(t *testing.T) {
	adapter := &flakyAdapter{Memory: store.NewMemory(), failLoad: true}
	s := New(adapter)

	err := s.Init(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisk)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	s, _ := createTestStore(t)
	minQty := 3
	_, err := s.AddProduct(context.Background(), model.Product{ID: "p1", Name: "Rice", MinQuantity: &minQty})
	require.NoError(t, err)

	snap := s.Snapshot()
	snap.Products[0].Name = "changed"
	*snap.Products[0].MinQuantity = 99

	p, ok := s.Product("p1")
	require.True(t, ok)
	assert.Equal(t, "Rice", p.Name)
	assert.Equal(t, 3, *p.MinQuantity)
}

func TestProductCRUD(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)

	p, err := s.AddProduct(ctx, model.Product{Code: "X1", Name: "Sugar", BuyPrice: 1, SellPrice: 2, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, "id-1", p.ID, "empty id is assigned")

	p.Name = "Brown sugar"
	ok, err := s.UpdateProduct(ctx, p)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.UpdateProduct(ctx, model.Product{ID: "nope", Name: "ghost"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := s.Product(p.ID)
	assert.Equal(t, "Brown sugar", got.Name)
	assert.Equal(t, "Brown sugar", reopen(t, adapter).Products()[0].Name)

	ok, err = s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, s.Products())

	ok, err = s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddProduct_ExistingIDReplacesInPlace(t *testing.T) {
	s, _ := createTestStore(t)
	seedProduct(t, s, "a", "A", 1, 2, 1)
	seedProduct(t, s, "b", "B", 1, 2, 1)

	seedProduct(t, s, "a", "A2", 1, 2, 9)

	products := s.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "A2", products[0].Name)
	assert.Equal(t, "b", products[1].ID)
}

func TestAddCustomer_ExistingIDKeepsAccrual(t *testing.T) {
	ctx := context.Background()
	s, _ := createTestStore(t)
	original := seedCustomer(t, s, "c1", "Amal", "0500")
	seedProduct(t, s, "p1", "Tea", 6, 10, 5)
	_, err := s.CommitInvoice(ctx, sale("inv1", "c1", line("p1", 10, 6, 2)))
	require.NoError(t, err)

	_, err = s.AddCustomer(ctx, model.Customer{ID: "c1", Name: "Amal", Phone: "0500"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidCustomer, CodeOf(err))

	c, _ := s.Customer("c1")
	assert.Equal(t, 20.0, c.TotalSpent)
	assert.Equal(t, 1, c.PurchaseCount)

	c.Name = "Amal S."
	c.CreatedAt = time.Time{}
	replaced, err := s.AddCustomer(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, original.CreatedAt, replaced.CreatedAt, "zero createdAt keeps the stored one")

	customers := s.Customers()
	require.Len(t, customers, 1)
	assert.Equal(t, "Amal S.", customers[0].Name)
	assert.Equal(t, 20.0, customers[0].TotalSpent)
}

func TestAddProduct_RejectsNegativePrice(t *testing.T) {
	s, _ := createTestStore(t)
	_, err := s.AddProduct(context.Background(), model.Product{Name: "Bad", SellPrice: -1})
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidProduct, CodeOf(err))
	assert.True(t, IsValidationError(err))
}

func TestCustomerCRUD(t *testing.T) {
	ctx := context.Background()
	s, _ := createTestStore(t)

	c, err := s.AddCustomer(ctx, model.Customer{Name: "Huda", Phone: "0501"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", c.ID)
	assert.False(t, c.CreatedAt.IsZero(), "createdAt is stamped")

	c.Email = "huda@example.com"
	ok, err := s.UpdateCustomer(ctx, c)
	require.NoError(t, err)
	assert.True(t, ok)

	got, ok := s.Customer(c.ID)
	require.True(t, ok)
	assert.Equal(t, "huda@example.com", got.Email)

	ok, err = s.DeleteCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok = s.Customer(c.ID)
	assert.False(t, ok)
}

func TestUpdateCustomer_RejectsDecreasingAccrual(t *testing.T) {
	ctx := context.Background()
	s, _ := createTestStore(t)
	seedCustomer(t, s, "c1", "Omar", "0502")
	seedProduct(t, s, "p1", "Tea", 1, 4, 10)
	_, err := s.CommitInvoice(ctx, model.Invoice{
		ID: "inv1", CustomerID: "c1", CustomerName: "Omar",
		Items: []model.InvoiceItem{{ProductID: "p1", Name: "Tea", Price: 4, BuyPrice: 1, Quantity: 1}},
		Total: 4, TotalProfit: 3,
	})
	require.NoError(t, err)

	c, _ := s.Customer("c1")
	c.Points = 0
	_, err = s.UpdateCustomer(ctx, c)
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidCustomer, CodeOf(err))

	got, _ := s.Customer("c1")
	assert.InDelta(t, 0.4, got.Points, 1e-9)
}

func TestFindCustomerByPhone_NormalisesAndPrefersFirst(t *testing.T) {
	s, _ := createTestStore(t)
	seedCustomer(t, s, "c1", "First", "050 123-4567")
	seedCustomer(t, s, "c2", "Second", "0501234567")

	c, ok := s.FindCustomerByPhone("٠٥٠١٢٣٤٥٦٧")
	require.True(t, ok)
	assert.Equal(t, "c1", c.ID)

	_, ok = s.FindCustomerByPhone("")
	assert.False(t, ok)
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)

	st := model.Settings{StoreName: "Al Noor", Phone: "123", PointsPerCurrency: 1}
	require.NoError(t, s.UpdateSettings(ctx, st))
	assert.Equal(t, st, s.Settings())
	assert.Equal(t, st, reopen(t, adapter).Settings())

	err := s.UpdateSettings(ctx, model.Settings{PointsPerCurrency: -1})
	assert.Equal(t, ErrCodeInvalidSettings, CodeOf(err))
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 3)
	seedCustomer(t, s, "c1", "Amal", "0500")
	require.NoError(t, s.UpdateSettings(ctx, model.Settings{StoreName: "X"}))

	require.NoError(t, s.ResetAll(ctx))

	snap := s.Snapshot()
	assert.Empty(t, snap.Products)
	assert.Empty(t, snap.Customers)
	assert.Equal(t, model.DefaultSettings(), snap.Settings)

	keys, err := adapter.StoredKeys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys, "defaults are not written back")
	assert.Equal(t, model.DefaultSettings(), reopen(t, adapter).Settings())
}

func TestImportAll_ReplacesOnlyPresentKeys(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)
	seedProduct(t, s, "old", "Old", 1, 2, 3)
	seedCustomer(t, s, "c1", "Kept", "0500")

	err := s.ImportAll(ctx, model.Backup{
		Products: []model.Product{{ID: "new", Name: "New", Quantity: 4}},
		Settings: &model.Settings{StoreName: "Imported", PointsPerCurrency: 0.5},
	})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Products, 1)
	assert.Equal(t, "new", snap.Products[0].ID)
	require.Len(t, snap.Customers, 1, "absent key left untouched")
	assert.Equal(t, "Imported", snap.Settings.StoreName)
	assert.Equal(t, snap, reopen(t, adapter).Snapshot())
}

func TestImportAll_EmptySliceClearsCollection(t *testing.T) {
	s, _ := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 3)

	require.NoError(t, s.ImportAll(context.Background(), model.Backup{Products: []model.Product{}}))
	assert.Empty(t, s.Products())
}

func TestImportAll_InvalidRecordRejectsEverything(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 3)
	savesBefore := adapter.saves

	err := s.ImportAll(ctx, model.Backup{
		Products: []model.Product{{ID: "ok", Name: "Fine"}},
		Invoices: []model.Invoice{{ID: "bad"}},
	})
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidImport, CodeOf(err))
	assert.Contains(t, err.Error(), "invoices[0]")

	assert.Equal(t, "p1", s.Products()[0].ID)
	assert.Equal(t, savesBefore, adapter.saves)
}

func TestPersistFailure_LeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 5)
	seedCustomer(t, s, "c1", "Amal", "0500")
	before := s.Snapshot()

	adapter.setFailSave(true)

	_, err := s.CommitInvoice(ctx, model.Invoice{
		ID: "inv1", CustomerID: "c1", CustomerName: "Amal",
		Items: []model.InvoiceItem{{ProductID: "p1", Name: "Tea", Price: 2, BuyPrice: 1, Quantity: 2}},
		Total: 4, TotalProfit: 2,
	})
	require.Error(t, err)
	assert.True(t, IsPersistError(err))
	assert.ErrorIs(t, err, errDisk)
	assert.Equal(t, before, s.Snapshot())

	_, err = s.AdjustStock(ctx, "p1", -1, model.ReasonDamage)
	assert.True(t, IsPersistError(err))
	assert.Equal(t, before, s.Snapshot())

	adapter.setFailSave(false)
	assert.Equal(t, before, reopen(t, adapter).Snapshot())
}

func TestResetAll_ClearFailureKeepsState(t *testing.T) {
	s, adapter := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 5)
	adapter.failClear = true

	err := s.ResetAll(context.Background())
	assert.True(t, IsPersistError(err))
	assert.Len(t, s.Products(), 1)
}

func TestNoOpUpdateDoesNotWrite(t *testing.T) {
	s, adapter := createTestStore(t)
	before := adapter.saves

	ok, err := s.DeleteCustomer(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, adapter.saves)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)

	var got []model.Snapshot
	cancel := s.Subscribe(func(snap model.Snapshot) {
		got = append(got, snap)
	})

	seedProduct(t, s, "p1", "Tea", 1, 2, 5)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Products, 1)

	adapter.setFailSave(true)
	_, err := s.AddProduct(ctx, model.Product{ID: "p2", Name: "Milk"})
	require.Error(t, err)
	assert.Len(t, got, 1, "failed transactions are not published")
	adapter.setFailSave(false)

	cancel()
	seedProduct(t, s, "p3", "Salt", 1, 2, 5)
	assert.Len(t, got, 1)
}

func TestSubscribe_CallbackMayReadStore(t *testing.T) {
	s, _ := createTestStore(t)
	var names []string
	s.Subscribe(func(model.Snapshot) {
		for _, p := range s.Products() {
			names = append(names, p.Name)
		}
	})

	seedProduct(t, s, "p1", "Tea", 1, 2, 5)
	assert.Equal(t, []string{"Tea"}, names)
}

func TestConcurrentCommitsAreSerialised(t *testing.T) {
	ctx := context.Background()
	s, adapter := createTestStore(t)
	seedProduct(t, s, "p1", "Tea", 1, 2, 1000)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AdjustStock(ctx, "p1", -1, model.ReasonOther)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p, _ := s.Product("p1")
	assert.Equal(t, 1000-workers, p.Quantity)
	assert.Len(t, s.StockLogs(), workers)
	assert.Equal(t, 1000-workers, reopen(t, adapter).Products()[0].Quantity)
}
