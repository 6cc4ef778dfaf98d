package pos

import (
	"context"
	"errors"
	"fmt"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// UpdateSettings replaces the settings wholesale.
func (s *Store) UpdateSettings(ctx context.Context, st model.Settings) error {
	if st.PointsPerCurrency < 0 {
		return invalid(ErrCodeInvalidSettings, "", fmt.Errorf("pointsPerCurrency must be >= 0, got %v", st.PointsPerCurrency))
	}
	return s.update(ctx, "update settings", func(t *tx) error {
		t.setSettings(st)
		return nil
	})
}

// ResetAll deletes every persisted collection and returns the Store to
// defaults. Defaults are not written back.
func (s *Store) ResetAll(ctx context.Context) error {
	return s.update(ctx, "reset", func(t *tx) error {
		t.next = emptyState()
		t.cleared = true
		return nil
	})
}

// ImportAll replaces each collection present in b. Nil fields are left
// untouched. Every record is validated first; one bad record rejects the
// whole import.
func (s *Store) ImportAll(ctx context.Context, b model.Backup) error {
	if err := validateBackup(b); err != nil {
		return invalid(ErrCodeInvalidImport, "", err)
	}
	return s.update(ctx, "import", func(t *tx) error {
		if b.Settings != nil {
			t.setSettings(*b.Settings)
		}
		if b.Products != nil {
			t.setProducts(model.CloneProducts(b.Products))
		}
		if b.Customers != nil {
			t.setCustomers(model.CloneCustomers(b.Customers))
		}
		if b.Invoices != nil {
			t.setInvoices(model.CloneInvoices(b.Invoices))
		}
		if b.StockLogs != nil {
			t.setStockLogs(model.CloneStockLogs(b.StockLogs))
		}
		return nil
	})
}

func validateBackup(b model.Backup) error {
	var errs []error
	if b.Settings != nil && b.Settings.PointsPerCurrency < 0 {
		errs = append(errs, errors.New("settings: pointsPerCurrency must be >= 0"))
	}
	for i, p := range b.Products {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("products[%d]: %w", i, err))
		}
	}
	for i, c := range b.Customers {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("customers[%d]: %w", i, err))
		}
	}
	for i, inv := range b.Invoices {
		if err := inv.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("invoices[%d]: %w", i, err))
		}
	}
	for i, l := range b.StockLogs {
		if err := l.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("stockLogs[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
