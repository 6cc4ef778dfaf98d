package pos

import (
	"context"
	"fmt"
	"slices"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// AddProduct appends p. An empty ID is assigned by the Store; an ID that
// already exists replaces that record in place.
func (s *Store) AddProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if err := p.Validate(); err != nil {
		return model.Product{}, invalid(ErrCodeInvalidProduct, p.ID, err)
	}
	if p.ID == "" {
		p.ID = s.ids.Generate()
	}
	p = p.Clone()
	err := s.update(ctx, "add product", func(t *tx) error {
		products := t.products()
		if i := indexProduct(products, p.ID); i >= 0 {
			products[i] = p
			return nil
		}
		t.setProducts(append(products, p))
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}
	return p.Clone(), nil
}

// UpdateProduct replaces the product with p.ID. It reports false, without
// writing, when no such product exists.
func (s *Store) UpdateProduct(ctx context.Context, p model.Product) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, invalid(ErrCodeInvalidProduct, p.ID, err)
	}
	p = p.Clone()
	found := false
	err := s.update(ctx, "update product", func(t *tx) error {
		if indexProduct(t.next.products, p.ID) < 0 {
			return nil
		}
		products := t.products()
		products[indexProduct(products, p.ID)] = p
		found = true
		return nil
	})
	return found && err == nil, err
}

// DeleteProduct removes the product with id. Invoices and stock logs that
// reference it are kept.
func (s *Store) DeleteProduct(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.update(ctx, "delete product", func(t *tx) error {
		i := indexProduct(t.next.products, id)
		if i < 0 {
			return nil
		}
		t.setProducts(slices.Delete(slices.Clone(t.next.products), i, i+1))
		found = true
		return nil
	})
	return found && err == nil, err
}

// AddCustomer appends c. An empty ID is assigned and a zero CreatedAt is
// stamped with the Store clock. An existing ID is replaced in place under
// the same rules as UpdateCustomer: accrued counters may not go down and a
// zero CreatedAt keeps the stored one.
func (s *Store) AddCustomer(ctx context.Context, c model.Customer) (model.Customer, error) {
	if err := c.Validate(); err != nil {
		return model.Customer{}, invalid(ErrCodeInvalidCustomer, c.ID, err)
	}
	if c.ID == "" {
		c.ID = s.ids.Generate()
	}
	err := s.update(ctx, "add customer", func(t *tx) error {
		if i := indexCustomer(t.next.customers, c.ID); i >= 0 {
			prev := t.next.customers[i]
			if err := checkAccrual(prev, c); err != nil {
				return invalid(ErrCodeInvalidCustomer, c.ID, err)
			}
			if c.CreatedAt.IsZero() {
				c.CreatedAt = prev.CreatedAt
			}
			t.customers()[i] = c
			return nil
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = s.clock.Now()
		}
		t.setCustomers(append(t.customers(), c))
		return nil
	})
	if err != nil {
		return model.Customer{}, err
	}
	return c, nil
}

// UpdateCustomer replaces the customer with c.ID. Accrued totals, points
// and purchase count may not go down; such an update is rejected.
func (s *Store) UpdateCustomer(ctx context.Context, c model.Customer) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, invalid(ErrCodeInvalidCustomer, c.ID, err)
	}
	found := false
	err := s.update(ctx, "update customer", func(t *tx) error {
		i := indexCustomer(t.next.customers, c.ID)
		if i < 0 {
			return nil
		}
		if err := checkAccrual(t.next.customers[i], c); err != nil {
			return invalid(ErrCodeInvalidCustomer, c.ID, err)
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = t.next.customers[i].CreatedAt
		}
		t.customers()[i] = c
		found = true
		return nil
	})
	return found && err == nil, err
}

// DeleteCustomer removes the customer with id. Their invoices keep the
// name and phone snapshot.
func (s *Store) DeleteCustomer(ctx context.Context, id string) (bool, error) {
	found := false
	err := s.update(ctx, "delete customer", func(t *tx) error {
		i := indexCustomer(t.next.customers, id)
		if i < 0 {
			return nil
		}
		t.setCustomers(slices.Delete(slices.Clone(t.next.customers), i, i+1))
		found = true
		return nil
	})
	return found && err == nil, err
}

func checkAccrual(prev, next model.Customer) error {
	switch {
	case next.TotalSpent < prev.TotalSpent:
		return fmt.Errorf("totalSpent cannot decrease (%v -> %v)", prev.TotalSpent, next.TotalSpent)
	case next.Points < prev.Points:
		return fmt.Errorf("points cannot decrease (%v -> %v)", prev.Points, next.Points)
	case next.PurchaseCount < prev.PurchaseCount:
		return fmt.Errorf("purchaseCount cannot decrease (%d -> %d)", prev.PurchaseCount, next.PurchaseCount)
	}
	return nil
}
