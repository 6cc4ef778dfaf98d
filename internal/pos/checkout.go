package pos

import (
	"context"
	"fmt"
	"strings"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// CheckoutLine is one cart entry.
type CheckoutLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CheckoutRequest is a cart ready to be turned into an invoice.
type CheckoutRequest struct {
	Lines         []CheckoutLine `json:"lines"`
	CustomerName  string         `json:"customerName"`
	CustomerPhone string         `json:"customerPhone"`
}

// Checkout turns a cart into a committed invoice. Lines for the same
// product are merged. Items snapshot current product name and prices. The
// customer is found by phone, or registered when unknown. With stock
// enforcement on, a line exceeding the product's quantity is rejected.
//
// Customer registration and the invoice commit are one transaction.
func (s *Store) Checkout(ctx context.Context, req CheckoutRequest) (model.Invoice, error) {
	if len(req.Lines) == 0 {
		return model.Invoice{}, &Error{Code: ErrCodeEmptyCart, Message: "cart is empty"}
	}
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.CustomerPhone)
	if name == "" || phone == "" {
		return model.Invoice{}, &Error{Code: ErrCodeMissingCustomer, Message: "customer name and phone are required"}
	}
	lines, err := mergeLines(req.Lines)
	if err != nil {
		return model.Invoice{}, err
	}

	var inv model.Invoice
	err = s.update(ctx, "checkout", func(t *tx) error {
		items := make([]model.InvoiceItem, 0, len(lines))
		for _, l := range lines {
			i := indexProduct(t.next.products, l.ProductID)
			if i < 0 {
				return &Error{Code: ErrCodeUnknownProduct, Message: "product not found", ID: l.ProductID}
			}
			p := t.next.products[i]
			if s.enforceStock && l.Quantity > p.Quantity {
				return &Error{
					Code:    ErrCodeInsufficientStock,
					Message: fmt.Sprintf("%s: requested %d, available %d", p.Name, l.Quantity, p.Quantity),
					ID:      p.ID,
				}
			}
			items = append(items, model.ItemFromProduct(p, l.Quantity))
		}

		now := s.clock.Now()
		var customerID string
		if i := indexCustomerByPhone(t.next.customers, phone); i >= 0 {
			customerID = t.next.customers[i].ID
		} else {
			customerID = s.ids.Generate()
			t.setCustomers(append(t.customers(), model.Customer{
				ID:        customerID,
				Name:      name,
				Phone:     phone,
				CreatedAt: now,
			}))
		}

		total, profit := model.Totals(items)
		inv = model.Invoice{
			ID:            s.ids.Generate(),
			CustomerID:    customerID,
			CustomerName:  name,
			CustomerPhone: phone,
			Items:         items,
			Total:         total,
			TotalProfit:   profit,
			Date:          now,
		}
		applyInvoice(t, inv)
		return nil
	})
	if err != nil {
		return model.Invoice{}, err
	}
	return inv.Clone(), nil
}

func mergeLines(in []CheckoutLine) ([]CheckoutLine, error) {
	out := make([]CheckoutLine, 0, len(in))
	seen := make(map[string]int, len(in))
	for _, l := range in {
		if l.Quantity < 1 {
			return nil, &Error{
				Code:    ErrCodeInvalidInvoice,
				Message: fmt.Sprintf("quantity must be >= 1, got %d", l.Quantity),
				ID:      l.ProductID,
			}
		}
		if i, ok := seen[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		seen[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}
