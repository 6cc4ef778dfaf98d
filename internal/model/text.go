package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizePhone reduces a phone number to a comparable form: compatibility
// normalisation (folds full-width digits), Arabic-Indic and Eastern
// Arabic-Indic digits mapped to ASCII, separators removed.
func NormalizePhone(phone string) string {
	phone = norm.NFKC.String(phone)
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		switch {
		case r >= '٠' && r <= '٩':
			b.WriteRune('0' + (r - '٠'))
		case r >= '۰' && r <= '۹':
			b.WriteRune('0' + (r - '۰'))
		case unicode.IsSpace(r), r == '-', r == '(', r == ')', r == '.':
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SamePhone reports whether two phone numbers are equal after normalisation.
// Empty numbers never match.
func SamePhone(a, b string) bool {
	na, nb := NormalizePhone(a), NormalizePhone(b)
	return na != "" && na == nb
}

// foldText prepares free text for substring search.
func foldText(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Matches reports whether the product name contains term (case-insensitive)
// or the code contains it. An empty term matches everything.
func (p Product) Matches(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(foldText(p.Name), foldText(term)) ||
		strings.Contains(p.Code, strings.TrimSpace(term))
}

// Matches reports whether the customer name or phone contains term.
func (c Customer) Matches(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(foldText(c.Name), foldText(term)) ||
		strings.Contains(NormalizePhone(c.Phone), NormalizePhone(term))
}

// Matches reports whether the invoice id, customer name or phone contains term.
func (inv Invoice) Matches(term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(inv.ID, term) ||
		strings.Contains(foldText(inv.CustomerName), foldText(term)) ||
		(inv.CustomerPhone != "" && strings.Contains(NormalizePhone(inv.CustomerPhone), NormalizePhone(term)))
}

// FilterProducts returns the products matching term, preserving order.
func FilterProducts(products []Product, term string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Matches(term) {
			out = append(out, p)
		}
	}
	return out
}

// FilterCustomers returns the customers matching term, preserving order.
func FilterCustomers(customers []Customer, term string) []Customer {
	out := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if c.Matches(term) {
			out = append(out, c)
		}
	}
	return out
}

// FilterInvoices returns the invoices matching term, preserving order.
func FilterInvoices(invoices []Invoice, term string) []Invoice {
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Matches(term) {
			out = append(out, inv)
		}
	}
	return out
}
