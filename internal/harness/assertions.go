package harness

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"

	"github.com/idartimm2-jpg/nezam/internal/model"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s\n", ev.Seq, ev.Phase, ev.Op, ev.Outcome)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result's final
// state and returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertCount:
			err = assertCount(result, a)
		case AssertRecord:
			err = assertRecord(result, a)
		case AssertStock:
			err = assertStock(result, a)
		case AssertCustomer:
			err = assertCustomer(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

// collection returns the named snapshot collection in generic JSON form.
func collection(snap model.Snapshot, name string) ([]any, error) {
	var v any
	switch name {
	case "products":
		v = snap.Products
	case "customers":
		v = snap.Customers
	case "invoices":
		v = snap.Invoices
	case "stockLogs":
		v = snap.StockLogs
	default:
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	n, err := normalize(v)
	if err != nil {
		return nil, err
	}
	records, _ := n.([]any)
	return records, nil
}

func assertCount(result *Result, a Assertion) error {
	records, err := collection(result.State, a.Collection)
	if err != nil {
		return err
	}
	if len(records) != a.Count {
		return &AssertionError{
			Type:     AssertCount,
			Expected: fmt.Sprintf("%d %s", a.Count, a.Collection),
			Actual:   fmt.Sprintf("%d %s", len(records), a.Collection),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertRecord selects exactly one record matching Where and checks Expect
// against it with subset semantics.
func assertRecord(result *Result, a Assertion) error {
	records, err := collection(result.State, a.Collection)
	if err != nil {
		return err
	}
	where, err := normalize(a.Where)
	if err != nil {
		return err
	}

	var matched []any
	for _, r := range records {
		if len(subsetMismatches("", r, where.(map[string]any))) == 0 {
			matched = append(matched, r)
		}
	}
	whereDesc := formatWhereClause(a.Where)
	switch len(matched) {
	case 0:
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("record in %s where %s", a.Collection, whereDesc),
			Actual:   "record not found",
			Trace:    result.Trace,
		}
	case 1:
	default:
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("exactly one record in %s where %s", a.Collection, whereDesc),
			Actual:   fmt.Sprintf("%d records matched (assertion is ambiguous)", len(matched)),
			Trace:    result.Trace,
		}
	}

	return expectFields(AssertRecord, result, matched[0], a.Expect)
}

func assertStock(result *Result, a Assertion) error {
	for _, p := range result.State.Products {
		if p.ID != a.Product {
			continue
		}
		if p.Quantity != a.Quantity {
			return &AssertionError{
				Type:     AssertStock,
				Expected: fmt.Sprintf("product %s quantity %d", a.Product, a.Quantity),
				Actual:   fmt.Sprintf("quantity %d", p.Quantity),
				Trace:    result.Trace,
			}
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertStock,
		Expected: fmt.Sprintf("product %s quantity %d", a.Product, a.Quantity),
		Actual:   "product not found",
		Trace:    result.Trace,
	}
}

// assertCustomer checks the first customer whose phone matches.
func assertCustomer(result *Result, a Assertion) error {
	for _, c := range result.State.Customers {
		if !model.SamePhone(c.Phone, a.Phone) {
			continue
		}
		actual, err := normalize(c)
		if err != nil {
			return err
		}
		return expectFields(AssertCustomer, result, actual, a.Expect)
	}
	return &AssertionError{
		Type:     AssertCustomer,
		Expected: fmt.Sprintf("customer with phone %s", a.Phone),
		Actual:   "customer not found",
		Trace:    result.Trace,
	}
}

func expectFields(kind string, result *Result, actual any, expect map[string]any) error {
	want, err := normalize(expect)
	if err != nil {
		return err
	}
	if diffs := subsetMismatches("", actual, want.(map[string]any)); len(diffs) > 0 {
		return &AssertionError{
			Type:     kind,
			Expected: formatWhereClause(expect),
			Actual:   strings.Join(diffs, "; "),
			Trace:    result.Trace,
		}
	}
	return nil
}

// subsetMismatches reports every key of expected that is missing from
// actual or holds a different value. Nested maps are matched as subsets;
// slices must match element for element.
func subsetMismatches(path string, actual any, expected map[string]any) []string {
	obj, ok := actual.(map[string]any)
	if !ok {
		return []string{fmt.Sprintf("%s: expected an object, got %v", orRoot(path), actual)}
	}

	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string
	for _, k := range keys {
		field := joinPath(path, k)
		got, exists := obj[k]
		if !exists {
			out = append(out, fmt.Sprintf("%s: missing", field))
			continue
		}
		if sub, ok := expected[k].(map[string]any); ok {
			out = append(out, subsetMismatches(field, got, sub)...)
			continue
		}
		if !valuesEqual(expected[k], got) {
			out = append(out, fmt.Sprintf("%s = %v, expected %v", field, got, expected[k]))
		}
	}
	return out
}

// valuesEqual compares normalised JSON values. Numbers compare with a small
// tolerance since money and points are float64.
func valuesEqual(expected, actual any) bool {
	if e, ok := expected.(float64); ok {
		a, ok := actual.(float64)
		return ok && math.Abs(e-a) < 1e-9
	}
	if e, ok := expected.([]any); ok {
		a, ok := actual.([]any)
		if !ok || len(a) != len(e) {
			return false
		}
		for i := range e {
			if sub, ok := e[i].(map[string]any); ok {
				if len(subsetMismatches("", a[i], sub)) > 0 {
					return false
				}
				continue
			}
			if !valuesEqual(e[i], a[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(expected, actual)
}

// formatWhereClause creates a human-readable description of field conditions.
func formatWhereClause(where map[string]any) string {
	if len(where) == 0 {
		return "(no conditions)"
	}

	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, where[k]))
	}
	return strings.Join(parts, " AND ")
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func orRoot(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
