package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one executable store scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// EnforceStock toggles checkout stock enforcement. Defaults to true.
	EnforceStock *bool `yaml:"enforce_stock,omitempty"`

	// Setup steps establish initial state and must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the steps under test, each optionally with an expect clause.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one Store operation.
type Step struct {
	// Op names the operation (see the Op constants).
	Op string `yaml:"op"`

	// Args is decoded into the operation's input type.
	Args map[string]any `yaml:"args,omitempty"`

	// FailPersist makes the adapter reject writes for this step only.
	FailPersist bool `yaml:"fail_persist,omitempty"`

	// Expect validates the step outcome. Nil means the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a flow step.
type Expect struct {
	// Error is the expected error code; empty means success.
	Error string `yaml:"error,omitempty"`

	// Result is a subset match against the JSON form of the returned value.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type is one of count, record, stock, customer.
	Type string `yaml:"type"`

	// Collection names a snapshot collection (used by count and record).
	Collection string `yaml:"collection,omitempty"`

	// Count is the expected number of records (used by count).
	Count int `yaml:"count,omitempty"`

	// Where selects exactly one record by field equality (used by record).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values, subset match (record, customer).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Product is a product ID (used by stock).
	Product string `yaml:"product,omitempty"`

	// Quantity is the expected product quantity (used by stock).
	Quantity int `yaml:"quantity,omitempty"`

	// Phone selects a customer by normalised phone (used by customer).
	Phone string `yaml:"phone,omitempty"`
}

// Assertion type constants.
const (
	AssertCount    = "count"
	AssertRecord   = "record"
	AssertStock    = "stock"
	AssertCustomer = "customer"
)

// Operation names.
const (
	OpAddProduct     = "add_product"
	OpUpdateProduct  = "update_product"
	OpDeleteProduct  = "delete_product"
	OpAddCustomer    = "add_customer"
	OpUpdateCustomer = "update_customer"
	OpDeleteCustomer = "delete_customer"
	OpCommitInvoice  = "commit_invoice"
	OpCommitStockLog = "commit_stock_log"
	OpAdjustStock    = "adjust_stock"
	OpCheckout       = "checkout"
	OpUpdateSettings = "update_settings"
	OpImport         = "import"
	OpReset          = "reset"
)

var knownOps = map[string]bool{
	OpAddProduct: true, OpUpdateProduct: true, OpDeleteProduct: true,
	OpAddCustomer: true, OpUpdateCustomer: true, OpDeleteCustomer: true,
	OpCommitInvoice: true, OpCommitStockLog: true, OpAdjustStock: true,
	OpCheckout: true, OpUpdateSettings: true, OpImport: true, OpReset: true,
}

var knownCollections = map[string]bool{
	"products": true, "customers": true, "invoices": true, "stockLogs": true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(step Step) error {
	if step.Op == "" {
		return fmt.Errorf("op is required")
	}
	if !knownOps[step.Op] {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertCount:
		if !knownCollections[a.Collection] {
			return fmt.Errorf("assertions[%d]: unknown collection %q for count", index, a.Collection)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertRecord:
		if !knownCollections[a.Collection] {
			return fmt.Errorf("assertions[%d]: unknown collection %q for record", index, a.Collection)
		}
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for record", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	case AssertStock:
		if a.Product == "" {
			return fmt.Errorf("assertions[%d]: product is required for stock", index)
		}
	case AssertCustomer:
		if a.Phone == "" {
			return fmt.Errorf("assertions[%d]: phone is required for customer", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for customer", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
