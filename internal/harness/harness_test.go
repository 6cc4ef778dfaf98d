package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, qty int) Step {
	return Step{Op: OpAddProduct, Args: map[string]any{
		"id": id, "name": "Item " + id, "buyPrice": 2, "sellPrice": 5, "quantity": qty,
	}}
}

func checkoutStep(productID string, qty int, phone string) Step {
	return Step{Op: OpCheckout, Args: map[string]any{
		"lines":         []any{map[string]any{"productId": productID, "quantity": qty}},
		"customerName":  "Buyer",
		"customerPhone": phone,
	}}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Minimal test scenario",
		Flow:        []Step{product("p1", 3)},
		Assertions: []Assertion{
			{Type: AssertStock, Product: "p1", Quantity: 3},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, 1, result.Trace[0].Seq)
	assert.Equal(t, "flow", result.Trace[0].Phase)
	assert.Equal(t, OutcomeOK, result.Trace[0].Outcome)
	assert.Len(t, result.State.Products, 1)
}

func TestRun_WithSetup(t *testing.T) {
	scenario := &Scenario{
		Name:        "with_setup",
		Description: "Test scenario with setup steps",
		Setup:       []Step{product("p1", 10)},
		Flow:        []Step{checkoutStep("p1", 3, "0100")},
		Assertions: []Assertion{
			{Type: AssertStock, Product: "p1", Quantity: 7},
			{Type: AssertCount, Collection: "invoices", Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	assert.True(t, result.Pass, result.Errors)
	require.Len(t, result.Trace, 2)
	assert.Equal(t, "setup", result.Trace[0].Phase)
	assert.Equal(t, "flow", result.Trace[1].Phase)
}

func TestRun_SetupFailureIsRunError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_setup",
		Description: "Setup step that fails",
		Setup: []Step{{Op: OpAdjustStock, Args: map[string]any{
			"productId": "missing", "change": 1, "reason": "other",
		}}},
		Flow:       []Step{product("p1", 1)},
		Assertions: []Assertion{{Type: AssertCount, Collection: "products", Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNKNOWN_PRODUCT")
}

func TestRun_WithExpectResult(t *testing.T) {
	scenario := &Scenario{
		Name:        "expect_result",
		Description: "Checkout result is matched as a subset",
		Setup:       []Step{product("p1", 10)},
		Flow: []Step{func() Step {
			s := checkoutStep("p1", 2, "0100")
			s.Expect = &Expect{Result: map[string]any{"total": 10, "totalProfit": 6, "customerId": "id-1"}}
			return s
		}()},
		Assertions: []Assertion{{Type: AssertCount, Collection: "customers", Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_ExpectResultMismatch(t *testing.T) {
	scenario := &Scenario{
		Name:        "expect_mismatch",
		Description: "A wrong expected total fails the run",
		Setup:       []Step{product("p1", 10)},
		Flow: []Step{func() Step {
			s := checkoutStep("p1", 2, "0100")
			s.Expect = &Expect{Result: map[string]any{"total": 11}}
			return s
		}()},
		Assertions: []Assertion{{Type: AssertCount, Collection: "invoices", Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "total = 10, expected 11")
}

func TestRun_WithErrorExpect(t *testing.T) {
	scenario := &Scenario{
		Name:        "error_expect",
		Description: "Oversized checkout is rejected",
		Setup:       []Step{product("p1", 1)},
		Flow: []Step{func() Step {
			s := checkoutStep("p1", 2, "0100")
			s.Expect = &Expect{Error: "INSUFFICIENT_STOCK"}
			return s
		}()},
		Assertions: []Assertion{{Type: AssertStock, Product: "p1", Quantity: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, "INSUFFICIENT_STOCK", result.Trace[1].Outcome)
	assert.Nil(t, result.Trace[1].Result)
}

func TestRun_UnexpectedErrorFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "unexpected_error",
		Description: "A step without expect must succeed",
		Setup:       []Step{product("p1", 1)},
		Flow:        []Step{checkoutStep("p1", 2, "0100")},
		Assertions:  []Assertion{{Type: AssertStock, Product: "p1", Quantity: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "expected outcome ok, got INSUFFICIENT_STOCK")
}

func TestRun_StockEnforcementDisabled(t *testing.T) {
	off := false
	scenario := &Scenario{
		Name:         "no_enforcement",
		Description:  "Checkout may oversell when enforcement is off",
		EnforceStock: &off,
		Setup:        []Step{product("p1", 1)},
		Flow:         []Step{checkoutStep("p1", 3, "0100")},
		Assertions:   []Assertion{{Type: AssertStock, Product: "p1", Quantity: -2}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_FailPersistRollsBack(t *testing.T) {
	failing := product("p2", 5)
	failing.FailPersist = true
	failing.Expect = &Expect{Error: "PERSIST_FAILED"}

	scenario := &Scenario{
		Name:        "fail_persist",
		Description: "Injected write failure leaves state unchanged",
		Setup:       []Step{product("p1", 5)},
		Flow:        []Step{failing, product("p3", 1)},
		Assertions:  []Assertion{{Type: AssertCount, Collection: "products", Count: 2}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_UnknownArgFieldIsRunError(t *testing.T) {
	scenario := &Scenario{
		Name:        "typo",
		Description: "Misspelt arg field",
		Flow: []Step{{Op: OpAddProduct, Args: map[string]any{
			"id": "p1", "name": "Tea", "sellprice": 5,
		}}},
		Assertions: []Assertion{{Type: AssertCount, Collection: "products", Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sellprice")
}

func TestRun_ImportValidationOutcome(t *testing.T) {
	scenario := &Scenario{
		Name:        "import_invalid",
		Description: "Schema violations surface as INVALID_IMPORT",
		Flow: []Step{{
			Op: OpImport,
			Args: map[string]any{"products": []any{
				map[string]any{"id": "p1", "name": "Tea", "buyPrice": -1, "sellPrice": 2, "quantity": 1},
			}},
			Expect: &Expect{Error: "INVALID_IMPORT"},
		}},
		Assertions: []Assertion{{Type: AssertCount, Collection: "products", Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_UpdateSettingsMergesArgs(t *testing.T) {
	scenario := &Scenario{
		Name:        "settings_merge",
		Description: "Unnamed settings fields keep their value",
		Setup: []Step{{Op: OpUpdateSettings, Args: map[string]any{
			"storeName": "Corner", "pointsPerCurrency": 2,
		}}},
		Flow: []Step{{Op: OpUpdateSettings, Args: map[string]any{"phone": "0123"}}},
		Assertions: []Assertion{{Type: AssertCount, Collection: "products", Count: 0}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.Equal(t, "Corner", result.State.Settings.StoreName)
	assert.Equal(t, "0123", result.State.Settings.Phone)
	assert.Equal(t, 2.0, result.State.Settings.PointsPerCurrency)
}

func TestRun_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:        "deterministic",
		Description: "Two runs produce the same trace and state",
		Setup:       []Step{product("p1", 10)},
		Flow: []Step{
			checkoutStep("p1", 1, "0100"),
			{Op: OpAdjustStock, Args: map[string]any{"productId": "p1", "change": -1, "reason": "theft"}},
		},
		Assertions: []Assertion{{Type: AssertStock, Product: "p1", Quantity: 8}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalSnapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := MarshalSnapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_FreshDatabasePerRun(t *testing.T) {
	scenario := &Scenario{
		Name:        "fresh",
		Description: "Each run starts empty",
		Flow:        []Step{product("p1", 1)},
		Assertions:  []Assertion{{Type: AssertCount, Collection: "products", Count: 1}},
	}

	for i := 0; i < 2; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		assert.True(t, result.Pass, result.Errors)
	}
}

func TestRun_ScenarioFiles(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestNormalize(t *testing.T) {
	v, err := normalize(map[string]any{"n": 3, "items": []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": 3.0, "items": []any{1.0, 2.0}}, v)

	v, err = normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
