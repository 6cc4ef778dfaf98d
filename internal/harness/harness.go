package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/idartimm2-jpg/nezam/internal/backup"
	"github.com/idartimm2-jpg/nezam/internal/model"
	"github.com/idartimm2-jpg/nezam/internal/pos"
	"github.com/idartimm2-jpg/nezam/internal/store"
	"github.com/idartimm2-jpg/nezam/internal/testutil"
)

// ErrInjected is the adapter error raised for steps marked fail_persist.
var ErrInjected = errors.New("injected persistence failure")

// faultAdapter rejects writes while armed.
type faultAdapter struct {
	store.Adapter
	armed bool
}

func (f *faultAdapter) SaveAll(ctx context.Context, entries map[store.Key][]byte) error {
	if f.armed {
		return ErrInjected
	}
	return f.Adapter.SaveAll(ctx, entries)
}

func (f *faultAdapter) Save(ctx context.Context, key store.Key, data []byte) error {
	if f.armed {
		return ErrInjected
	}
	return f.Adapter.Save(ctx, key, data)
}

func (f *faultAdapter) ClearAll(ctx context.Context) error {
	if f.armed {
		return ErrInjected
	}
	return f.Adapter.ClearAll(ctx)
}

// Harness executes steps against one Store.
type Harness struct {
	store   *pos.Store
	adapter *faultAdapter
	logger  *zap.Logger
}

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *zap.Logger
}

// WithLogger routes Store and harness logs to l. Runs are silent by default.
func WithLogger(l *zap.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Execution flow:
//  1. Open an in-memory SQLite adapter and initialise a Store
//  2. Execute setup steps, which must all succeed
//  3. Execute flow steps and check their expect clauses
//  4. Snapshot the final state and evaluate assertions
//
// A returned error means the scenario itself could not be executed;
// expectation and assertion failures are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	enforce := true
	if scenario.EnforceStock != nil {
		enforce = *scenario.EnforceStock
	}

	adapter := &faultAdapter{Adapter: st}
	h := &Harness{
		adapter: adapter,
		logger:  cfg.logger,
		store: pos.New(adapter,
			pos.WithLogger(cfg.logger),
			pos.WithClock(testutil.NewDeterministicClock()),
			pos.WithIDGenerator(testutil.NewSequentialIDs("id")),
			pos.WithStockEnforcement(enforce),
		),
	}

	ctx := context.Background()
	if err := h.store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialise store: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Setup {
		ev, err := h.execute(ctx, "setup", step)
		if err != nil {
			return nil, fmt.Errorf("setup step %d (%s): %w", i, step.Op, err)
		}
		result.AddTrace(ev)
		if ev.Outcome != OutcomeOK {
			return nil, fmt.Errorf("setup step %d (%s) failed with %s", i, step.Op, ev.Outcome)
		}
	}

	for i, step := range scenario.Flow {
		ev, err := h.execute(ctx, "flow", step)
		if err != nil {
			return nil, fmt.Errorf("flow step %d (%s): %w", i, step.Op, err)
		}
		result.AddTrace(ev)
		for _, msg := range checkExpect(step, ev) {
			result.AddError(fmt.Sprintf("flow[%d] %s: %s", i, step.Op, msg))
		}
		h.logger.Debug("flow step completed",
			zap.Int("step", i),
			zap.String("op", step.Op),
			zap.String("outcome", ev.Outcome))
	}

	result.State = h.store.Snapshot()
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// checkExpect compares a flow step's outcome with its expect clause.
func checkExpect(step Step, ev TraceEvent) []string {
	want := OutcomeOK
	if step.Expect != nil && step.Expect.Error != "" {
		want = step.Expect.Error
	}
	if ev.Outcome != want {
		return []string{fmt.Sprintf("expected outcome %s, got %s", want, ev.Outcome)}
	}
	if step.Expect == nil || len(step.Expect.Result) == 0 {
		return nil
	}
	expected, err := normalize(step.Expect.Result)
	if err != nil {
		return []string{fmt.Sprintf("expected result: %v", err)}
	}
	return subsetMismatches("result", ev.Result, expected.(map[string]any))
}

// execute runs one step and records it as a trace event. Store errors
// become the event outcome; only malformed steps return an error.
func (h *Harness) execute(ctx context.Context, phase string, step Step) (TraceEvent, error) {
	args, err := normalize(step.Args)
	if err != nil {
		return TraceEvent{}, fmt.Errorf("args: %w", err)
	}
	ev := TraceEvent{Phase: phase, Op: step.Op, Outcome: OutcomeOK}
	if len(step.Args) > 0 {
		ev.Args = args
	}

	h.adapter.armed = step.FailPersist
	defer func() { h.adapter.armed = false }()

	value, opErr, err := h.dispatch(ctx, step)
	if err != nil {
		return TraceEvent{}, err
	}
	if opErr != nil {
		ev.Outcome = outcomeOf(opErr)
		return ev, nil
	}
	if value != nil {
		if ev.Result, err = normalize(value); err != nil {
			return TraceEvent{}, fmt.Errorf("result: %w", err)
		}
	}
	return ev, nil
}

type idArgs struct {
	ID string `json:"id"`
}

type adjustArgs struct {
	ProductID string       `json:"productId"`
	Change    int          `json:"change"`
	Reason    model.Reason `json:"reason"`
}

// dispatch runs the Store operation. opErr is the Store's own error; err
// reports a step that could not be decoded.
func (h *Harness) dispatch(ctx context.Context, step Step) (value any, opErr, err error) {
	s := h.store
	switch step.Op {
	case OpAddProduct:
		var p model.Product
		if err := decodeArgs(step.Args, &p); err != nil {
			return nil, nil, err
		}
		out, opErr := s.AddProduct(ctx, p)
		return out, opErr, nil

	case OpUpdateProduct:
		var p model.Product
		if err := decodeArgs(step.Args, &p); err != nil {
			return nil, nil, err
		}
		ok, opErr := s.UpdateProduct(ctx, p)
		return map[string]bool{"updated": ok}, opErr, nil

	case OpDeleteProduct:
		var a idArgs
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, nil, err
		}
		ok, opErr := s.DeleteProduct(ctx, a.ID)
		return map[string]bool{"deleted": ok}, opErr, nil

	case OpAddCustomer:
		var c model.Customer
		if err := decodeArgs(step.Args, &c); err != nil {
			return nil, nil, err
		}
		out, opErr := s.AddCustomer(ctx, c)
		return out, opErr, nil

	case OpUpdateCustomer:
		var c model.Customer
		if err := decodeArgs(step.Args, &c); err != nil {
			return nil, nil, err
		}
		ok, opErr := s.UpdateCustomer(ctx, c)
		return map[string]bool{"updated": ok}, opErr, nil

	case OpDeleteCustomer:
		var a idArgs
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, nil, err
		}
		ok, opErr := s.DeleteCustomer(ctx, a.ID)
		return map[string]bool{"deleted": ok}, opErr, nil

	case OpCommitInvoice:
		var inv model.Invoice
		if err := decodeArgs(step.Args, &inv); err != nil {
			return nil, nil, err
		}
		out, opErr := s.CommitInvoice(ctx, inv)
		return out, opErr, nil

	case OpCommitStockLog:
		var l model.StockLog
		if err := decodeArgs(step.Args, &l); err != nil {
			return nil, nil, err
		}
		out, opErr := s.CommitStockLog(ctx, l)
		return out, opErr, nil

	case OpAdjustStock:
		var a adjustArgs
		if err := decodeArgs(step.Args, &a); err != nil {
			return nil, nil, err
		}
		out, opErr := s.AdjustStock(ctx, a.ProductID, a.Change, a.Reason)
		return out, opErr, nil

	case OpCheckout:
		var req pos.CheckoutRequest
		if err := decodeArgs(step.Args, &req); err != nil {
			return nil, nil, err
		}
		out, opErr := s.Checkout(ctx, req)
		return out, opErr, nil

	case OpUpdateSettings:
		// Fields not named keep their current value.
		st := s.Settings()
		if err := decodeArgs(step.Args, &st); err != nil {
			return nil, nil, err
		}
		return st, s.UpdateSettings(ctx, st), nil

	case OpImport:
		data, err := json.Marshal(orEmpty(step.Args))
		if err != nil {
			return nil, nil, err
		}
		b, opErr := backup.Parse(data)
		if opErr != nil {
			return nil, opErr, nil
		}
		return nil, s.ImportAll(ctx, b), nil

	case OpReset:
		return nil, s.ResetAll(ctx), nil
	}
	return nil, nil, fmt.Errorf("unknown op %q", step.Op)
}

func outcomeOf(err error) string {
	if code := pos.CodeOf(err); code != "" {
		return string(code)
	}
	var verr *backup.ValidationError
	if errors.As(err, &verr) {
		return string(pos.ErrCodeInvalidImport)
	}
	return "ERROR"
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// decodeArgs converts YAML args into v via their JSON form. Unknown
// fields are rejected so typos in scenarios surface.
func decodeArgs(args map[string]any, v any) error {
	data, err := json.Marshal(orEmpty(args))
	if err != nil {
		return fmt.Errorf("encode args: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// normalize converts v to its generic JSON form (maps, slices, float64,
// string, bool) so values from YAML and from Go structs compare equal.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
