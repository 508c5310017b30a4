// Package testutil provides test helpers for guardrail (e.g. MockTool, CountingUnit).
package testutil

import (
	"context"
	"sync/atomic"

	"github.com/skosovsky/guardrail"
)

// MockTool is a configurable Tool implementation for tests.
type MockTool struct {
	NameVal   string
	DescVal   string
	ParamsVal map[string]any
	ExecuteFn func(ctx context.Context, payload map[string]any) (guardrail.Response, error)
}

// Name returns the tool name.
func (m *MockTool) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Description returns the tool description.
func (m *MockTool) Description() string {
	return m.DescVal
}

// Parameters returns the parameters schema (or empty map).
func (m *MockTool) Parameters() map[string]any {
	if m.ParamsVal != nil {
		return m.ParamsVal
	}
	return map[string]any{}
}

// Execute runs ExecuteFn if set, otherwise returns an empty successful response.
func (m *MockTool) Execute(ctx context.Context, payload map[string]any) (guardrail.Response, error) {
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, payload)
	}
	return guardrail.Response{Success: true}, nil
}

// Ensure MockTool implements Tool.
var _ guardrail.Tool = (*MockTool)(nil)

// CountingUnit wraps an ActionUnit and counts invocations. Use it to assert
// that input-validation failures never reach the wrapped business logic.
type CountingUnit struct {
	calls atomic.Int64
	Fn    guardrail.ActionUnit
}

// Unit returns an ActionUnit that counts, then delegates to Fn (or returns
// an empty successful response when Fn is nil).
func (c *CountingUnit) Unit() guardrail.ActionUnit {
	return func(ctx context.Context, payload map[string]any) (guardrail.Response, error) {
		c.calls.Add(1)
		if c.Fn != nil {
			return c.Fn(ctx, payload)
		}
		return guardrail.Response{Success: true}, nil
	}
}

// Calls returns the number of times the unit has been invoked.
func (c *CountingUnit) Calls() int64 {
	return c.calls.Load()
}
