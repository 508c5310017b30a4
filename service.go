package guardrail

import (
	"context"
	"fmt"
)

// runPipeline is the validate→call→validate skeleton shared by both wrapper
// conventions. Input failure short-circuits before call is invoked, which is
// a hard ordering guarantee: the unit never observes a malformed payload.
// Errors from call propagate unchanged. strip selects closed-mode output
// validation (undeclared fields dropped).
func runPipeline(ctx context.Context, input, output Schema, strip bool, payload any, call func(context.Context, any) (any, error)) (Result, error) {
	in := input.Validate(payload)
	if !in.Success {
		return in, nil
	}
	out, err := call(ctx, in.Value)
	if err != nil {
		return Result{}, err
	}
	if strip {
		return output.ValidateStrip(out), nil
	}
	return output.Validate(out), nil
}

// Service wraps a bare-value unit of logic between an input and an output
// schema. Execute returns the engine's validation envelope itself; Action is
// the richer variant built on the same skeleton. A Service is immutable
// after construction and safe for concurrent use.
type Service struct {
	input  Schema
	output Schema
	unit   ServiceUnit
}

// NewService builds a Service. All three collaborators are required.
func NewService(input, output Schema, unit ServiceUnit) (*Service, error) {
	if input == nil || output == nil {
		return nil, fmt.Errorf("service schemas must not be nil")
	}
	if unit == nil {
		return nil, fmt.Errorf("service unit must not be nil")
	}
	return &Service{input: input, output: output, unit: unit}, nil
}

// Execute validates payload against the input schema (no empty-string
// normalization in this convention), calls the unit with the normalized
// value, and validates the unit's bare result against the output schema.
// Either validation failure is returned as the failure Result; unit errors
// propagate unchanged.
func (s *Service) Execute(ctx context.Context, payload any) (Result, error) {
	return runPipeline(ctx, s.input, s.output, false, payload, func(ctx context.Context, v any) (any, error) {
		return s.unit(ctx, v)
	})
}

// InputSchema returns the schema payloads are validated against.
func (s *Service) InputSchema() Schema { return s.input }

// OutputSchema returns the schema results are validated against.
func (s *Service) OutputSchema() Schema { return s.output }
