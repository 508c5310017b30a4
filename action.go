package guardrail

import (
	"context"
	"fmt"
)

// Action wraps a uniform-response unit of logic between an input and an
// output schema: a two-stage gate that keeps malformed input from ever
// reaching the unit and keeps malformed or undeclared output from ever
// escaping it. An Action is immutable after construction; it holds only the
// schemas and the unit, so concurrent Execute calls on one instance are safe.
type Action struct {
	input  Schema
	output Schema
	unit   ActionUnit
}

// NewAction builds an Action. The unit must already return the uniform
// Response record for the unvalidated output type.
func NewAction(input, output Schema, unit ActionUnit) (*Action, error) {
	if input == nil || output == nil {
		return nil, fmt.Errorf("action schemas must not be nil")
	}
	if unit == nil {
		return nil, fmt.Errorf("action unit must not be nil")
	}
	return &Action{input: input, output: output, unit: unit}, nil
}

// Execute runs the pipeline: empty-string normalization for optional fields,
// input validation, the unit, then closed-mode output validation that drops
// fields the output schema does not declare.
//
// A validation failure at either stage resolves to a uniform failure
// Response with one VALIDATION_ERROR message per issue; on the output side
// the unit's own success and messages are discarded. On success the unit's
// Response is returned with Data replaced by the stripped value, so unit
// messages accompanying a valid result still flow through. Unit errors
// propagate unchanged as the error return.
func (a *Action) Execute(ctx context.Context, payload map[string]any) (Response, error) {
	var unitResp Response
	call := func(ctx context.Context, v any) (any, error) {
		record, _ := v.(map[string]any)
		resp, err := a.unit(ctx, record)
		if err != nil {
			return nil, err
		}
		unitResp = resp
		return resp.Data, nil
	}
	normalized := NormalizeEmptyOptional(payload, a.input)
	res, err := runPipeline(ctx, a.input, a.output, true, normalized, call)
	if err != nil {
		return Response{}, err
	}
	if !res.Success {
		return failureResponse(res.Issues), nil
	}
	data, _ := res.Value.(map[string]any)
	unitResp.Data = data
	return unitResp, nil
}

// InputSchema returns the schema payloads are validated against.
func (a *Action) InputSchema() Schema { return a.input }

// OutputSchema returns the schema response data is validated against.
func (a *Action) OutputSchema() Schema { return a.output }
