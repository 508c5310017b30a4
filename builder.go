package guardrail

import (
	"context"
	"encoding/json"
	"fmt"
)

// NewActionFor builds an Action from a typed handler. The input and output
// schemas are generated from T and R, the validated payload is decoded into
// T (then run through Validatable if implemented) before the handler runs,
// and the handler's result becomes the response Data. Decode and custom
// validation failures are ClientErrors so the caller can pass the message to
// the LLM for self-correction. strict applies to both generated schemas.
func NewActionFor[T, R any](strict bool, fn func(ctx context.Context, args T) (R, error)) (*Action, error) {
	if fn == nil {
		return nil, fmt.Errorf("action handler must not be nil")
	}
	input, err := SchemaFor[T](strict)
	if err != nil {
		return nil, err
	}
	output, err := SchemaFor[R](strict)
	if err != nil {
		return nil, err
	}
	unit := func(ctx context.Context, payload map[string]any) (Response, error) {
		args, err := decodeArgs[T](payload)
		if err != nil {
			return Response{}, err
		}
		res, err := fn(ctx, args)
		if err != nil {
			return Response{}, err
		}
		data, err := encodeRecord(res)
		if err != nil {
			return Response{}, err
		}
		return Response{Success: true, Data: data}, nil
	}
	return NewAction(input, output, unit)
}

// NewServiceFor builds a Service from a typed handler, with schemas
// generated from T and R. Error handling matches NewActionFor.
func NewServiceFor[T, R any](strict bool, fn func(ctx context.Context, args T) (R, error)) (*Service, error) {
	if fn == nil {
		return nil, fmt.Errorf("service handler must not be nil")
	}
	input, err := SchemaFor[T](strict)
	if err != nil {
		return nil, err
	}
	output, err := SchemaFor[R](strict)
	if err != nil {
		return nil, err
	}
	unit := func(ctx context.Context, payload any) (any, error) {
		args, err := decodeArgs[T](payload)
		if err != nil {
			return nil, err
		}
		return fn(ctx, args)
	}
	return NewService(input, output, unit)
}

// decodeArgs decodes a schema-validated generic payload into the handler's
// argument type and runs custom (Validatable) validation.
func decodeArgs[T any](payload any) (T, error) {
	var args T
	data, err := json.Marshal(payload)
	if err != nil {
		return args, wrapDecodeError(err)
	}
	if err := json.Unmarshal(data, &args); err != nil {
		return args, wrapDecodeError(err)
	}
	if err := runCustomValidation(args); err != nil {
		var zero T
		if IsClientError(err) {
			return zero, err
		}
		return zero, &ClientError{Reason: err.Error(), Err: ErrValidation}
	}
	return args, nil
}

// encodeRecord marshals a handler result into a generic record for the
// output schema. A result that does not marshal to a JSON object is a
// programming error, reported as SystemError.
func encodeRecord(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, &SystemError{Err: err}
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &SystemError{Err: err}
	}
	return out, nil
}
