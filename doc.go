// Package guardrail provides a schema-validated execution wrapper for
// LLM-callable actions: validate the payload before business logic runs,
// validate (and strip) the result before the caller sees it, and normalize
// both into one uniform result shape.
//
// # Overview
//
// Business logic wrapped by guardrail never observes a malformed payload and
// never leaks a malformed or undeclared result field. Pipeline:
// normalize optional empty strings → input schema validate → (fail:
// short-circuit) → unit → output schema validate + strip unknown fields →
// (fail: short-circuit) → uniform result.
//
// # Key concepts
//
//   - Two conventions: Service returns the engine's validation envelope
//     (Result); Action returns the uniform {success, data, messages} record
//     (Response). Both run the same validate→call→validate skeleton.
//   - Single Source of Truth: one schema drives both the parameters shown to
//     the LLM and the validation of incoming payloads.
//   - Closed response surface: output fields the schema does not declare are
//     stripped, even if the unit produced them.
//   - Self-Correction: validation failures carry one message per issue with
//     its field path, ready to hand back to the LLM.
//
// See Schema, Action, Service, and Tool for the core types, and
// NewActionFor / NewRegistry for typed setup.
//
// # Example
//
//	type Args struct { Name string `json:"name" jsonschema:"required"` }
//	type Out  struct { ID int `json:"id"` }
//	act, err := guardrail.NewActionFor(false, func(_ context.Context, a Args) (Out, error) {
//	    return Out{ID: 1}, nil
//	})
//	if err != nil { ... }
//	tool, err := guardrail.NewTool("create_user", "Create a user", act)
//	if err != nil { ... }
//	reg := guardrail.NewRegistry()
//	reg.Register(tool)
//	resp, err := reg.Execute(ctx, guardrail.ToolCall{
//	    ID: "1", ToolName: "create_user", Payload: map[string]any{"name": "John Doe"},
//	})
package guardrail
