package guardrail

import (
	"context"
	"fmt"
	"strings"
)

// CodeValidation is the message code attached to every validation failure
// produced by a wrapper. Wrapped units may emit their own codes; those pass
// through unchanged.
const CodeValidation = "VALIDATION_ERROR"

// Issue is a single validation failure reported by the schema engine:
// a human-readable message plus the path of the failing value inside the
// instance (property names and array indices, outermost first).
type Issue struct {
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

// Text renders the issue for a caller: "<message> (at <dotted path>)",
// or the bare message when the path is empty.
func (i Issue) Text() string {
	if len(i.Path) == 0 {
		return i.Message
	}
	return fmt.Sprintf("%s (at %s)", i.Message, strings.Join(i.Path, "."))
}

// Result is the schema engine's safe-validate envelope. On success Value
// holds the normalized instance (generic JSON types: map[string]any, []any,
// float64, string, bool, nil); on failure Issues lists every violation in
// engine order.
type Result struct {
	Success bool
	Value   any
	Issues  []Issue
}

// Message is one entry of a Response's message list.
type Message struct {
	Code string `json:"code"`
	Text string `json:"text"`
}

// Response is the uniform result record of the Action convention.
// Success is true iff Data passed the output schema; Messages is non-empty
// iff Success is false, except that a unit's own messages may accompany a
// successful result.
type Response struct {
	Success  bool           `json:"success"`
	Data     map[string]any `json:"data,omitempty"`
	Messages []Message      `json:"messages,omitempty"`
}

// ActionUnit is business logic already in the uniform Response convention.
// The payload it receives has passed (and been normalized by) the input schema.
type ActionUnit func(ctx context.Context, payload map[string]any) (Response, error)

// ServiceUnit is business logic in the bare-value convention: it receives the
// normalized payload and returns a plain result value.
type ServiceUnit func(ctx context.Context, payload any) (any, error)

// ToolCall is a single execution request (as produced by the LLM).
type ToolCall struct {
	ID       string
	ToolName string
	Payload  map[string]any
}

// ExecutionSummary is passed to the after-execution hook (WithOnAfterExecute)
// when a tool execution finishes. Success reflects the returned Response;
// Err is the propagated unit/system error, if any.
type ExecutionSummary struct {
	CallID   string
	ToolName string
	Success  bool
	Err      error
}

// messagesFromIssues maps validation issues to caller-facing messages,
// one per issue, preserving engine order.
func messagesFromIssues(issues []Issue) []Message {
	msgs := make([]Message, len(issues))
	for i, issue := range issues {
		msgs[i] = Message{Code: CodeValidation, Text: issue.Text()}
	}
	return msgs
}

// failureResponse builds the uniform validation-failure record.
func failureResponse(issues []Issue) Response {
	return Response{Success: false, Messages: messagesFromIssues(issues)}
}
