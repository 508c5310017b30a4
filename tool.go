package guardrail

import (
	"context"
	"fmt"
	"time"
)

// Tool is the capability-discovery contract for an LLM-callable instrument
// in the Action convention. It is provider-agnostic (no knowledge of OpenAI,
// Anthropic, etc.).
type Tool interface {
	Name() string
	Description() string
	// Parameters returns the input schema as a valid JSON Schema map
	// (compatible with LLM tool definitions).
	Parameters() map[string]any
	// Execute delegates to the wrapped Action's pipeline.
	Execute(ctx context.Context, payload map[string]any) (Response, error)
}

// ToolMetadata is implemented by tools created with NewTool and provides
// optional per-tool settings. Registry uses Timeout() to override the
// default execution timeout when set. Other methods expose tags, version,
// and dangerous flag for orchestration or discovery.
type ToolMetadata interface {
	Timeout() time.Duration
	Tags() []string
	Version() string
	IsDangerous() bool
}

// tool is the internal implementation of Tool built by NewTool.
type tool struct {
	name        string
	description string
	action      *Action
	opts        toolOptions
}

// NewTool composes an Action with a name and description for an external
// orchestration caller. Execute delegates entirely to the action; no
// validation or error path is added here.
func NewTool(name, description string, act *Action, opts ...ToolOption) (Tool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name must not be empty")
	}
	if act == nil {
		return nil, fmt.Errorf("tool action must not be nil")
	}
	var o toolOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &tool{name: name, description: description, action: act, opts: o}, nil
}

func (t *tool) Name() string        { return t.name }
func (t *tool) Description() string { return t.description }

// Parameters returns a deep copy of the input schema document.
func (t *tool) Parameters() map[string]any {
	return t.action.InputSchema().Definition()
}

func (t *tool) Execute(ctx context.Context, payload map[string]any) (Response, error) {
	return t.action.Execute(ctx, payload)
}

func (t *tool) Timeout() time.Duration { return t.opts.timeout }
func (t *tool) Tags() []string         { return append([]string(nil), t.opts.tags...) }
func (t *tool) Version() string        { return t.opts.version }
func (t *tool) IsDangerous() bool      { return t.opts.dangerous }

var (
	_ Tool         = (*tool)(nil)
	_ ToolMetadata = (*tool)(nil)
)

// ServiceTool composes a Service with discovery metadata. Execute returns
// the engine's validation envelope rather than the uniform Response record;
// use it for callers that consume validation results directly.
type ServiceTool struct {
	name        string
	description string
	service     *Service
}

// NewServiceTool composes a Service with a name and description.
func NewServiceTool(name, description string, svc *Service) (*ServiceTool, error) {
	if name == "" {
		return nil, fmt.Errorf("tool name must not be empty")
	}
	if svc == nil {
		return nil, fmt.Errorf("tool service must not be nil")
	}
	return &ServiceTool{name: name, description: description, service: svc}, nil
}

func (t *ServiceTool) Name() string        { return t.name }
func (t *ServiceTool) Description() string { return t.description }

// Parameters returns a deep copy of the input schema document.
func (t *ServiceTool) Parameters() map[string]any {
	return t.service.InputSchema().Definition()
}

// Execute delegates entirely to the wrapped Service.
func (t *ServiceTool) Execute(ctx context.Context, payload any) (Result, error) {
	return t.service.Execute(ctx, payload)
}
