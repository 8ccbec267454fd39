package tools

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/llmutils"
	"github.com/effective-security/agentools/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentools", "tools")

// ErrToolNotFound is returned by Registry.Call for an unknown tool name.
var ErrToolNotFound = errors.New("tool not found")

// ToolSchema describes a registered tool for function calling.
type ToolSchema struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

// Registry holds the set of tools exposed to an agent runtime.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]ITool
	callbacks []Callback
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ITool),
	}
}

// WithCallback adds a callback receiving tool invocation events.
func (r *Registry) WithCallback(cb Callback) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = append(r.callbacks, cb)
	return r
}

func (r *Registry) Register(tool ITool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, ok := r.tools[name]; ok {
		return errors.Errorf("tool already registered: %s", name)
	}
	r.tools[name] = tool
	return nil
}

// MustRegister registers the tools and panics on a duplicate name.
func (r *Registry) MustRegister(list ...ITool) *Registry {
	for _, tool := range list {
		if err := r.Register(tool); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Get(name string) (ITool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []ITool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]ITool, 0, len(r.tools))
	for _, tool := range r.tools {
		list = append(list, tool)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// Schemas returns function-calling definitions for the registered tools,
// sorted by name.
func (r *Registry) Schemas() []ToolSchema {
	list := r.List()
	schemas := make([]ToolSchema, 0, len(list))
	for _, tool := range list {
		schemas = append(schemas, ToolSchema{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  tool.Parameters(),
		})
	}
	return schemas
}

// Descriptions returns a backticked JSON summary of the registered tools.
func (r *Registry) Descriptions() string {
	return GetDescriptions(r.List()...)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Call invokes a registered tool by name. Tool failures are returned to
// the caller as an `{"error": ...}` JSON document, so that the agent can
// observe the failure and retry with corrected input.
func (r *Registry) Call(ctx context.Context, name, input string) (string, error) {
	tool, ok := r.Get(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		return "", errors.WithMessagef(ErrToolNotFound, "%s", name)
	}

	r.mu.RLock()
	callbacks := r.callbacks
	r.mu.RUnlock()

	for _, cb := range callbacks {
		cb.OnToolStart(ctx, tool, input)
	}

	started := time.Now()
	out, err := tool.Call(ctx, input)
	metricskey.PerfToolCall.MeasureSince(started, name)
	if err != nil {
		for _, cb := range callbacks {
			cb.OnToolError(ctx, tool, input, err)
		}
		if errors.Is(err, ErrFailedUnmarshalInput) {
			metricskey.StatsToolInputParseErrors.IncrCounter(1, name)
		}
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.ERROR,
			"tool", name,
			"err", err.Error(),
		)
		return llmutils.ToJSON(errorResponse{Error: err.Error()}), nil
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)
	for _, cb := range callbacks {
		cb.OnToolEnd(ctx, tool, input, out)
	}
	return out, nil
}
