package tools

import (
	"context"
	"encoding/json"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/llmutils"
	"github.com/go-playground/validator/v10"
)

// ErrFailedUnmarshalInput is returned by Call when the tool input
// is not a JSON document matching the tool parameters.
var ErrFailedUnmarshalInput = errors.New("invalid tool input")

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error.
	Call(context.Context, string) (string, error)
}

// Callback receives tool invocation events from the Registry.
type Callback interface {
	OnToolStart(context.Context, ITool, string)
	OnToolEnd(context.Context, ITool, string, string)
	OnToolError(context.Context, ITool, string, error)
}

type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

var validate = validator.New()

// ParseInput unmarshals and validates the tool input.
// LLM produced input is cleaned up from backticks and chatter,
// and parsed leniently to tolerate truncated JSON.
func ParseInput[I any](input string) (*I, error) {
	var req I
	if err := ljson.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return nil, errors.WithStack(ErrFailedUnmarshalInput)
	}
	if err := validate.Struct(&req); err != nil {
		return nil, errors.WithMessage(err, "invalid tool input")
	}
	return &req, nil
}

// CallTyped implements the untyped Call contract on top of a typed Run.
func CallTyped[I any, O any](ctx context.Context, t Tool[I, O], input string) (string, error) {
	req, err := ParseInput[I](input)
	if err != nil {
		return "", err
	}
	out, err := t.Run(ctx, req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns a backticked JSON list of tool names and
// descriptions, to be included in an agent prompt.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
