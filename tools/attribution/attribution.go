// Package attribution calculates marketing channel contributions using
// classic attribution models.
package attribution

import (
	"context"
	"math"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
	"github.com/effective-security/x/values"
)

const ToolName = "AttributionModeler"

const stateDoc = "attribution_data"

const (
	OpAddPaths  = "add_conversion_paths"
	OpRunModel  = "run_attribution_model"
	OpListPaths = "list_paths"
)

const (
	ModelFirstClick = "first_click"
	ModelLastClick  = "last_click"
	ModelLinear     = "linear"
	ModelTimeDecay  = "time_decay"
)

// DefaultHalfLifeDays is the half-life for the time-decay model.
const DefaultHalfLifeDays = 7

// ConversionPath is an ordered list of channels that led to conversions.
type ConversionPath struct {
	Path        []string `json:"path" yaml:"path"`
	Conversions int      `json:"conversions" yaml:"conversions"`
}

// Request represents the tool input.
type Request struct {
	Operation    string     `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=add_conversion_paths,enum=run_attribution_model,enum=list_paths" validate:"required,oneof=add_conversion_paths run_attribution_model list_paths"`
	Paths        [][]string `json:"paths,omitempty" yaml:"paths,omitempty" jsonschema:"title=paths,description=Conversion paths to add; each path is an ordered list of channels."`
	ModelType    string     `json:"model_type,omitempty" yaml:"model_type,omitempty" jsonschema:"title=model_type,description=The attribution model to run.,enum=first_click,enum=last_click,enum=linear,enum=time_decay" validate:"omitempty,oneof=first_click last_click linear time_decay"`
	HalfLifeDays int        `json:"half_life_days,omitempty" yaml:"half_life_days,omitempty" jsonschema:"title=half_life_days,description=Half-life in days for the time-decay model.,default=7"`
}

// Response represents the tool output.
type Response struct {
	Status     string             `json:"status,omitempty" yaml:"status,omitempty"`
	AddedCount int                `json:"added_count,omitempty" yaml:"added_count,omitempty"`
	ModelType  string             `json:"model_type,omitempty" yaml:"model_type,omitempty"`
	Credits    map[string]float64 `json:"credits,omitempty" yaml:"credits,omitempty"`
	Paths      []ConversionPath   `json:"paths,omitempty" yaml:"paths,omitempty"`
}

type state struct {
	ConversionPaths []ConversionPath `json:"conversion_paths"`
}

// Tool calculates channel credits for stored conversion paths.
type Tool struct {
	name        string
	description string
	funcParams  any

	store store.Store
}

var _ tools.Tool[Request, Response] = (*Tool)(nil)

func New(st store.Store) (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: "Calculates marketing channel contributions using various attribution models.",
		funcParams:  sc.Parameters,
		store:       st,
	}, nil
}

func (t *Tool) Name() string        { return t.name }
func (t *Tool) Description() string { return t.description }
func (t *Tool) Parameters() any     { return t.funcParams }

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallTyped(ctx, t, input)
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Response, error) {
	var s state
	if _, err := t.store.Load(ctx, stateDoc, &s); err != nil {
		return nil, err
	}

	switch req.Operation {
	case OpAddPaths:
		if len(req.Paths) == 0 {
			return nil, errors.New("paths cannot be empty")
		}
		// each added path counts as one conversion
		for _, path := range req.Paths {
			s.ConversionPaths = append(s.ConversionPaths, ConversionPath{Path: path, Conversions: 1})
		}
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{Status: "success", AddedCount: len(req.Paths)}, nil

	case OpRunModel:
		if req.ModelType == "" {
			return nil, errors.New("model_type is required")
		}
		credits, err := runModel(&s, req.ModelType, values.NumbersCoalesce(req.HalfLifeDays, DefaultHalfLifeDays))
		if err != nil {
			return nil, err
		}
		return &Response{ModelType: req.ModelType, Credits: credits}, nil

	case OpListPaths:
		return &Response{Paths: s.ConversionPaths}, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

// runModel distributes conversion credit over channels and returns
// per-channel percentages rounded to 2 decimals.
func runModel(s *state, modelType string, halfLifeDays int) (map[string]float64, error) {
	if len(s.ConversionPaths) == 0 {
		return nil, errors.New("no conversion paths available to analyze")
	}

	credits := make(map[string]float64)
	totalConversions := 0

	for _, item := range s.ConversionPaths {
		path := item.Path
		conversions := float64(item.Conversions)
		totalConversions += item.Conversions

		if len(path) == 0 {
			continue
		}

		switch modelType {
		case ModelFirstClick:
			credits[path[0]] += conversions
		case ModelLastClick:
			credits[path[len(path)-1]] += conversions
		case ModelLinear:
			perChannel := conversions / float64(len(path))
			for _, channel := range path {
				credits[channel] += perChannel
			}
		case ModelTimeDecay:
			// each step in the path is assumed to be one day apart
			weights := make([]float64, len(path))
			totalWeight := 0.0
			for i := range path {
				daysBefore := float64(len(path) - 1 - i)
				weights[i] = math.Exp2(-daysBefore / float64(halfLifeDays))
				totalWeight += weights[i]
			}
			if totalWeight > 0 {
				for i, channel := range path {
					credits[channel] += (weights[i] / totalWeight) * conversions
				}
			}
		default:
			return nil, errors.Errorf("unsupported model type: %s", modelType)
		}
	}

	if totalConversions == 0 {
		return map[string]float64{}, nil
	}
	for channel, credit := range credits {
		credits[channel] = math.Round(credit/float64(totalConversions)*100*100) / 100
	}
	return credits, nil
}
