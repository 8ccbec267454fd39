// Package abtest orchestrates simulated A/B tests: definitions, user
// bucketing, conversion tracking, and a chi-squared significance check.
package abtest

import (
	"context"
	"math"
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
)

const ToolName = "ABTestOrchestrator"

const stateDoc = "ab_tests"

const (
	OpCreate           = "create_test"
	OpStart            = "start_test"
	OpAllocateUser     = "allocate_user"
	OpRecordConversion = "record_conversion"
	OpResults          = "get_results"
)

// SignificanceLevel is the alpha used for the chi-squared test.
const SignificanceLevel = 0.05

// VariationStats tracks allocation and conversion counts per variation.
type VariationStats struct {
	Users       int `json:"users" yaml:"users"`
	Conversions int `json:"conversions" yaml:"conversions"`
}

// TestDefinition is a stored A/B test.
type TestDefinition struct {
	Variations    []string                  `json:"variations" yaml:"variations"`
	Stats         map[string]VariationStats `json:"stats" yaml:"stats"`
	SuccessMetric string                    `json:"success_metric" yaml:"success_metric"`
	IsRunning     bool                      `json:"is_running" yaml:"is_running"`
}

// Request represents the tool input.
type Request struct {
	Operation     string   `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=create_test,enum=start_test,enum=allocate_user,enum=record_conversion,enum=get_results" validate:"required,oneof=create_test start_test allocate_user record_conversion get_results"`
	TestID        string   `json:"test_id" yaml:"test_id" jsonschema:"title=test_id,description=A unique identifier for the A/B test." validate:"required"`
	Variations    []string `json:"variations,omitempty" yaml:"variations,omitempty" jsonschema:"title=variations,description=Variation names; at least two are required (e.g. control and variant_a)."`
	SuccessMetric string   `json:"success_metric,omitempty" yaml:"success_metric,omitempty" jsonschema:"title=success_metric,description=The metric to measure success (e.g. conversion_rate)."`
	UserID        string   `json:"user_id,omitempty" yaml:"user_id,omitempty" jsonschema:"title=user_id,description=The user to allocate or record a conversion for."`
}

// VariationResult is the reported outcome for one variation.
type VariationResult struct {
	Variation      string  `json:"variation" yaml:"variation"`
	Users          int     `json:"users" yaml:"users"`
	Conversions    int     `json:"conversions" yaml:"conversions"`
	ConversionRate float64 `json:"conversion_rate" yaml:"conversion_rate"`
}

// Significance is the chi-squared test outcome.
type Significance struct {
	ChiSquared    float64 `json:"chi_squared" yaml:"chi_squared"`
	PValue        float64 `json:"p_value" yaml:"p_value"`
	IsSignificant bool    `json:"is_significant" yaml:"is_significant"`
}

// Response represents the tool output.
type Response struct {
	Message      string            `json:"message,omitempty" yaml:"message,omitempty"`
	TestID       string            `json:"test_id" yaml:"test_id"`
	Variation    string            `json:"variation,omitempty" yaml:"variation,omitempty"`
	Results      []VariationResult `json:"results,omitempty" yaml:"results,omitempty"`
	Winner       string            `json:"winner,omitempty" yaml:"winner,omitempty"`
	Significance *Significance     `json:"significance,omitempty" yaml:"significance,omitempty"`
}

type state struct {
	Tests map[string]TestDefinition `json:"tests"`
}

// Tool manages A/B test lifecycles.
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
		description: "Orchestrates A/B tests: create and start tests, allocate users, record conversions, and report results with statistical significance.",
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

// allocate buckets a user deterministically, so repeated calls for the
// same user always land on the same variation.
func allocate(test *TestDefinition, userID string) string {
	idx := xxhash.Sum64String(userID) % uint64(len(test.Variations))
	return test.Variations[idx]
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Response, error) {
	var s state
	if _, err := t.store.Load(ctx, stateDoc, &s); err != nil {
		return nil, err
	}
	if s.Tests == nil {
		s.Tests = make(map[string]TestDefinition)
	}

	switch req.Operation {
	case OpCreate:
		if _, ok := s.Tests[req.TestID]; ok {
			return nil, errors.Errorf("test already exists: %s", req.TestID)
		}
		if len(req.Variations) < 2 {
			return nil, errors.New("at least two variations are required")
		}
		test := TestDefinition{
			Variations:    req.Variations,
			Stats:         make(map[string]VariationStats, len(req.Variations)),
			SuccessMetric: req.SuccessMetric,
		}
		for _, v := range req.Variations {
			test.Stats[v] = VariationStats{}
		}
		s.Tests[req.TestID] = test
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{TestID: req.TestID, Message: "test created"}, nil

	case OpStart:
		test, ok := s.Tests[req.TestID]
		if !ok {
			return nil, errors.Errorf("test not found: %s", req.TestID)
		}
		if test.IsRunning {
			return &Response{TestID: req.TestID, Message: "test is already running"}, nil
		}
		test.IsRunning = true
		s.Tests[req.TestID] = test
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{TestID: req.TestID, Message: "test started"}, nil

	case OpAllocateUser:
		test, ok := s.Tests[req.TestID]
		if !ok {
			return nil, errors.Errorf("test not found: %s", req.TestID)
		}
		if !test.IsRunning {
			return nil, errors.Errorf("test is not running: %s", req.TestID)
		}
		if req.UserID == "" {
			return nil, errors.New("user_id is required")
		}
		variation := allocate(&test, req.UserID)
		stats := test.Stats[variation]
		stats.Users++
		test.Stats[variation] = stats
		s.Tests[req.TestID] = test
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{TestID: req.TestID, Variation: variation}, nil

	case OpRecordConversion:
		test, ok := s.Tests[req.TestID]
		if !ok {
			return nil, errors.Errorf("test not found: %s", req.TestID)
		}
		if req.UserID == "" {
			return nil, errors.New("user_id is required")
		}
		variation := allocate(&test, req.UserID)
		stats := test.Stats[variation]
		stats.Conversions++
		test.Stats[variation] = stats
		s.Tests[req.TestID] = test
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{TestID: req.TestID, Variation: variation, Message: "conversion recorded"}, nil

	case OpResults:
		test, ok := s.Tests[req.TestID]
		if !ok {
			return nil, errors.Errorf("test not found: %s", req.TestID)
		}
		return results(req.TestID, &test), nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

func results(testID string, test *TestDefinition) *Response {
	res := &Response{TestID: testID}

	var table [][2]float64
	winnerRate := -1.0
	for _, variation := range test.Variations {
		stats := test.Stats[variation]
		rate := 0.0
		if stats.Users > 0 {
			rate = float64(stats.Conversions) / float64(stats.Users) * 100
		}
		res.Results = append(res.Results, VariationResult{
			Variation:      variation,
			Users:          stats.Users,
			Conversions:    stats.Conversions,
			ConversionRate: math.Round(rate*100) / 100,
		})
		if rate > winnerRate {
			winnerRate = rate
			res.Winner = variation
		}
		table = append(table, [2]float64{
			float64(stats.Conversions),
			float64(stats.Users - stats.Conversions),
		})
	}

	if chi2, pValue, ok := chiSquared(table); ok {
		res.Significance = &Significance{
			ChiSquared:    chi2,
			PValue:        pValue,
			IsSignificant: pValue < SignificanceLevel,
		}
	}
	return res
}
