// Package marketresearch stores market research time series and
// identifies trends with a least-squares fit.
package marketresearch

import (
	"context"
	"math"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
)

const ToolName = "MarketResearchAnalyzer"

// document name in the state store
const stateDoc = "market_research_data"

const (
	OpAddDataPoints = "add_data_points"
	OpAnalyzeTrends = "analyze_trends"
	OpListData      = "list_data"
)

// DataPoint is a single dated observation for a market topic.
type DataPoint struct {
	Date    string             `json:"date" yaml:"date" jsonschema:"title=date,description=Observation date in YYYY-MM-DD format."`
	Metrics map[string]float64 `json:"metrics" yaml:"metrics" jsonschema:"title=metrics,description=Named metric values observed on the date."`
}

// Request represents the tool input.
type Request struct {
	Operation  string      `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=add_data_points,enum=analyze_trends,enum=list_data" validate:"required,oneof=add_data_points analyze_trends list_data"`
	Topic      string      `json:"topic" yaml:"topic" jsonschema:"title=topic,description=The market topic the data belongs to." validate:"required"`
	DataPoints []DataPoint `json:"data_points,omitempty" yaml:"data_points,omitempty" jsonschema:"title=data_points,description=Data points to add."`
	Metric     string      `json:"metric,omitempty" yaml:"metric,omitempty" jsonschema:"title=metric,description=The metric key to analyze."`
}

// Analysis holds the regression summary for a metric.
type Analysis struct {
	DataPointsAnalyzed int     `json:"data_points_analyzed" yaml:"data_points_analyzed"`
	RegressionSlope    float64 `json:"regression_slope" yaml:"regression_slope"`
	MinValue           float64 `json:"min_value" yaml:"min_value"`
	MaxValue           float64 `json:"max_value" yaml:"max_value"`
	AvgValue           float64 `json:"avg_value" yaml:"avg_value"`
}

// Response represents the tool output.
type Response struct {
	Status     string      `json:"status,omitempty" yaml:"status,omitempty"`
	Topic      string      `json:"topic" yaml:"topic"`
	AddedCount int         `json:"added_count,omitempty" yaml:"added_count,omitempty"`
	Metric     string      `json:"metric,omitempty" yaml:"metric,omitempty"`
	Trend      string      `json:"trend,omitempty" yaml:"trend,omitempty"`
	Analysis   *Analysis   `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	DataPoints []DataPoint `json:"data_points,omitempty" yaml:"data_points,omitempty"`
	Message    string      `json:"message,omitempty" yaml:"message,omitempty"`
}

type state struct {
	Topics map[string][]DataPoint `json:"topics"`
}

// Tool analyzes market research data to identify trends.
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
		description: "Analyzes market research data to identify trends using linear regression.",
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
	if s.Topics == nil {
		s.Topics = make(map[string][]DataPoint)
	}

	switch req.Operation {
	case OpAddDataPoints:
		return t.addDataPoints(ctx, &s, req)
	case OpAnalyzeTrends:
		return t.analyzeTrends(&s, req)
	case OpListData:
		return &Response{
			Topic:      req.Topic,
			DataPoints: s.Topics[req.Topic],
		}, nil
	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

func (t *Tool) addDataPoints(ctx context.Context, s *state, req *Request) (*Response, error) {
	if len(req.DataPoints) == 0 {
		return nil, errors.New("data points are required")
	}
	s.Topics[req.Topic] = append(s.Topics[req.Topic], req.DataPoints...)
	if err := t.store.Save(ctx, stateDoc, s); err != nil {
		return nil, err
	}
	return &Response{
		Status:     "success",
		Topic:      req.Topic,
		AddedCount: len(req.DataPoints),
	}, nil
}

func (t *Tool) analyzeTrends(s *state, req *Request) (*Response, error) {
	points, ok := s.Topics[req.Topic]
	if !ok {
		return nil, errors.Errorf("no data found for topic: %s", req.Topic)
	}
	if req.Metric == "" {
		return nil, errors.New("metric is required for trend analysis")
	}

	var xs, ys []float64
	var first time.Time
	for _, p := range points {
		val, ok := p.Metrics[req.Metric]
		if !ok {
			continue
		}
		d, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		if len(xs) == 0 {
			first = d
		}
		xs = append(xs, d.Sub(first).Hours()/24)
		ys = append(ys, val)
	}

	if len(ys) < 2 {
		return &Response{
			Status:  "not_enough_data",
			Topic:   req.Topic,
			Message: "At least 2 data points are needed for trend analysis.",
		}, nil
	}

	slope := leastSquaresSlope(xs, ys)

	trend := "stable"
	if slope > 0.05 {
		trend = "upward"
	} else if slope < -0.05 {
		trend = "downward"
	}

	minV, maxV, sum := ys[0], ys[0], 0.0
	for _, y := range ys {
		minV = math.Min(minV, y)
		maxV = math.Max(maxV, y)
		sum += y
	}

	return &Response{
		Topic:  req.Topic,
		Metric: req.Metric,
		Trend:  trend,
		Analysis: &Analysis{
			DataPointsAnalyzed: len(ys),
			RegressionSlope:    math.Round(slope*10000) / 10000,
			MinValue:           minV,
			MaxValue:           maxV,
			AvgValue:           sum / float64(len(ys)),
		},
	}, nil
}

// leastSquaresSlope fits y = slope*x + intercept and returns the slope.
func leastSquaresSlope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}
