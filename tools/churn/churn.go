// Package churn estimates customer churn risk from engagement features
// using a weighted heuristic model and suggests retention actions.
package churn

import (
	"context"
	"math"
	"reflect"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentools/schema"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools"
)

const ToolName = "ChurnPredictor"

const stateDoc = "churn_predictions"

const (
	OpPredict         = "predict"
	OpListPredictions = "list_predictions"
)

const (
	UsageLow    = "low"
	UsageMedium = "medium"
	UsageHigh   = "high"
)

const (
	PredictionLikely   = "likely to churn"
	PredictionUnlikely = "unlikely to churn"
)

// ChurnThreshold separates the likely and unlikely predictions.
const ChurnThreshold = 0.5

// CustomerData holds the features the model scores.
type CustomerData struct {
	Age                  int     `json:"age" yaml:"age" jsonschema:"title=age,description=Customer age in years." validate:"omitempty,gte=0,lte=120"`
	TenureMonths         int     `json:"tenure_months" yaml:"tenure_months" jsonschema:"title=tenure_months,description=Months since the customer signed up." validate:"omitempty,gte=0"`
	UsageFrequency       string  `json:"usage_frequency" yaml:"usage_frequency" jsonschema:"title=usage_frequency,description=Product usage level.,enum=low,enum=medium,enum=high" validate:"omitempty,oneof=low medium high"`
	MonthlySpend         float64 `json:"monthly_spend" yaml:"monthly_spend" jsonschema:"title=monthly_spend,description=Average monthly spend." validate:"omitempty,gte=0"`
	CustomerServiceCalls int     `json:"customer_service_calls" yaml:"customer_service_calls" jsonschema:"title=customer_service_calls,description=Recent customer service calls." validate:"omitempty,gte=0"`
}

// Request represents the tool input.
type Request struct {
	Operation    string        `json:"operation" yaml:"operation" jsonschema:"title=operation,description=The operation to perform.,enum=predict,enum=list_predictions" validate:"required,oneof=predict list_predictions"`
	CustomerID   string        `json:"customer_id,omitempty" yaml:"customer_id,omitempty" jsonschema:"title=customer_id,description=The customer to score."`
	CustomerData *CustomerData `json:"customer_data,omitempty" yaml:"customer_data,omitempty" jsonschema:"title=customer_data,description=Customer features to score."`
}

// Prediction is a scored churn estimate for one customer.
type Prediction struct {
	CustomerID       string       `json:"customer_id" yaml:"customer_id"`
	CustomerData     CustomerData `json:"customer_data" yaml:"customer_data"`
	ChurnProbability float64      `json:"churn_probability" yaml:"churn_probability"`
	Prediction       string       `json:"prediction" yaml:"prediction"`
	Recommendations  []string     `json:"recommendations" yaml:"recommendations"`
	PredictedAt      string       `json:"predicted_at" yaml:"predicted_at"`
}

// Response represents the tool output.
type Response struct {
	Prediction  *Prediction  `json:"prediction,omitempty" yaml:"prediction,omitempty"`
	Predictions []Prediction `json:"predictions,omitempty" yaml:"predictions,omitempty"`
}

type state struct {
	Predictions map[string]Prediction `json:"predictions"`
}

// Tool scores churn risk and keeps the latest prediction per customer.
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
		description: "Predicts customer churn from age, tenure, usage frequency, spend, and support load, and returns a probability, prediction, and retention recommendations.",
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
	if s.Predictions == nil {
		s.Predictions = make(map[string]Prediction)
	}

	switch req.Operation {
	case OpPredict:
		if req.CustomerID == "" {
			return nil, errors.New("customer_id is required")
		}
		if req.CustomerData == nil {
			return nil, errors.New("customer_data is required")
		}
		p := predict(req.CustomerID, req.CustomerData)
		s.Predictions[req.CustomerID] = *p
		if err := t.store.Save(ctx, stateDoc, &s); err != nil {
			return nil, err
		}
		return &Response{Prediction: p}, nil

	case OpListPredictions:
		list := make([]Prediction, 0, len(s.Predictions))
		for _, p := range s.Predictions {
			list = append(list, p)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].CustomerID < list[j].CustomerID })
		return &Response{Predictions: list}, nil

	default:
		return nil, errors.Errorf("unsupported operation: %s", req.Operation)
	}
}

// predict scores the churn drivers: short tenure with low usage,
// low spend with a heavy support load, and high age each add risk.
func predict(customerID string, data *CustomerData) *Prediction {
	probability := 0.1

	if data.TenureMonths < 12 && data.UsageFrequency == UsageLow {
		probability += 0.45
	} else if data.UsageFrequency == UsageLow {
		probability += 0.15
	}
	if data.MonthlySpend < 30 && data.CustomerServiceCalls > 2 {
		probability += 0.35
	} else if data.CustomerServiceCalls > 2 {
		probability += 0.15
	}
	if data.Age > 60 {
		probability += 0.1
	}
	probability = math.Min(probability, 0.99)
	probability = math.Round(probability*100) / 100

	prediction := PredictionUnlikely
	if probability > ChurnThreshold {
		prediction = PredictionLikely
	}

	var recommendations []string
	if prediction == PredictionLikely {
		recommendations = append(recommendations,
			"Customer is at high risk of churn. Consider proactive outreach with personalized offers or support.")
		if data.TenureMonths < 12 {
			recommendations = append(recommendations,
				"Focus on improving early customer experience and onboarding to build loyalty.")
		}
		if data.CustomerServiceCalls > 2 {
			recommendations = append(recommendations,
				"Investigate recent customer service interactions for unresolved issues or recurring problems.")
		}
		if data.MonthlySpend < 40 {
			recommendations = append(recommendations,
				"Consider offering incentives or discounts to increase engagement and perceived value.")
		}
	} else {
		recommendations = append(recommendations,
			"Customer is currently unlikely to churn. Continue to monitor engagement and satisfaction to maintain loyalty.")
	}

	return &Prediction{
		CustomerID:       customerID,
		CustomerData:     *data,
		ChurnProbability: probability,
		Prediction:       prediction,
		Recommendations:  recommendations,
		PredictedAt:      time.Now().Format(time.RFC3339),
	}
}
