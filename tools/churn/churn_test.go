package churn_test

import (
	"context"
	"testing"

	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools/churn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Predict(t *testing.T) {
	ctx := context.Background()
	tool, err := churn.New(store.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, churn.ToolName, tool.Name())

	_, err = tool.Run(ctx, &churn.Request{Operation: churn.OpPredict})
	assert.EqualError(t, err, "customer_id is required")

	_, err = tool.Run(ctx, &churn.Request{
		Operation:  churn.OpPredict,
		CustomerID: "cust-1",
	})
	assert.EqualError(t, err, "customer_data is required")

	// engaged customer
	res, err := tool.Run(ctx, &churn.Request{
		Operation:  churn.OpPredict,
		CustomerID: "cust-1",
		CustomerData: &churn.CustomerData{
			Age:            35,
			TenureMonths:   48,
			UsageFrequency: churn.UsageHigh,
			MonthlySpend:   80,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Prediction)
	assert.Equal(t, churn.PredictionUnlikely, res.Prediction.Prediction)
	assert.LessOrEqual(t, res.Prediction.ChurnProbability, churn.ChurnThreshold)
	require.Len(t, res.Prediction.Recommendations, 1)
	assert.Contains(t, res.Prediction.Recommendations[0], "unlikely to churn")

	// short tenure, low usage, low spend, heavy support load
	res, err = tool.Run(ctx, &churn.Request{
		Operation:  churn.OpPredict,
		CustomerID: "cust-2",
		CustomerData: &churn.CustomerData{
			Age:                  25,
			TenureMonths:         3,
			UsageFrequency:       churn.UsageLow,
			MonthlySpend:         20,
			CustomerServiceCalls: 4,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, churn.PredictionLikely, res.Prediction.Prediction)
	assert.Greater(t, res.Prediction.ChurnProbability, churn.ChurnThreshold)
	// high risk, onboarding, support, and incentive recommendations
	assert.Len(t, res.Prediction.Recommendations, 4)
}

func Test_ListPredictions(t *testing.T) {
	ctx := context.Background()
	tool, err := churn.New(store.NewMemoryStore())
	require.NoError(t, err)

	for _, customerID := range []string{"cust-b", "cust-a"} {
		_, err = tool.Run(ctx, &churn.Request{
			Operation:  churn.OpPredict,
			CustomerID: customerID,
			CustomerData: &churn.CustomerData{
				TenureMonths:   24,
				UsageFrequency: churn.UsageMedium,
				MonthlySpend:   50,
			},
		})
		require.NoError(t, err)
	}

	// rescoring keeps one prediction per customer
	_, err = tool.Run(ctx, &churn.Request{
		Operation:  churn.OpPredict,
		CustomerID: "cust-a",
		CustomerData: &churn.CustomerData{
			TenureMonths:   2,
			UsageFrequency: churn.UsageLow,
			MonthlySpend:   50,
		},
	})
	require.NoError(t, err)

	res, err := tool.Run(ctx, &churn.Request{Operation: churn.OpListPredictions})
	require.NoError(t, err)
	require.Len(t, res.Predictions, 2)
	assert.Equal(t, "cust-a", res.Predictions[0].CustomerID)
	assert.InDelta(t, 0.55, res.Predictions[0].ChurnProbability, 0.0001)
	assert.Equal(t, "cust-b", res.Predictions[1].CustomerID)
}
