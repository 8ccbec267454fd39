package toolset_test

import (
	"context"
	"testing"

	"github.com/effective-security/agentools/config"
	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/toolset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewRegistry(t *testing.T) {
	reg, err := toolset.NewRegistry(store.NewMemoryStore())
	require.NoError(t, err)

	list := reg.List()
	require.Len(t, list, 12)

	expected := []string{
		"ABTestOrchestrator",
		"AssetManager",
		"AttributionModeler",
		"BackupManager",
		"ChurnPredictor",
		"MarketResearchAnalyzer",
		"MathSolver",
		"PersonalFinanceTracker",
		"RMAProcessor",
		"SyntheticDataGenerator",
		"SystemMonitor",
		"UnitConverter",
	}
	for i, tool := range list {
		assert.Equal(t, expected[i], tool.Name())
		assert.NotEmpty(t, tool.Description())
		assert.NotNil(t, tool.Parameters())
	}

	schemas := reg.Schemas()
	assert.Len(t, schemas, 12)
}

func Test_NewRegistry_Call(t *testing.T) {
	ctx := context.Background()
	reg, err := toolset.NewRegistry(store.NewMemoryStore())
	require.NoError(t, err)

	out, err := reg.Call(ctx, "UnitConverter",
		`{"operation": "convert", "value": 1, "from_unit": "km", "to_unit": "m"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"converted_value":1000`)

	// tool failures surface as an error document
	out, err = reg.Call(ctx, "UnitConverter",
		`{"operation": "convert", "value": 1, "from_unit": "kg", "to_unit": "m"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"error"`)
}

func Test_NewDispatcher(t *testing.T) {
	ctx := context.Background()
	reg, err := toolset.NewRegistry(store.NewMemoryStore())
	require.NoError(t, err)

	d, err := toolset.NewDispatcher(reg, []config.RouteConfig{
		{Prefix: "convert", Tool: "UnitConverter"},
		{Prefix: "backup", Tool: "BackupManager"},
	})
	require.NoError(t, err)
	require.Len(t, d.Routes(), 2)

	out, err := d.Dispatch(ctx, "convert 1 km to m",
		`{"operation": "convert", "value": 1, "from_unit": "km", "to_unit": "m"}`)
	require.NoError(t, err)
	assert.Contains(t, out, `"converted_value":1000`)

	_, err = toolset.NewDispatcher(reg, []config.RouteConfig{
		{Prefix: "chat", Tool: "ChatBot"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add route: chat")
}
