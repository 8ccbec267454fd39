package synthdata_test

import (
	"context"
	"testing"

	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools/synthdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Generate(t *testing.T) {
	ctx := context.Background()
	tool, err := synthdata.New(store.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, synthdata.ToolName, tool.Name())

	res, err := tool.Run(ctx, &synthdata.Request{
		Operation: synthdata.OpGenerate,
		Fields: map[string]string{
			"customer": "name",
			"contact":  "email",
			"signup":   "date",
			"active":   "bool",
		},
		Count: 5,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Generation)
	assert.Equal(t, 5, res.Generation.Count)
	require.Len(t, res.Records, 5)
	for _, record := range res.Records {
		assert.NotEmpty(t, record["customer"])
		assert.Contains(t, record["contact"], "@")
		assert.NotEmpty(t, record["signup"])
		assert.Contains(t, record, "active")
	}
}

func Test_Generate_DefaultsAndErrors(t *testing.T) {
	ctx := context.Background()
	tool, err := synthdata.New(store.NewMemoryStore())
	require.NoError(t, err)

	// default count
	res, err := tool.Run(ctx, &synthdata.Request{
		Operation: synthdata.OpGenerate,
		Fields:    map[string]string{"id": "uuid"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Records, 10)

	_, err = tool.Run(ctx, &synthdata.Request{
		Operation: synthdata.OpGenerate,
	})
	assert.EqualError(t, err, "fields is required")

	_, err = tool.Run(ctx, &synthdata.Request{
		Operation: synthdata.OpGenerate,
		Fields:    map[string]string{"id": "quaternion"},
	})
	assert.EqualError(t, err, "unknown kind for field id: quaternion")
}

func Test_Generate_Seeded(t *testing.T) {
	ctx := context.Background()
	tool, err := synthdata.New(store.NewMemoryStore())
	require.NoError(t, err)

	req := &synthdata.Request{
		Operation: synthdata.OpGenerate,
		Fields:    map[string]string{"customer": "name", "n": "int"},
		Count:     3,
		Seed:      11,
	}
	res1, err := tool.Run(ctx, req)
	require.NoError(t, err)
	res2, err := tool.Run(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, res1.Records, res2.Records)
}

func Test_ListKindsAndGenerations(t *testing.T) {
	ctx := context.Background()
	tool, err := synthdata.New(store.NewMemoryStore())
	require.NoError(t, err)

	res, err := tool.Run(ctx, &synthdata.Request{Operation: synthdata.OpListKinds})
	require.NoError(t, err)
	assert.Contains(t, res.Kinds, "name")
	assert.Contains(t, res.Kinds, "email")
	assert.Contains(t, res.Kinds, "uuid")

	res, err = tool.Run(ctx, &synthdata.Request{Operation: synthdata.OpListGenerations})
	require.NoError(t, err)
	assert.Empty(t, res.Generations)

	_, err = tool.Run(ctx, &synthdata.Request{
		Operation: synthdata.OpGenerate,
		Fields:    map[string]string{"id": "uuid"},
		Count:     2,
	})
	require.NoError(t, err)

	res, err = tool.Run(ctx, &synthdata.Request{Operation: synthdata.OpListGenerations})
	require.NoError(t, err)
	require.Len(t, res.Generations, 1)
	assert.Equal(t, 2, res.Generations[0].Count)
	assert.NotEmpty(t, res.Generations[0].GenerationID)
}
