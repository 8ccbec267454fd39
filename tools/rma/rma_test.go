package rma_test

import (
	"context"
	"testing"

	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools/rma"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(t *testing.T, tool *rma.Tool) *rma.Record {
	t.Helper()
	res, err := tool.Run(context.Background(), &rma.Request{
		Operation: rma.OpCreate,
		OrderID:   "ORD-77",
		ProductID: "SKU-123",
		Reason:    "arrived damaged",
	})
	require.NoError(t, err)
	require.NotNil(t, res.RMA)
	return res.RMA
}

func Test_Create(t *testing.T) {
	ctx := context.Background()
	tool, err := rma.New(store.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, rma.ToolName, tool.Name())

	rec := create(t, tool)
	assert.Equal(t, "RMA-0001", rec.RMAID)
	assert.Equal(t, rma.StatusPending, rec.Status)

	rec2 := create(t, tool)
	assert.Equal(t, "RMA-0002", rec2.RMAID)

	_, err = tool.Run(ctx, &rma.Request{
		Operation: rma.OpCreate,
		OrderID:   "ORD-77",
	})
	assert.EqualError(t, err, "order_id, product_id and reason are required")
}

func Test_TrackStatus(t *testing.T) {
	ctx := context.Background()
	tool, err := rma.New(store.NewMemoryStore())
	require.NoError(t, err)
	rec := create(t, tool)

	res, err := tool.Run(ctx, &rma.Request{
		Operation: rma.OpTrackStatus,
		RMAID:     rec.RMAID,
	})
	require.NoError(t, err)
	assert.Equal(t, rma.StatusPending, res.RMA.Status)

	_, err = tool.Run(ctx, &rma.Request{
		Operation: rma.OpTrackStatus,
		RMAID:     "RMA-9999",
	})
	assert.EqualError(t, err, "RMA not found: RMA-9999")
}

func Test_ProcessReturn(t *testing.T) {
	ctx := context.Background()
	tool, err := rma.New(store.NewMemoryStore())
	require.NoError(t, err)

	approve := true
	reject := false

	rec := create(t, tool)
	_, err = tool.Run(ctx, &rma.Request{
		Operation: rma.OpProcessReturn,
		RMAID:     rec.RMAID,
	})
	assert.EqualError(t, err, "approve is required")

	res, err := tool.Run(ctx, &rma.Request{
		Operation:  rma.OpProcessReturn,
		RMAID:      rec.RMAID,
		Approve:    &approve,
		Resolution: rma.ResolutionRefund,
	})
	require.NoError(t, err)
	assert.Equal(t, rma.StatusRefunded, res.RMA.Status)
	assert.Equal(t, rma.ResolutionRefund, res.RMA.Resolution)

	// already settled
	_, err = tool.Run(ctx, &rma.Request{
		Operation: rma.OpProcessReturn,
		RMAID:     rec.RMAID,
		Approve:   &approve,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RMA already processed")

	rec = create(t, tool)
	res, err = tool.Run(ctx, &rma.Request{
		Operation:  rma.OpProcessReturn,
		RMAID:      rec.RMAID,
		Approve:    &approve,
		Resolution: rma.ResolutionReplacement,
	})
	require.NoError(t, err)
	assert.Equal(t, rma.StatusReplaced, res.RMA.Status)

	rec = create(t, tool)
	res, err = tool.Run(ctx, &rma.Request{
		Operation: rma.OpProcessReturn,
		RMAID:     rec.RMAID,
		Approve:   &approve,
	})
	require.NoError(t, err)
	assert.Equal(t, rma.StatusApproved, res.RMA.Status)

	rec = create(t, tool)
	res, err = tool.Run(ctx, &rma.Request{
		Operation: rma.OpProcessReturn,
		RMAID:     rec.RMAID,
		Approve:   &reject,
	})
	require.NoError(t, err)
	assert.Equal(t, rma.StatusRejected, res.RMA.Status)
}

func Test_ProcessReturn_UnknownResolution(t *testing.T) {
	ctx := context.Background()
	tool, err := rma.New(store.NewMemoryStore())
	require.NoError(t, err)

	approve := true
	rec := create(t, tool)
	_, err = tool.Run(ctx, &rma.Request{
		Operation:  rma.OpProcessReturn,
		RMAID:      rec.RMAID,
		Approve:    &approve,
		Resolution: "store_credit",
	})
	assert.EqualError(t, err, "unsupported resolution: store_credit")

	// the record is untouched and can still be settled
	res, err := tool.Run(ctx, &rma.Request{
		Operation: rma.OpTrackStatus,
		RMAID:     rec.RMAID,
	})
	require.NoError(t, err)
	assert.Equal(t, rma.StatusPending, res.RMA.Status)
	assert.Empty(t, res.RMA.Resolution)

	res, err = tool.Run(ctx, &rma.Request{
		Operation:  rma.OpProcessReturn,
		RMAID:      rec.RMAID,
		Approve:    &approve,
		Resolution: rma.ResolutionRefund,
	})
	require.NoError(t, err)
	assert.Equal(t, rma.StatusRefunded, res.RMA.Status)
}

func Test_List(t *testing.T) {
	ctx := context.Background()
	tool, err := rma.New(store.NewMemoryStore())
	require.NoError(t, err)

	rec1 := create(t, tool)
	create(t, tool)

	approve := true
	_, err = tool.Run(ctx, &rma.Request{
		Operation:  rma.OpProcessReturn,
		RMAID:      rec1.RMAID,
		Approve:    &approve,
		Resolution: rma.ResolutionRefund,
	})
	require.NoError(t, err)

	res, err := tool.Run(ctx, &rma.Request{Operation: rma.OpList})
	require.NoError(t, err)
	assert.Len(t, res.RMAs, 2)
	assert.Equal(t, "RMA-0001", res.RMAs[0].RMAID)

	res, err = tool.Run(ctx, &rma.Request{
		Operation: rma.OpList,
		Status:    rma.StatusPending,
	})
	require.NoError(t, err)
	require.Len(t, res.RMAs, 1)
	assert.Equal(t, "RMA-0002", res.RMAs[0].RMAID)
}
