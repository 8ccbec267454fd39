package backup_test

import (
	"context"
	"strings"
	"testing"

	"github.com/effective-security/agentools/store"
	"github.com/effective-security/agentools/tools/backup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CreateAndRestore(t *testing.T) {
	ctx := context.Background()
	tool, err := backup.New(store.NewMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, backup.ToolName, tool.Name())

	res, err := tool.Run(ctx, &backup.Request{
		Operation: backup.OpCreate,
		Source:    "orders_db",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Backup)
	assert.True(t, strings.HasPrefix(res.Backup.BackupID, "backup_"))
	assert.True(t, strings.HasSuffix(res.Backup.BackupID, "_001"))
	assert.GreaterOrEqual(t, res.Backup.SizeMB, 100)
	assert.Less(t, res.Backup.SizeMB, 5000)

	res2, err := tool.Run(ctx, &backup.Request{
		Operation: backup.OpCreate,
		Source:    "orders_db",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res2.Backup.BackupID, "_002"))

	restored, err := tool.Run(ctx, &backup.Request{
		Operation: backup.OpRestore,
		BackupID:  res.Backup.BackupID,
	})
	require.NoError(t, err)
	assert.Contains(t, restored.Message, "restored orders_db")

	_, err = tool.Run(ctx, &backup.Request{
		Operation: backup.OpRestore,
		BackupID:  "backup_nope",
	})
	assert.EqualError(t, err, "backup not found: backup_nope")

	_, err = tool.Run(ctx, &backup.Request{Operation: backup.OpCreate})
	assert.EqualError(t, err, "source is required")
}

func Test_Schedule(t *testing.T) {
	ctx := context.Background()
	tool, err := backup.New(store.NewMemoryStore())
	require.NoError(t, err)

	res, err := tool.Run(ctx, &backup.Request{
		Operation: backup.OpSchedule,
		Source:    "orders_db",
		Frequency: backup.FrequencyDaily,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Schedule)
	assert.Equal(t, backup.FrequencyDaily, res.Schedule.Frequency)

	// rescheduling replaces the previous schedule
	res, err = tool.Run(ctx, &backup.Request{
		Operation: backup.OpSchedule,
		Source:    "orders_db",
		Frequency: backup.FrequencyWeekly,
	})
	require.NoError(t, err)
	assert.Equal(t, backup.FrequencyWeekly, res.Schedule.Frequency)

	_, err = tool.Run(ctx, &backup.Request{
		Operation: backup.OpSchedule,
		Source:    "orders_db",
	})
	assert.EqualError(t, err, "frequency is required")
}

func Test_List(t *testing.T) {
	ctx := context.Background()
	tool, err := backup.New(store.NewMemoryStore())
	require.NoError(t, err)

	for _, source := range []string{"orders_db", "users_db"} {
		_, err = tool.Run(ctx, &backup.Request{
			Operation: backup.OpCreate,
			Source:    source,
		})
		require.NoError(t, err)
	}
	_, err = tool.Run(ctx, &backup.Request{
		Operation: backup.OpSchedule,
		Source:    "users_db",
		Frequency: backup.FrequencyMonthly,
	})
	require.NoError(t, err)

	res, err := tool.Run(ctx, &backup.Request{Operation: backup.OpList})
	require.NoError(t, err)
	assert.Len(t, res.Backups, 2)
	assert.Len(t, res.Schedules, 1)

	res, err = tool.Run(ctx, &backup.Request{
		Operation: backup.OpList,
		Source:    "users_db",
	})
	require.NoError(t, err)
	require.Len(t, res.Backups, 1)
	assert.Equal(t, "users_db", res.Backups[0].Source)
	require.Len(t, res.Schedules, 1)
}
