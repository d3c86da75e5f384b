package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Defnoch/finance/internal/common"
	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/testutil"
)

func TestMigrationsSeedCategorizationTask(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	configs, err := db.Storage.GetTaskConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)

	task := configs[0]
	assert.Equal(t, "categorization", task.Name)
	assert.Equal(t, 60, task.IntervalMinutes)
	assert.True(t, task.IsEnabled)
	assert.Nil(t, task.LastRunAt)
	assert.True(t, task.Due(time.Now()), "never-run task is due")
}

func TestUpdateTaskLastRun(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	configs, err := db.Storage.GetTaskConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	task := configs[0]

	ranAt := time.Date(2023, 8, 1, 9, 30, 0, 0, time.UTC)
	require.NoError(t, db.Storage.UpdateTaskLastRun(ctx, task.ID, ranAt))

	configs, err = db.Storage.GetTaskConfigs(ctx)
	require.NoError(t, err)
	require.NotNil(t, configs[0].LastRunAt)
	assert.True(t, configs[0].LastRunAt.Equal(ranAt))

	assert.False(t, configs[0].Due(ranAt.Add(30*time.Minute)))
	assert.True(t, configs[0].Due(ranAt.Add(2*time.Hour)))
}

func TestUpdateTaskLastRunMissing(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	err := db.Storage.UpdateTaskLastRun(ctx, "no-such-task", time.Now())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTaskDueRespectsEnabledFlag(t *testing.T) {
	task := model.TaskConfig{Name: "categorization", IntervalMinutes: 60, IsEnabled: false}
	assert.False(t, task.Due(time.Now()))
}
