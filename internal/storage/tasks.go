package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Defnoch/finance/internal/common"
	"github.com/Defnoch/finance/internal/model"
)

// GetTaskConfigs returns every scheduled task configuration.
func (s *SQLiteStorage) GetTaskConfigs(ctx context.Context) ([]model.TaskConfig, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, interval_minutes, is_enabled, last_run_at
		FROM task_configs
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query task configs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var configs []model.TaskConfig
	for rows.Next() {
		var (
			config    model.TaskConfig
			lastRunAt sql.NullTime
		)
		if err := rows.Scan(
			&config.ID,
			&config.Name,
			&config.Description,
			&config.IntervalMinutes,
			&config.IsEnabled,
			&lastRunAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task config: %w", err)
		}
		if lastRunAt.Valid {
			t := lastRunAt.Time
			config.LastRunAt = &t
		}
		configs = append(configs, config)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task configs: %w", err)
	}
	return configs, nil
}

// UpdateTaskLastRun records when a task last completed.
func (s *SQLiteStorage) UpdateTaskLastRun(ctx context.Context, id string, ranAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE task_configs SET last_run_at = ? WHERE id = ?
	`, ranAt, id)
	if err != nil {
		return fmt.Errorf("failed to update task last run: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check task update: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
