package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					identifier TEXT NOT NULL,
					provider TEXT NOT NULL,
					kind TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(provider, identifier)
				)`,

				`CREATE TABLE IF NOT EXISTS import_batches (
					id TEXT PRIMARY KEY,
					source_system TEXT NOT NULL,
					file_name TEXT NOT NULL,
					imported_at DATETIME NOT NULL,
					total_records INTEGER NOT NULL DEFAULT 0,
					inserted_records INTEGER NOT NULL DEFAULT 0,
					duplicate_records INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL,
					error_message TEXT
				)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					source_system TEXT NOT NULL,
					source_reference TEXT NOT NULL,
					booking_date DATETIME NOT NULL,
					value_date DATETIME,
					amount TEXT NOT NULL,
					currency TEXT NOT NULL DEFAULT 'EUR',
					resulting_balance TEXT,
					transaction_type TEXT NOT NULL DEFAULT '',
					notifications TEXT NOT NULL DEFAULT '',
					account_identifier TEXT NOT NULL DEFAULT '',
					counterparty_identifier TEXT NOT NULL DEFAULT '',
					description TEXT NOT NULL DEFAULT '',
					name TEXT NOT NULL DEFAULT '',
					raw_data TEXT NOT NULL DEFAULT '',
					category_id TEXT,
					import_batch_id TEXT NOT NULL,
					account_id TEXT,
					counterparty_account_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(source_system, source_reference)
				)`,
				`CREATE INDEX idx_transactions_booking_date ON transactions(booking_date)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id)`,
				`CREATE INDEX idx_transactions_batch ON transactions(import_batch_id)`,

				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT UNIQUE NOT NULL,
					kind TEXT NOT NULL,
					color_hex TEXT NOT NULL DEFAULT '',
					is_default BOOLEAN NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				`CREATE TABLE IF NOT EXISTS categorization_rules (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					priority INTEGER NOT NULL DEFAULT 0,
					is_enabled BOOLEAN NOT NULL DEFAULT 1,
					is_ignored BOOLEAN NOT NULL DEFAULT 0,
					category_id TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE TABLE IF NOT EXISTS rule_conditions (
					id TEXT PRIMARY KEY,
					rule_id TEXT NOT NULL REFERENCES categorization_rules(id) ON DELETE CASCADE,
					field TEXT NOT NULL,
					operator TEXT NOT NULL,
					value TEXT NOT NULL,
					position INTEGER NOT NULL DEFAULT 0
				)`,
				`CREATE INDEX idx_rule_conditions_rule ON rule_conditions(rule_id)`,

				`CREATE TABLE IF NOT EXISTS task_configs (
					id TEXT PRIMARY KEY,
					name TEXT UNIQUE NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					interval_minutes INTEGER NOT NULL DEFAULT 60,
					is_enabled BOOLEAN NOT NULL DEFAULT 1,
					last_run_at DATETIME
				)`,

				`CREATE TABLE IF NOT EXISTS task_run_logs (
					id TEXT PRIMARY KEY,
					task_config_id TEXT NOT NULL,
					started_at DATETIME,
					finished_at DATETIME,
					status TEXT,
					result_summary TEXT
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}

			// Seed the categorization task config so the scheduler has
			// something to poll on a fresh database.
			_, err := tx.Exec(`
				INSERT INTO task_configs (id, name, description, interval_minutes, is_enabled)
				VALUES (lower(hex(randomblob(16))), 'categorization', 'Assign categories to uncategorized transactions using the rule set', 60, 1)
			`)
			return err
		},
	},
	{
		Version:     2,
		Description: "Add transaction links table",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transaction_links (
					id TEXT PRIMARY KEY,
					transaction_id_1 TEXT NOT NULL REFERENCES transactions(id),
					transaction_id_2 TEXT NOT NULL REFERENCES transactions(id),
					linked_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_transaction_links_1 ON transaction_links(transaction_id_1)`,
				`CREATE INDEX idx_transaction_links_2 ON transaction_links(transaction_id_2)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Remove task run logs",
		Up: func(tx *sql.Tx) error {
			// Run history is the scheduler's concern; only last_run_at stays.
			if _, err := tx.Exec(`DROP TABLE IF EXISTS task_run_logs`); err != nil {
				return fmt.Errorf("failed to drop task_run_logs: %w", err)
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Add account fiscal year index",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS account_fiscal_years (
					account_id TEXT NOT NULL REFERENCES accounts(id),
					year INTEGER NOT NULL,
					PRIMARY KEY (account_id, year)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
