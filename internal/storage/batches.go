package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Defnoch/finance/internal/model"
)

// SaveImportBatch persists the outcome record of one import run.
func (s *SQLiteStorage) SaveImportBatch(ctx context.Context, batch *model.ImportBatch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBatch(batch); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_batches (
			id, source_system, file_name, imported_at, status,
			total_records, inserted_records, duplicate_records, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		batch.ID,
		batch.SourceSystem,
		batch.FileName,
		batch.ImportedAt,
		batch.Status,
		batch.TotalRecords,
		batch.InsertedRecords,
		batch.DuplicateRecords,
		nullable(batch.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("failed to save import batch: %w", err)
	}
	return nil
}

// GetImportBatches returns all import batch records, newest first.
func (s *SQLiteStorage) GetImportBatches(ctx context.Context) ([]model.ImportBatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_system, file_name, imported_at, status,
			total_records, inserted_records, duplicate_records, error_message
		FROM import_batches
		ORDER BY imported_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query import batches: %w", err)
	}
	defer rows.Close()

	var batches []model.ImportBatch
	for rows.Next() {
		var (
			batch        model.ImportBatch
			errorMessage sql.NullString
		)
		if err := rows.Scan(
			&batch.ID,
			&batch.SourceSystem,
			&batch.FileName,
			&batch.ImportedAt,
			&batch.Status,
			&batch.TotalRecords,
			&batch.InsertedRecords,
			&batch.DuplicateRecords,
			&errorMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import batch: %w", err)
		}
		batch.ErrorMessage = errorMessage.String
		batches = append(batches, batch)
	}
	return batches, rows.Err()
}

// GetImportBatch retrieves one import batch record, or nil when absent.
func (s *SQLiteStorage) GetImportBatch(ctx context.Context, id string) (*model.ImportBatch, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var (
		batch        model.ImportBatch
		errorMessage sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, source_system, file_name, imported_at, status,
			total_records, inserted_records, duplicate_records, error_message
		FROM import_batches
		WHERE id = ?
	`, id).Scan(
		&batch.ID,
		&batch.SourceSystem,
		&batch.FileName,
		&batch.ImportedAt,
		&batch.Status,
		&batch.TotalRecords,
		&batch.InsertedRecords,
		&batch.DuplicateRecords,
		&errorMessage,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query import batch: %w", err)
	}
	batch.ErrorMessage = errorMessage.String
	return &batch, nil
}
