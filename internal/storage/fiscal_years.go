package storage

import (
	"context"
	"fmt"

	"github.com/Defnoch/finance/internal/model"
)

// GetFiscalYears returns the years already registered for an account.
func (s *SQLiteStorage) GetFiscalYears(ctx context.Context, accountID string) ([]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(accountID, "accountID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT year FROM account_fiscal_years
		WHERE account_id = ?
		ORDER BY year ASC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fiscal years: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var years []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("failed to scan fiscal year: %w", err)
		}
		years = append(years, year)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fiscal years: %w", err)
	}
	return years, nil
}

// AddFiscalYears registers account/year pairs, ignoring ones that already
// exist. Concurrent imports of the same account may race on the same year;
// INSERT OR IGNORE makes the registration idempotent.
func (s *SQLiteStorage) AddFiscalYears(ctx context.Context, fiscalYears []model.AccountFiscalYear) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(fiscalYears) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO account_fiscal_years (account_id, year) VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, fy := range fiscalYears {
		if err := validateString(fy.AccountID, "accountID"); err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, fy.AccountID, fy.Year); err != nil {
			return fmt.Errorf("failed to add fiscal year %d: %w", fy.Year, err)
		}
	}

	return tx.Commit()
}
