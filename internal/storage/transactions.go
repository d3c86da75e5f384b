package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/service"
)

const transactionColumns = `id, source_system, source_reference, booking_date, value_date,
	amount, currency, resulting_balance, transaction_type, notifications,
	account_identifier, counterparty_identifier, description, name, raw_data,
	category_id, import_batch_id, account_id, counterparty_account_id`

// SaveTransactions persists a batch of new transactions in one database
// transaction. A violation of the (source_system, source_reference)
// uniqueness constraint fails the whole batch; that constraint is the only
// cross-import race guard.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		var resultingBalance any
		if txn.ResultingBalance != nil {
			resultingBalance = txn.ResultingBalance.String()
		}

		_, err = stmt.ExecContext(ctx,
			txn.ID,
			txn.SourceSystem,
			txn.SourceReference,
			txn.BookingDate,
			txn.ValueDate,
			txn.Amount.String(),
			txn.Currency,
			resultingBalance,
			txn.TransactionType,
			txn.Notifications,
			txn.AccountIdentifier,
			txn.CounterpartyIdentifier,
			txn.Description,
			txn.Name,
			txn.RawData,
			nullable(txn.CategoryID),
			txn.ImportBatchID,
			nullable(txn.AccountID),
			nullable(txn.CounterpartyAccountID),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// TransactionExists reports whether a transaction with this dedup key has
// been persisted before.
func (s *SQLiteStorage) TransactionExists(ctx context.Context, sourceSystem, sourceReference string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(sourceSystem, "sourceSystem"); err != nil {
		return false, err
	}
	if err := validateString(sourceReference, "sourceReference"); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM transactions
		WHERE source_system = ? AND source_reference = ?
	`, sourceSystem, sourceReference).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check transaction existence: %w", err)
	}
	return count > 0, nil
}

// DeleteTransactionsBySource removes all transactions of one source system
// restricted to one account identifier. Used for override re-imports.
func (s *SQLiteStorage) DeleteTransactionsBySource(ctx context.Context, sourceSystem, accountIdentifier string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(sourceSystem, "sourceSystem"); err != nil {
		return 0, err
	}
	if err := validateString(accountIdentifier, "accountIdentifier"); err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM transactions
		WHERE source_system = ? AND account_identifier = ?
	`, sourceSystem, accountIdentifier)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted transactions: %w", err)
	}

	slog.Debug("deleted transactions for override import",
		"source_system", sourceSystem,
		"account", accountIdentifier,
		"count", deleted)
	return deleted, nil
}

// GetTransactionByID retrieves a transaction by its identifier.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = ?
	`, id)
	txn, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetTransactionsByBatch returns all transactions of one import batch in
// booking-date order.
func (s *SQLiteStorage) GetTransactionsByBatch(ctx context.Context, batchID string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(batchID, "batchID"); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE import_batch_id = ?
		ORDER BY booking_date ASC, id ASC
	`, batchID)
}

// GetTransactionsBySourceSystem returns all transactions of one source system.
func (s *SQLiteStorage) GetTransactionsBySourceSystem(ctx context.Context, sourceSystem string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(sourceSystem, "sourceSystem"); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE source_system = ?
		ORDER BY booking_date ASC, id ASC
	`, sourceSystem)
}

// GetAllTransactions returns every persisted transaction. The transfer
// linker compares new transactions against this global set.
func (s *SQLiteStorage) GetAllTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		ORDER BY booking_date ASC, id ASC
	`)
}

// GetUncategorizedTransactions returns transactions without a category, the
// input set of the categorization batch pass.
func (s *SQLiteStorage) GetUncategorizedTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE category_id IS NULL
		ORDER BY booking_date ASC, id ASC
	`)
}

// AssignCategory sets the category of a single transaction.
func (s *SQLiteStorage) AssignCategory(ctx context.Context, transactionID, categoryID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}
	if err := validateString(categoryID, "categoryID"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET category_id = ? WHERE id = ?
	`, categoryID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to assign category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check assignment: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %s not found", transactionID)
	}
	return nil
}

// AssignCategories applies a batch of category assignments in one database
// transaction.
func (s *SQLiteStorage) AssignCategories(ctx context.Context, assignments []service.CategoryAssignment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(assignments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `UPDATE transactions SET category_id = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, a.CategoryID, a.TransactionID); err != nil {
			return fmt.Errorf("failed to assign category to %s: %w", a.TransactionID, err)
		}
	}

	return tx.Commit()
}

// UnassignCategory clears the category of a single transaction.
func (s *SQLiteStorage) UnassignCategory(ctx context.Context, transactionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET category_id = NULL WHERE id = ?
	`, transactionID); err != nil {
		return fmt.Errorf("failed to unassign category: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return transactions, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(sc scanner) (*model.Transaction, error) {
	var (
		txn              model.Transaction
		valueDate        sql.NullTime
		amount           string
		resultingBalance sql.NullString
		categoryID       sql.NullString
		accountID        sql.NullString
		counterpartyID   sql.NullString
	)

	if err := sc.Scan(
		&txn.ID,
		&txn.SourceSystem,
		&txn.SourceReference,
		&txn.BookingDate,
		&valueDate,
		&amount,
		&txn.Currency,
		&resultingBalance,
		&txn.TransactionType,
		&txn.Notifications,
		&txn.AccountIdentifier,
		&txn.CounterpartyIdentifier,
		&txn.Description,
		&txn.Name,
		&txn.RawData,
		&categoryID,
		&txn.ImportBatchID,
		&accountID,
		&counterpartyID,
	); err != nil {
		return nil, err
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
	}
	txn.Amount = parsed

	if valueDate.Valid {
		vd := valueDate.Time
		txn.ValueDate = &vd
	}
	if resultingBalance.Valid && resultingBalance.String != "" {
		rb, rbErr := decimal.NewFromString(resultingBalance.String)
		if rbErr != nil {
			return nil, fmt.Errorf("invalid stored balance %q: %w", resultingBalance.String, rbErr)
		}
		txn.ResultingBalance = &rb
	}
	txn.CategoryID = categoryID.String
	txn.AccountID = accountID.String
	txn.CounterpartyAccountID = counterpartyID.String

	return &txn, nil
}

// nullable maps an empty string onto SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
