package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Defnoch/finance/internal/model"
)

// GetAccountByIdentifier looks up an account by provider and account number.
// Returns nil when no such account exists.
func (s *SQLiteStorage) GetAccountByIdentifier(ctx context.Context, provider, identifier string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(provider, "provider"); err != nil {
		return nil, err
	}
	if err := validateString(identifier, "identifier"); err != nil {
		return nil, err
	}

	var account model.Account
	err := s.db.QueryRowContext(ctx, `
		SELECT id, provider, identifier, kind, created_at
		FROM accounts
		WHERE provider = ? AND identifier = ?
	`, provider, identifier).Scan(
		&account.ID,
		&account.Provider,
		&account.Identifier,
		&account.Kind,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return &account, nil
}

// CreateAccount persists a new account. The (provider, identifier) pair is
// unique; a concurrent insert of the same pair fails here.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccount(account); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (id, provider, identifier, kind, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, account.ID, account.Provider, account.Identifier, account.Kind, account.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAllAccounts returns every known account ordered by provider and
// identifier.
func (s *SQLiteStorage) GetAllAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, provider, identifier, kind, created_at
		FROM accounts
		ORDER BY provider ASC, identifier ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var account model.Account
		if err := rows.Scan(
			&account.ID,
			&account.Provider,
			&account.Identifier,
			&account.Kind,
			&account.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}
