package storage

import (
	"context"
	"fmt"

	"github.com/Defnoch/finance/internal/model"
)

// LinkExists reports whether the two transactions are already linked, in
// either direction.
func (s *SQLiteStorage) LinkExists(ctx context.Context, transactionID1, transactionID2 string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(transactionID1, "transactionID1"); err != nil {
		return false, err
	}
	if err := validateString(transactionID2, "transactionID2"); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM transaction_links
		WHERE (transaction_id_1 = ? AND transaction_id_2 = ?)
		   OR (transaction_id_1 = ? AND transaction_id_2 = ?)
	`, transactionID1, transactionID2, transactionID2, transactionID1).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check link existence: %w", err)
	}
	return count > 0, nil
}

// SaveTransactionLink persists a transfer link between two transactions.
func (s *SQLiteStorage) SaveTransactionLink(ctx context.Context, link *model.TransactionLink) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateLink(link); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transaction_links (id, transaction_id_1, transaction_id_2, linked_at)
		VALUES (?, ?, ?, ?)
	`, link.ID, link.TransactionID1, link.TransactionID2, link.LinkedAt)
	if err != nil {
		return fmt.Errorf("failed to save transaction link: %w", err)
	}
	return nil
}

// GetLinksForTransaction returns every link the transaction participates in,
// on either side.
func (s *SQLiteStorage) GetLinksForTransaction(ctx context.Context, transactionID string) ([]model.TransactionLink, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id_1, transaction_id_2, linked_at
		FROM transaction_links
		WHERE transaction_id_1 = ? OR transaction_id_2 = ?
		ORDER BY linked_at ASC
	`, transactionID, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction links: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var links []model.TransactionLink
	for rows.Next() {
		var link model.TransactionLink
		if err := rows.Scan(&link.ID, &link.TransactionID1, &link.TransactionID2, &link.LinkedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction links: %w", err)
	}
	return links, nil
}
