// Package storage provides the data persistence layer for the finance application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Defnoch/finance/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidBatch       = errors.New("invalid import batch")
	ErrInvalidLink        = errors.New("invalid transaction link")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidRule        = errors.New("invalid categorization rule")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.SourceSystem == "" {
		return fmt.Errorf("%w: missing source system", ErrInvalidTransaction)
	}
	if txn.SourceReference == "" {
		return fmt.Errorf("%w: missing source reference", ErrInvalidTransaction)
	}
	if txn.BookingDate.IsZero() {
		return fmt.Errorf("%w: missing booking date", ErrInvalidTransaction)
	}
	return nil
}

// validateAccount validates an account.
func validateAccount(account *model.Account) error {
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if account.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Identifier) == "" {
		return fmt.Errorf("%w: missing identifier", ErrInvalidAccount)
	}
	if strings.TrimSpace(account.Provider) == "" {
		return fmt.Errorf("%w: missing provider", ErrInvalidAccount)
	}
	switch account.Kind {
	case model.AccountKindNormal, model.AccountKindSavings:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAccount, account.Kind)
	}
	return nil
}

// validateBatch validates an import batch.
func validateBatch(batch *model.ImportBatch) error {
	if batch == nil {
		return fmt.Errorf("%w: batch", ErrNilParameter)
	}
	if batch.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidBatch)
	}
	if batch.SourceSystem == "" {
		return fmt.Errorf("%w: missing source system", ErrInvalidBatch)
	}
	return nil
}

// validateLink validates a transaction link.
func validateLink(link *model.TransactionLink) error {
	if link == nil {
		return fmt.Errorf("%w: link", ErrNilParameter)
	}
	if link.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidLink)
	}
	if link.TransactionID1 == "" || link.TransactionID2 == "" {
		return fmt.Errorf("%w: missing transaction IDs", ErrInvalidLink)
	}
	if link.TransactionID1 == link.TransactionID2 {
		return fmt.Errorf("%w: cannot link a transaction to itself", ErrInvalidLink)
	}
	return nil
}

// validateCategory validates a category.
func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if category.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidCategory)
	}
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	switch category.Kind {
	case model.CategoryKindIncome, model.CategoryKindExpense:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidCategory, category.Kind)
	}
	return nil
}

// validateRule validates a categorization rule.
func validateRule(rule *model.CategorizationRule) error {
	if rule == nil {
		return fmt.Errorf("%w: rule", ErrNilParameter)
	}
	if rule.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRule)
	}
	if strings.TrimSpace(rule.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidRule)
	}
	return nil
}
