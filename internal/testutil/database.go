// Package testutil provides shared helpers for tests that need a real
// storage layer: in-memory databases with migrations applied and builders
// for common fixtures.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/storage"
)

// TestDB is an in-memory database scoped to one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory SQLite database and registers
// cleanup with the test.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return &TestDB{Storage: store, t: t}
}

// CreateAccount inserts an account and returns it.
func (db *TestDB) CreateAccount(ctx context.Context, provider, identifier string, kind model.AccountKind) *model.Account {
	db.t.Helper()
	account := &model.Account{
		ID:         uuid.New().String(),
		Identifier: identifier,
		Provider:   provider,
		Kind:       kind,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.Storage.CreateAccount(ctx, account); err != nil {
		db.t.Fatalf("failed to create account %s: %v", identifier, err)
	}
	return account
}

// TransactionBuilder assembles test transactions with sensible defaults.
type TransactionBuilder struct {
	txn model.Transaction
}

// NewTransaction starts a builder for a transaction with the given amount.
func NewTransaction(amount string) *TransactionBuilder {
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		panic("invalid test amount: " + amount)
	}
	return &TransactionBuilder{txn: model.Transaction{
		ID:              uuid.New().String(),
		SourceSystem:    "ING",
		SourceReference: uuid.New().String(),
		BookingDate:     time.Date(2023, 7, 18, 0, 0, 0, 0, time.UTC),
		Amount:          amt,
		Currency:        "EUR",
		ImportBatchID:   uuid.New().String(),
	}}
}

// On sets the booking date.
func (b *TransactionBuilder) On(date time.Time) *TransactionBuilder {
	b.txn.BookingDate = date
	return b
}

// From sets the owning account.
func (b *TransactionBuilder) From(account *model.Account) *TransactionBuilder {
	b.txn.AccountID = account.ID
	b.txn.AccountIdentifier = account.Identifier
	return b
}

// Counterparty sets the resolved counterparty account.
func (b *TransactionBuilder) Counterparty(account *model.Account) *TransactionBuilder {
	b.txn.CounterpartyAccountID = account.ID
	b.txn.CounterpartyIdentifier = account.Identifier
	return b
}

// Source sets the source system tag.
func (b *TransactionBuilder) Source(sourceSystem string) *TransactionBuilder {
	b.txn.SourceSystem = sourceSystem
	return b
}

// Reference sets the source reference.
func (b *TransactionBuilder) Reference(ref string) *TransactionBuilder {
	b.txn.SourceReference = ref
	return b
}

// Named sets the counterparty display name.
func (b *TransactionBuilder) Named(name string) *TransactionBuilder {
	b.txn.Name = name
	return b
}

// Describe sets the description.
func (b *TransactionBuilder) Describe(description string) *TransactionBuilder {
	b.txn.Description = description
	return b
}

// Batch sets the import batch.
func (b *TransactionBuilder) Batch(batchID string) *TransactionBuilder {
	b.txn.ImportBatchID = batchID
	return b
}

// Build returns the assembled transaction.
func (b *TransactionBuilder) Build() model.Transaction {
	return b.txn
}
