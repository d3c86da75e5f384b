// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Defnoch/finance/internal/model"
)

// CategoryAssignment pairs a transaction with the category a rule or user
// chose for it.
type CategoryAssignment struct {
	TransactionID string
	CategoryID    string
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	TransactionExists(ctx context.Context, sourceSystem, sourceReference string) (bool, error)
	DeleteTransactionsBySource(ctx context.Context, sourceSystem, accountIdentifier string) (int64, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionsByBatch(ctx context.Context, batchID string) ([]model.Transaction, error)
	GetTransactionsBySourceSystem(ctx context.Context, sourceSystem string) ([]model.Transaction, error)
	GetAllTransactions(ctx context.Context) ([]model.Transaction, error)
	GetUncategorizedTransactions(ctx context.Context) ([]model.Transaction, error)
	AssignCategory(ctx context.Context, transactionID, categoryID string) error
	AssignCategories(ctx context.Context, assignments []CategoryAssignment) error
	UnassignCategory(ctx context.Context, transactionID string) error

	// Account operations
	GetAccountByIdentifier(ctx context.Context, provider, identifier string) (*model.Account, error)
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAllAccounts(ctx context.Context) ([]model.Account, error)

	// Fiscal year index
	GetFiscalYears(ctx context.Context, accountID string) ([]int, error)
	AddFiscalYears(ctx context.Context, fiscalYears []model.AccountFiscalYear) error

	// Import batches
	SaveImportBatch(ctx context.Context, batch *model.ImportBatch) error
	GetImportBatch(ctx context.Context, id string) (*model.ImportBatch, error)
	GetImportBatches(ctx context.Context) ([]model.ImportBatch, error)

	// Transaction links
	LinkExists(ctx context.Context, transactionID1, transactionID2 string) (bool, error)
	SaveTransactionLink(ctx context.Context, link *model.TransactionLink) error
	GetLinksForTransaction(ctx context.Context, transactionID string) ([]model.TransactionLink, error)

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) error
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id string) error

	// Categorization rules
	GetRules(ctx context.Context) ([]model.CategorizationRule, error)
	GetRuleByID(ctx context.Context, id string) (*model.CategorizationRule, error)
	CreateRule(ctx context.Context, rule *model.CategorizationRule) error
	UpdateRule(ctx context.Context, rule *model.CategorizationRule) error
	DeleteRule(ctx context.Context, id string) error

	// Background task configs
	GetTaskConfigs(ctx context.Context) ([]model.TaskConfig, error)
	UpdateTaskLastRun(ctx context.Context, id string, lastRunAt time.Time) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionLinker records links between the two sides of one transfer
// after a batch has been persisted.
type TransactionLinker interface {
	Link(ctx context.Context, newTransactions []model.Transaction) error
}
