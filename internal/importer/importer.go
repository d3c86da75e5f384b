// Package importer turns parsed bank-export drafts into persisted
// transactions: it resolves the right parser, deduplicates against earlier
// imports, creates accounts lazily, and records the outcome as an import
// batch.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Defnoch/finance/internal/bankfile"
	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/service"
)

// Import error messages surfaced in ImportResult.Errors. Import failures
// are reported, never returned as hard errors; the hard error path is
// reserved for storage failures.
const (
	errNoContent  = "No file content provided."
	errNoAccounts = "no account numbers found in import"
)

// Request describes one file to import.
type Request struct {
	Content      []byte
	FileName     string
	SourceSystem string // optional; the resolver also matches on file name
	Override     bool   // delete earlier imports of the same source and accounts first
}

// Importer orchestrates a single import run.
type Importer struct {
	storage  service.Storage
	resolver *bankfile.Resolver
	linker   service.TransactionLinker
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// Option configures an Importer.
type Option func(*Importer)

// WithLinker attaches a transfer linker to run after each successful import.
func WithLinker(linker service.TransactionLinker) Option {
	return func(i *Importer) { i.linker = linker }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(i *Importer) { i.now = now }
}

// New creates an importer backed by the given storage and format resolver.
func New(storage service.Storage, resolver *bankfile.Resolver, logger *slog.Logger, opts ...Option) *Importer {
	if resolver == nil {
		resolver = bankfile.NewDefaultResolver()
	}
	if logger == nil {
		logger = slog.Default()
	}
	imp := &Importer{
		storage:  storage,
		resolver: resolver,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Import runs one import end to end and always returns a result. Parse and
// validation failures are carried in the result's Errors and leave no trace
// in storage; a batch row exists only for imports that get past validation.
// Only storage problems surface as an error.
func (i *Importer) Import(ctx context.Context, req Request) (*model.ImportResult, error) {
	result := &model.ImportResult{}

	drafts, sourceSystem, failure := i.parse(req)
	if failure != "" {
		return i.fail(result, req.FileName, failure)
	}

	if len(drafts) == 0 {
		// An empty but well-formed file is a no-op: nothing to record.
		return result, nil
	}

	accountIDs := i.accountIdentifiers(drafts)
	if req.Override {
		if len(accountIDs) == 0 {
			result.TotalRecords = len(drafts)
			return i.fail(result, req.FileName, errNoAccounts)
		}
		for _, identifier := range accountIDs {
			deleted, err := i.storage.DeleteTransactionsBySource(ctx, sourceSystem, identifier)
			if err != nil {
				return nil, fmt.Errorf("failed to clear account %s for re-import: %w", identifier, err)
			}
			i.logger.Info("Cleared account for re-import",
				"source_system", sourceSystem, "account", identifier, "deleted", deleted)
		}
	}

	accounts, err := i.ensureAccounts(ctx, sourceSystem, accountIDs)
	if err != nil {
		return nil, err
	}

	batch := &model.ImportBatch{
		ID:           i.newID(),
		SourceSystem: sourceSystem,
		FileName:     req.FileName,
		ImportedAt:   i.now(),
		Status:       model.BatchSucceeded,
	}
	result.ImportBatchID = batch.ID

	transactions, duplicates, err := i.materialize(ctx, batch.ID, drafts, accounts, req.Override)
	if err != nil {
		return nil, err
	}

	result.TotalRecords = len(drafts)
	result.DuplicateRecords = duplicates
	result.InsertedRecords = len(transactions)
	batch.TotalRecords = result.TotalRecords
	batch.DuplicateRecords = result.DuplicateRecords
	batch.InsertedRecords = result.InsertedRecords

	if len(transactions) > 0 {
		if err := i.storage.SaveTransactions(ctx, transactions); err != nil {
			return nil, fmt.Errorf("failed to save transactions: %w", err)
		}
	}
	if err := i.storage.SaveImportBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to save import batch: %w", err)
	}

	// Fiscal years and transfer links are indexes derived from the saved
	// data. Failures here leave the import itself intact.
	if len(transactions) > 0 {
		if i.linker != nil {
			saved, err := i.storage.GetTransactionsByBatch(ctx, batch.ID)
			if err != nil {
				i.logger.Warn("Could not load batch for linking", "error", err)
			} else if err := i.linker.Link(ctx, saved); err != nil {
				i.logger.Warn("Transfer linking failed", "error", err)
			}
		}
		if err := i.registerFiscalYears(ctx, transactions); err != nil {
			i.logger.Warn("Fiscal year registration failed", "error", err)
		}
	}

	i.logger.Info("Import complete",
		"source_system", sourceSystem,
		"file", req.FileName,
		"total", result.TotalRecords,
		"inserted", result.InsertedRecords,
		"duplicates", result.DuplicateRecords)
	return result, nil
}

// parse resolves the format, validates the header, and parses the drafts.
// It returns a failure message instead of an error so the caller can report
// it in the result.
func (i *Importer) parse(req Request) ([]model.TransactionDraft, string, string) {
	if len(req.Content) == 0 {
		return nil, req.SourceSystem, errNoContent
	}

	parser, err := i.resolver.Resolve(req.SourceSystem, req.FileName)
	if err != nil {
		return nil, req.SourceSystem, err.Error()
	}
	sourceSystem := parser.SourceSystem()

	if err := bankfile.ValidateHeader(req.Content, sourceSystem); err != nil {
		return nil, sourceSystem, fmt.Sprintf("parsing failed: %v", err)
	}

	drafts, err := parser.Parse(req.Content, req.FileName)
	if err != nil {
		return nil, sourceSystem, fmt.Sprintf("parsing failed: %v", err)
	}
	return drafts, sourceSystem, ""
}

func (i *Importer) fail(result *model.ImportResult, fileName, message string) (*model.ImportResult, error) {
	result.Errors = append(result.Errors, message)
	i.logger.Warn("Import failed", "file", fileName, "error", message)
	return result, nil
}

// accountIdentifiers returns the distinct own-account numbers in draft
// order.
func (i *Importer) accountIdentifiers(drafts []model.TransactionDraft) []string {
	seen := make(map[string]bool)
	var identifiers []string
	for _, d := range drafts {
		id := strings.TrimSpace(d.AccountIdentifier)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		identifiers = append(identifiers, id)
	}
	return identifiers
}

// ensureAccounts looks up or creates the accounts the drafts belong to and
// returns them keyed by identifier.
func (i *Importer) ensureAccounts(ctx context.Context, sourceSystem string, identifiers []string) (map[string]*model.Account, error) {
	provider := providerFor(sourceSystem)
	kind := kindFor(sourceSystem)

	accounts := make(map[string]*model.Account, len(identifiers))
	for _, identifier := range identifiers {
		account, err := i.storage.GetAccountByIdentifier(ctx, provider, identifier)
		if err != nil {
			return nil, fmt.Errorf("failed to look up account %s: %w", identifier, err)
		}
		if account == nil {
			account = &model.Account{
				ID:         i.newID(),
				Identifier: identifier,
				Provider:   provider,
				Kind:       kind,
				CreatedAt:  i.now(),
			}
			if err := i.storage.CreateAccount(ctx, account); err != nil {
				return nil, fmt.Errorf("failed to create account %s: %w", identifier, err)
			}
			i.logger.Info("Created account", "provider", provider, "identifier", identifier, "kind", kind)
		}
		accounts[identifier] = account
	}
	return accounts, nil
}

// materialize filters out drafts already imported and promotes the rest to
// transactions bound to this batch and their accounts. With override the
// existence check is skipped; the prior rows were just deleted.
func (i *Importer) materialize(ctx context.Context, batchID string, drafts []model.TransactionDraft, accounts map[string]*model.Account, override bool) ([]model.Transaction, int, error) {
	known, err := i.storage.GetAllAccounts(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	byIdentifier := make(map[string]string, len(known))
	for _, a := range known {
		byIdentifier[a.Identifier] = a.ID
	}

	var (
		transactions []model.Transaction
		duplicates   int
	)
	for _, draft := range drafts {
		if !override {
			exists, err := i.storage.TransactionExists(ctx, draft.SourceSystem, draft.SourceReference)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to check for duplicate: %w", err)
			}
			if exists {
				duplicates++
				continue
			}
		}

		txn := model.Transaction{
			ID:                     i.newID(),
			BookingDate:            draft.BookingDate,
			ValueDate:              draft.ValueDate,
			SourceSystem:           draft.SourceSystem,
			SourceReference:        draft.SourceReference,
			Currency:               draft.Currency,
			TransactionType:        draft.TransactionType,
			Notifications:          draft.Notifications,
			AccountIdentifier:      draft.AccountIdentifier,
			CounterpartyIdentifier: draft.CounterpartyIdentifier,
			Description:            draft.Description,
			Name:                   draft.Name,
			RawData:                draft.RawData,
			Amount:                 draft.Amount,
			ResultingBalance:       draft.ResultingBalance,
			ImportBatchID:          batchID,
		}
		if strings.TrimSpace(txn.Name) == "" {
			txn.Name = txn.Description
		}
		if txn.ValueDate == nil {
			vd := txn.BookingDate
			txn.ValueDate = &vd
		}
		if account, ok := accounts[strings.TrimSpace(draft.AccountIdentifier)]; ok {
			txn.AccountID = account.ID
		}
		// Counterparties only resolve against accounts we already track;
		// no account is ever created from a counterparty reference.
		if counterparty := strings.TrimSpace(draft.CounterpartyIdentifier); counterparty != "" {
			txn.CounterpartyAccountID = byIdentifier[counterparty]
		}
		transactions = append(transactions, txn)
	}
	return transactions, duplicates, nil
}

// registerFiscalYears records each distinct (account, booking year) pair
// seen in the inserted transactions.
func (i *Importer) registerFiscalYears(ctx context.Context, transactions []model.Transaction) error {
	seen := make(map[model.AccountFiscalYear]bool)
	var fiscalYears []model.AccountFiscalYear
	for _, txn := range transactions {
		if txn.AccountID == "" {
			continue
		}
		fy := model.AccountFiscalYear{AccountID: txn.AccountID, Year: txn.BookingDate.Year()}
		if seen[fy] {
			continue
		}
		seen[fy] = true
		fiscalYears = append(fiscalYears, fy)
	}
	return i.storage.AddFiscalYears(ctx, fiscalYears)
}

// providerFor derives the bank name from a source system tag: savings
// variants belong to the same provider as the main format.
func providerFor(sourceSystem string) string {
	if strings.HasPrefix(sourceSystem, "ING") {
		return "ING"
	}
	return sourceSystem
}

// kindFor maps savings source systems onto savings accounts.
func kindFor(sourceSystem string) model.AccountKind {
	if strings.HasSuffix(sourceSystem, "_SPAAR") {
		return model.AccountKindSavings
	}
	return model.AccountKindNormal
}
