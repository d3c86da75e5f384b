package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/service"
)

// amountTolerance is the maximum difference between the two sides of a
// transfer. Exports round to cents, so anything under a cent is a match.
var amountTolerance = decimal.NewFromFloat(0.01)

// maxBookingGap is how far apart the two sides of a transfer may be booked.
const maxBookingGap = 24 * time.Hour

// TransferLinker pairs the two sides of internal transfers between a
// checking account and a savings account. Both sides carry the transfer
// independently, once per export, so after importing both exports the pair
// can be reconciled.
type TransferLinker struct {
	storage service.Storage
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewTransferLinker creates a linker backed by the given storage.
func NewTransferLinker(storage service.Storage, logger *slog.Logger) *TransferLinker {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferLinker{
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
}

// Link scans the whole transaction set for counterparts of the newly
// imported transactions and records a link for each new pair found.
// Already-linked pairs are skipped, so re-running after a re-import is
// safe.
func (l *TransferLinker) Link(ctx context.Context, newTransactions []model.Transaction) error {
	if len(newTransactions) == 0 {
		return nil
	}

	all, err := l.storage.GetAllTransactions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load transactions: %w", err)
	}
	accounts, err := l.storage.GetAllAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	kinds := make(map[string]model.AccountKind, len(accounts))
	for _, a := range accounts {
		kinds[a.ID] = a.Kind
	}

	linked := 0
	for _, txn := range newTransactions {
		for idx := range all {
			candidate := &all[idx]
			if candidate.ID == txn.ID {
				continue
			}
			if !transferPair(&txn, candidate, kinds) {
				continue
			}

			exists, err := l.storage.LinkExists(ctx, txn.ID, candidate.ID)
			if err != nil {
				return fmt.Errorf("failed to check for existing link: %w", err)
			}
			if exists {
				continue
			}

			link := &model.TransactionLink{
				ID:             l.newID(),
				TransactionID1: txn.ID,
				TransactionID2: candidate.ID,
				LinkedAt:       l.now(),
			}
			if err := l.storage.SaveTransactionLink(ctx, link); err != nil {
				return fmt.Errorf("failed to save link: %w", err)
			}
			linked++
		}
	}

	if linked > 0 {
		l.logger.Info("Linked transfer pairs", "count", linked)
	}
	return nil
}

// transferPair reports whether a and b look like the two sides of one
// internal transfer:
//
//   - the accounts are of opposite kind (checking vs savings)
//   - amounts cancel out within tolerance
//   - booking dates at most one day apart
//   - one side names the other's account as its counterparty
func transferPair(a, b *model.Transaction, kinds map[string]model.AccountKind) bool {
	if a.AccountID == "" || b.AccountID == "" || a.AccountID == b.AccountID {
		return false
	}
	kindA, okA := kinds[a.AccountID]
	kindB, okB := kinds[b.AccountID]
	if !okA || !okB || kindA != kindB.Opposite() {
		return false
	}

	if a.Amount.Add(b.Amount).Abs().GreaterThanOrEqual(amountTolerance) {
		return false
	}

	gap := a.BookingDate.Sub(b.BookingDate)
	if gap < 0 {
		gap = -gap
	}
	if gap > maxBookingGap {
		return false
	}

	return b.CounterpartyAccountID == a.AccountID || a.CounterpartyAccountID == b.AccountID
}
