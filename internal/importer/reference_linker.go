package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/service"
)

// ReferenceLinker links newly imported ASN savings transactions to their
// checking-side mirror by exact source reference. ASN savings rows show up
// in both the savings export and the checking export with the same
// reference fields, so an exact match identifies the same movement.
type ReferenceLinker struct {
	storage service.Storage
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewReferenceLinker creates the ASN savings reference linker.
func NewReferenceLinker(storage service.Storage, logger *slog.Logger) *ReferenceLinker {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReferenceLinker{
		storage: storage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return uuid.New().String() },
	}
}

// Link pairs the new ASN_SPAAR transactions with ASN transactions sharing
// the same source reference. Pairs already linked are left alone.
func (l *ReferenceLinker) Link(ctx context.Context, newTransactions []model.Transaction) error {
	var savings []model.Transaction
	for _, txn := range newTransactions {
		if txn.SourceSystem == "ASN_SPAAR" {
			savings = append(savings, txn)
		}
	}
	if len(savings) == 0 {
		return nil
	}

	checking, err := l.storage.GetTransactionsBySourceSystem(ctx, "ASN")
	if err != nil {
		return fmt.Errorf("failed to load ASN transactions: %w", err)
	}
	byReference := make(map[string]*model.Transaction, len(checking))
	for idx := range checking {
		ref := checking[idx].SourceReference
		if _, taken := byReference[ref]; !taken {
			byReference[ref] = &checking[idx]
		}
	}

	linked := 0
	for _, spaar := range savings {
		match, ok := byReference[spaar.SourceReference]
		if !ok {
			continue
		}
		exists, err := l.storage.LinkExists(ctx, spaar.ID, match.ID)
		if err != nil {
			return fmt.Errorf("failed to check for existing link: %w", err)
		}
		if exists {
			continue
		}
		link := &model.TransactionLink{
			ID:             l.newID(),
			TransactionID1: spaar.ID,
			TransactionID2: match.ID,
			LinkedAt:       l.now(),
		}
		if err := l.storage.SaveTransactionLink(ctx, link); err != nil {
			return fmt.Errorf("failed to save link: %w", err)
		}
		linked++
	}

	if linked > 0 {
		l.logger.Info("Linked savings transactions by reference", "count", linked)
	}
	return nil
}

// CompositeLinker runs several linkers in order. A failure in one does not
// keep the next from running; the first error is reported afterwards.
type CompositeLinker []service.TransactionLinker

// Link runs every linker.
func (c CompositeLinker) Link(ctx context.Context, newTransactions []model.Transaction) error {
	var firstErr error
	for _, linker := range c {
		if err := linker.Link(ctx, newTransactions); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
