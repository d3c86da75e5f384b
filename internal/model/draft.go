package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDraft is the canonical, not-yet-persisted form of one parsed
// source row. Parsers produce drafts; only the import orchestrator turns
// them into Transactions.
type TransactionDraft struct {
	BookingDate            time.Time
	ValueDate              *time.Time
	SourceSystem           string
	SourceReference        string
	Currency               string
	TransactionType        string
	Notifications          string
	AccountIdentifier      string
	CounterpartyIdentifier string
	Description            string
	Name                   string
	RawData                string
	Amount                 decimal.Decimal
	ResultingBalance       *decimal.Decimal
}
