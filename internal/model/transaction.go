// Package model defines the core data structures for the finance application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionDirection indicates whether money left or entered the account.
type TransactionDirection string

const (
	// DirectionDebit represents money leaving the account.
	DirectionDebit TransactionDirection = "Debit"
	// DirectionCredit represents money entering the account.
	DirectionCredit TransactionDirection = "Credit"
)

// Transaction represents a single persisted ledger line from any source system.
type Transaction struct {
	BookingDate            time.Time
	ValueDate              *time.Time
	ID                     string
	SourceSystem           string
	SourceReference        string // dedup key, unique per source system
	Currency               string
	TransactionType        string
	Notifications          string
	AccountIdentifier      string
	CounterpartyIdentifier string
	Description            string
	Name                   string
	RawData                string
	CategoryID             string // empty until a rule or user assigns one
	ImportBatchID          string
	AccountID              string // empty when account resolution failed
	CounterpartyAccountID  string
	Amount                 decimal.Decimal
	ResultingBalance       *decimal.Decimal
}

// Direction derives the transaction direction from the amount sign.
func (t *Transaction) Direction() TransactionDirection {
	if t.Amount.IsNegative() {
		return DirectionDebit
	}
	return DirectionCredit
}
