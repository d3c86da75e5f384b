package model

import "time"

// AccountKind distinguishes checking accounts from savings accounts. The
// transfer linker uses the kind to find the opposite side of an internal
// transfer.
type AccountKind string

const (
	// AccountKindNormal represents an ordinary checking account.
	AccountKindNormal AccountKind = "Normal"
	// AccountKindSavings represents a savings account.
	AccountKindSavings AccountKind = "Savings"
)

// Opposite returns the other account kind.
func (k AccountKind) Opposite() AccountKind {
	if k == AccountKindSavings {
		return AccountKindNormal
	}
	return AccountKindSavings
}

// Account is a bank account seen during import. Accounts are created lazily
// the first time an identifier shows up for a provider and are never
// updated or deleted.
type Account struct {
	CreatedAt  time.Time
	ID         string
	Identifier string // IBAN or plain account number
	Provider   string
	Kind       AccountKind
}

// AccountFiscalYear records that an account has at least one transaction in
// the given booking year. It is a denormalized index for year-picker UIs.
type AccountFiscalYear struct {
	AccountID string
	Year      int
}
