package model

import "time"

// CategoryKind indicates whether a category is for income or expense.
type CategoryKind string

const (
	// CategoryKindIncome represents categories for income transactions.
	CategoryKindIncome CategoryKind = "Income"
	// CategoryKindExpense represents categories for expense transactions.
	CategoryKindExpense CategoryKind = "Expense"
)

// Category represents a spending category. Names are globally unique.
type Category struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Kind      CategoryKind
	ColorHex  string
	IsDefault bool
}
