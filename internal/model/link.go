package model

import "time"

// TransactionLink associates the two ledger lines that make up one internal
// transfer between accounts of the same user. The pair is unordered; queries
// must treat the two columns symmetrically.
type TransactionLink struct {
	LinkedAt       time.Time
	ID             string
	TransactionID1 string
	TransactionID2 string
}
