package model

import "time"

// ImportBatchStatus is the final state of an import call.
type ImportBatchStatus string

const (
	// BatchSucceeded marks a completed import.
	BatchSucceeded ImportBatchStatus = "Succeeded"
	// BatchFailed marks an import that persisted nothing.
	BatchFailed ImportBatchStatus = "Failed"
)

// ImportBatch records one import call. Write-once.
type ImportBatch struct {
	ImportedAt       time.Time
	ID               string
	SourceSystem     string
	FileName         string
	Status           ImportBatchStatus
	ErrorMessage     string
	TotalRecords     int
	InsertedRecords  int
	DuplicateRecords int
}

// ImportResult is what an import call reports back to the caller. Failures
// before or during parsing are carried in Errors, never as a hard error.
type ImportResult struct {
	ImportBatchID    string
	Errors           []string
	TotalRecords     int
	InsertedRecords  int
	DuplicateRecords int
}
