package rules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/service"
)

// Runner applies the persisted rule set to uncategorized transactions.
type Runner struct {
	storage service.Storage
	logger  *slog.Logger
}

// RunReport summarizes one batch categorization pass.
type RunReport struct {
	Scanned  int
	Assigned int
	Skipped  int // matched a rule that carries no category
}

// NewRunner creates a batch categorization runner.
func NewRunner(storage service.Storage, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{storage: storage, logger: logger}
}

// Run loads the rule set and every uncategorized transaction, matches each
// transaction against the rules, and persists the winning assignments in
// one batch. Ignored rules are excluded before matching, so they never
// shadow a lower-priority assigning rule; a winning rule without a category
// leaves the transaction untouched.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	allRules, err := r.storage.GetRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	ruleSet := make([]model.CategorizationRule, 0, len(allRules))
	for _, rule := range allRules {
		if !rule.IsIgnored {
			ruleSet = append(ruleSet, rule)
		}
	}

	transactions, err := r.storage.GetUncategorizedTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load uncategorized transactions: %w", err)
	}

	report := &RunReport{Scanned: len(transactions)}
	var assignments []service.CategoryAssignment
	for _, txn := range transactions {
		matched := Categorize(ruleSet, InputFromTransaction(txn))
		if matched == nil {
			continue
		}
		if matched.CategoryID == "" {
			report.Skipped++
			continue
		}
		assignments = append(assignments, service.CategoryAssignment{
			TransactionID: txn.ID,
			CategoryID:    matched.CategoryID,
		})
	}

	if len(assignments) > 0 {
		if err := r.storage.AssignCategories(ctx, assignments); err != nil {
			return nil, fmt.Errorf("failed to assign categories: %w", err)
		}
	}
	report.Assigned = len(assignments)

	r.logger.Info("Categorization pass complete",
		"scanned", report.Scanned,
		"assigned", report.Assigned,
		"skipped", report.Skipped,
		"rules", len(ruleSet))
	return report, nil
}
