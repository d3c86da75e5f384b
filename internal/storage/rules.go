package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Defnoch/finance/internal/common"
	"github.com/Defnoch/finance/internal/model"
)

// GetRules returns all rules with their conditions, highest priority first.
// Rules sharing a priority come back in creation order, which makes the
// first-match semantics of the engine deterministic.
func (s *SQLiteStorage) GetRules(ctx context.Context) ([]model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, priority, is_enabled, is_ignored, category_id, created_at
		FROM categorization_rules
		ORDER BY priority DESC, created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.CategorizationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	for i := range rules {
		conditions, err := s.getConditions(ctx, rules[i].ID)
		if err != nil {
			return nil, err
		}
		rules[i].Conditions = conditions
	}
	return rules, nil
}

// GetRuleByID retrieves one rule with its conditions.
func (s *SQLiteStorage) GetRuleByID(ctx context.Context, id string) (*model.CategorizationRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, priority, is_enabled, is_ignored, category_id, created_at
		FROM categorization_rules
		WHERE id = ?
	`, id)
	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rule: %w", err)
	}

	conditions, err := s.getConditions(ctx, rule.ID)
	if err != nil {
		return nil, err
	}
	rule.Conditions = conditions
	return rule, nil
}

// CreateRule persists a rule and its conditions atomically.
func (s *SQLiteStorage) CreateRule(ctx context.Context, rule *model.CategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO categorization_rules (id, name, priority, is_enabled, is_ignored, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rule.ID, rule.Name, rule.Priority, rule.IsEnabled, rule.IsIgnored, nullable(rule.CategoryID), rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	if err := insertConditions(ctx, tx, rule.ID, rule.Conditions); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateRule replaces a rule and all of its conditions.
func (s *SQLiteStorage) UpdateRule(ctx context.Context, rule *model.CategorizationRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRule(rule); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		UPDATE categorization_rules
		SET name = ?, priority = ?, is_enabled = ?, is_ignored = ?, category_id = ?
		WHERE id = ?
	`, rule.Name, rule.Priority, rule.IsEnabled, rule.IsIgnored, nullable(rule.CategoryID), rule.ID)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rule update: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM rule_conditions WHERE rule_id = ?`, rule.ID); err != nil {
		return fmt.Errorf("failed to replace rule conditions: %w", err)
	}
	if err := insertConditions(ctx, tx, rule.ID, rule.Conditions); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteRule removes a rule; its conditions cascade.
func (s *SQLiteStorage) DeleteRule(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM categorization_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rule deletion: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (s *SQLiteStorage) getConditions(ctx context.Context, ruleID string) ([]model.RuleCondition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, field, operator, value
		FROM rule_conditions
		WHERE rule_id = ?
		ORDER BY position ASC
	`, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rule conditions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var conditions []model.RuleCondition
	for rows.Next() {
		var c model.RuleCondition
		if err := rows.Scan(&c.ID, &c.Field, &c.Operator, &c.Value); err != nil {
			return nil, fmt.Errorf("failed to scan rule condition: %w", err)
		}
		conditions = append(conditions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule conditions: %w", err)
	}
	return conditions, nil
}

func insertConditions(ctx context.Context, tx *sql.Tx, ruleID string, conditions []model.RuleCondition) error {
	for i, c := range conditions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rule_conditions (id, rule_id, field, operator, value, position)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ID, ruleID, c.Field, c.Operator, c.Value, i)
		if err != nil {
			return fmt.Errorf("failed to insert rule condition: %w", err)
		}
	}
	return nil
}

func scanRule(sc scanner) (*model.CategorizationRule, error) {
	var (
		rule       model.CategorizationRule
		categoryID sql.NullString
	)
	if err := sc.Scan(
		&rule.ID,
		&rule.Name,
		&rule.Priority,
		&rule.IsEnabled,
		&rule.IsIgnored,
		&categoryID,
		&rule.CreatedAt,
	); err != nil {
		return nil, err
	}
	rule.CategoryID = categoryID.String
	return &rule, nil
}
