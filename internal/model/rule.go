package model

import "time"

// CategorizationRule assigns a category to transactions matching all of its
// conditions. Higher priority rules are evaluated first.
//
// IsIgnored excludes a rule from the automatic categorization pass
// entirely; it never matches there and never shadows a lower-priority
// rule. It is independent of IsEnabled and of whether CategoryID is set.
type CategorizationRule struct {
	CreatedAt  time.Time
	ID         string
	Name       string
	CategoryID string
	Conditions []RuleCondition
	Priority   int
	IsEnabled  bool
	IsIgnored  bool
}

// RuleCondition is one field/operator/value predicate. Conditions within a
// rule are ANDed.
type RuleCondition struct {
	ID       string
	Field    string
	Operator string
	Value    string
}
