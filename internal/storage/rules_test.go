package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Defnoch/finance/internal/common"
	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/testutil"
)

func newRule(name string, priority int, createdAt time.Time, conditions ...model.RuleCondition) *model.CategorizationRule {
	for i := range conditions {
		conditions[i].ID = uuid.New().String()
	}
	return &model.CategorizationRule{
		ID:         uuid.New().String(),
		Name:       name,
		Conditions: conditions,
		Priority:   priority,
		IsEnabled:  true,
		CreatedAt:  createdAt,
	}
}

func TestRuleRoundTripKeepsConditionOrder(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	rule := newRule("groceries", 5, time.Now().UTC(),
		model.RuleCondition{Field: "counterpartyName", Operator: "contains", Value: "heijn"},
		model.RuleCondition{Field: "direction", Operator: "equals", Value: "Debit"},
		model.RuleCondition{Field: "amount", Operator: "inList", Value: "-12.34|-15.00"},
	)
	require.NoError(t, db.Storage.CreateRule(ctx, rule))

	stored, err := db.Storage.GetRuleByID(ctx, rule.ID)
	require.NoError(t, err)
	require.Len(t, stored.Conditions, 3)
	assert.Equal(t, "counterpartyName", stored.Conditions[0].Field)
	assert.Equal(t, "direction", stored.Conditions[1].Field)
	assert.Equal(t, "amount", stored.Conditions[2].Field)
}

func TestGetRulesOrderedByPriorityThenAge(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	base := time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC)
	low := newRule("low", 1, base)
	oldHigh := newRule("old high", 9, base)
	newHigh := newRule("new high", 9, base.Add(time.Hour))
	for _, r := range []*model.CategorizationRule{low, newHigh, oldHigh} {
		require.NoError(t, db.Storage.CreateRule(ctx, r))
	}

	rules, err := db.Storage.GetRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, "old high", rules[0].Name)
	assert.Equal(t, "new high", rules[1].Name)
	assert.Equal(t, "low", rules[2].Name)
}

func TestUpdateRuleReplacesConditions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	rule := newRule("subscriptions", 3, time.Now().UTC(),
		model.RuleCondition{Field: "description", Operator: "contains", Value: "netflix"},
	)
	require.NoError(t, db.Storage.CreateRule(ctx, rule))

	rule.Name = "streaming"
	rule.Priority = 7
	rule.Conditions = []model.RuleCondition{
		{ID: uuid.New().String(), Field: "counterpartyName", Operator: "inList", Value: "netflix|spotify"},
	}
	require.NoError(t, db.Storage.UpdateRule(ctx, rule))

	stored, err := db.Storage.GetRuleByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, "streaming", stored.Name)
	assert.Equal(t, 7, stored.Priority)
	require.Len(t, stored.Conditions, 1)
	assert.Equal(t, "counterpartyName", stored.Conditions[0].Field)
}

func TestUpdateRuleMissing(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	rule := newRule("ghost", 1, time.Now().UTC())
	err := db.Storage.UpdateRule(ctx, rule)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteRuleCascadesConditions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	rule := newRule("doomed", 1, time.Now().UTC(),
		model.RuleCondition{Field: "direction", Operator: "equals", Value: "Debit"},
	)
	require.NoError(t, db.Storage.CreateRule(ctx, rule))
	require.NoError(t, db.Storage.DeleteRule(ctx, rule.ID))

	_, err := db.Storage.GetRuleByID(ctx, rule.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.ErrorIs(t, db.Storage.DeleteRule(ctx, rule.ID), common.ErrNotFound)
}
