package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Defnoch/finance/internal/model"
)

func rule(name, categoryID string, priority int, conditions ...model.RuleCondition) model.CategorizationRule {
	return model.CategorizationRule{
		ID:         name,
		Name:       name,
		CategoryID: categoryID,
		Conditions: conditions,
		Priority:   priority,
		IsEnabled:  true,
	}
}

func cond(field, operator, value string) model.RuleCondition {
	return model.RuleCondition{Field: field, Operator: operator, Value: value}
}

func groceries(amount string) CategorizationInput {
	return CategorizationInput{
		Amount:           decimal.RequireFromString(amount),
		Direction:        "Debit",
		Currency:         "EUR",
		CounterpartyIban: "NL34RABO1234567890",
		CounterpartyName: "Albert Heijn Amsterdam",
		Description:      "Betaalautomaat 18-07",
		PaymentMethod:    "Payment terminal",
	}
}

func TestCategorizeHigherPriorityWins(t *testing.T) {
	ruleSet := []model.CategorizationRule{
		rule("generic", "cat-other", 1, cond(FieldDirection, OperatorEquals, "Debit")),
		rule("specific", "cat-groceries", 2, cond(FieldCounterpartyName, OperatorContains, "heijn")),
	}

	matched := Categorize(ruleSet, groceries("-12.34"))
	require.NotNil(t, matched)
	assert.Equal(t, "specific", matched.Name)
}

func TestCategorizeDisabledRulesNeverMatch(t *testing.T) {
	disabled := rule("disabled", "cat-x", 10, cond(FieldDirection, OperatorEquals, "Debit"))
	disabled.IsEnabled = false
	ruleSet := []model.CategorizationRule{
		disabled,
		rule("enabled", "cat-y", 1, cond(FieldDirection, OperatorEquals, "Debit")),
	}

	matched := Categorize(ruleSet, groceries("-12.34"))
	require.NotNil(t, matched)
	assert.Equal(t, "enabled", matched.Name)
}

func TestCategorizeAllConditionsMustHold(t *testing.T) {
	ruleSet := []model.CategorizationRule{
		rule("both", "cat-x", 1,
			cond(FieldCounterpartyName, OperatorContains, "heijn"),
			cond(FieldDirection, OperatorEquals, "Credit"), // input is Debit
		),
	}

	assert.Nil(t, Categorize(ruleSet, groceries("-12.34")))
}

func TestCategorizeNoConditionsNeverMatches(t *testing.T) {
	ruleSet := []model.CategorizationRule{rule("empty", "cat-x", 5)}
	assert.Nil(t, Categorize(ruleSet, groceries("-12.34")))
}

func TestCategorizePriorityTieKeepsInputOrder(t *testing.T) {
	ruleSet := []model.CategorizationRule{
		rule("first", "cat-a", 3, cond(FieldDirection, OperatorEquals, "Debit")),
		rule("second", "cat-b", 3, cond(FieldDirection, OperatorEquals, "Debit")),
	}

	matched := Categorize(ruleSet, groceries("-12.34"))
	require.NotNil(t, matched)
	assert.Equal(t, "first", matched.Name)
}

func TestConditionNormalization(t *testing.T) {
	input := groceries("-12.34")
	input.CounterpartyName = "  albert   HEIJN Amsterdam "

	tests := []struct {
		name string
		cond model.RuleCondition
		want bool
	}{
		{"contains case-insensitive", cond(FieldCounterpartyName, OperatorContains, "heijn"), true},
		{"equals after whitespace collapse", cond(FieldCounterpartyName, OperatorEquals, "Albert Heijn  Amsterdam"), true},
		{"startsWith normalized", cond(FieldCounterpartyName, OperatorStartsWith, "albert h"), true},
		{"description normalized too", cond(FieldDescription, OperatorContains, "BETAALAUTOMAAT"), true},
		{"no match", cond(FieldCounterpartyName, OperatorContains, "jumbo"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchCondition(input, tt.cond))
		})
	}
}

func TestConditionOperators(t *testing.T) {
	input := groceries("-12.34")

	tests := []struct {
		name string
		cond model.RuleCondition
		want bool
	}{
		{"direction equals", cond(FieldDirection, OperatorEquals, "debit"), true},
		{"currency equals", cond(FieldCurrency, OperatorEquals, "eur"), true},
		{"iban equals exact", cond(FieldCounterpartyIban, OperatorEquals, "NL34RABO1234567890"), true},
		{"iban startsWith", cond(FieldCounterpartyIban, OperatorStartsWith, "NL34"), true},
		{"payment method contains", cond(FieldPaymentMethod, OperatorContains, "terminal"), true},
		{"amount equals string form", cond(FieldAmount, OperatorEquals, "-12.34"), true},
		{"amount equals wrong value", cond(FieldAmount, OperatorEquals, "-12.35"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchCondition(input, tt.cond))
		})
	}
}

func TestConditionInList(t *testing.T) {
	input := groceries("-12.34")

	tests := []struct {
		name string
		cond model.RuleCondition
		want bool
	}{
		{"text membership uses contains", cond(FieldCounterpartyName, OperatorInList, "jumbo|heijn|lidl"), true},
		{"iban membership is exact", cond(FieldCounterpartyIban, OperatorInList, "NL34RABO1234567890|NL00X"), true},
		{"iban partial does not match", cond(FieldCounterpartyIban, OperatorInList, "NL34|NL00X"), false},
		{"direction membership", cond(FieldDirection, OperatorInList, "Credit|Debit"), true},
		{"amount numeric membership", cond(FieldAmount, OperatorInList, "-12,34|99.00"), true},
		{"amount not in list", cond(FieldAmount, OperatorInList, "1.00|2.00"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchCondition(input, tt.cond))
		})
	}
}

func TestConditionFieldAndOperatorCaseInsensitive(t *testing.T) {
	input := groceries("-12.34")

	tests := []struct {
		name string
		cond model.RuleCondition
		want bool
	}{
		{"pascal-case field and operator", cond("CounterpartyName", "Equals", "Albert Heijn Amsterdam"), true},
		{"upper-case operator", cond(FieldDirection, "EQUALS", "Debit"), true},
		{"lower-case startswith", cond("counterpartyiban", "startswith", "NL34"), true},
		{"pascal-case inList keeps field semantics", cond("Description", "InList", "betaalautomaat|x"), true},
		{"casing does not rescue a non-match", cond("CounterpartyName", "Contains", "jumbo"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchCondition(input, tt.cond))
		})
	}
}

func TestConditionUnknownFieldOrOperatorIsFalse(t *testing.T) {
	input := groceries("-12.34")

	assert.False(t, matchCondition(input, cond("merchantCategory", OperatorEquals, "x")))
	assert.False(t, matchCondition(input, cond(FieldDirection, "matches", "Debit")))
}

func TestInputFromTransaction(t *testing.T) {
	txn := model.Transaction{
		Amount:                 decimal.RequireFromString("-12.34"),
		Currency:               "EUR",
		CounterpartyIdentifier: "NL34RABO1234567890",
		Name:                   "Albert Heijn",
		Description:            "Boodschappen",
		TransactionType:        "Payment terminal",
	}

	input := InputFromTransaction(txn)
	assert.Equal(t, "Debit", input.Direction)
	assert.Equal(t, "NL34RABO1234567890", input.CounterpartyIban)
	assert.Equal(t, "Albert Heijn", input.CounterpartyName)
	assert.Equal(t, "Payment terminal", input.PaymentMethod)

	txn.Amount = decimal.RequireFromString("1500.00")
	assert.Equal(t, "Credit", InputFromTransaction(txn).Direction)
}
