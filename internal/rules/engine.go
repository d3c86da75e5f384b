package rules

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Defnoch/finance/internal/model"
)

// Canonical condition field names. The engine matches field names
// case-insensitively.
const (
	FieldDirection        = "direction"
	FieldAmount           = "amount"
	FieldCurrency         = "currency"
	FieldCounterpartyIban = "counterpartyIban"
	FieldCounterpartyName = "counterpartyName"
	FieldDescription      = "description"
	FieldPaymentMethod    = "paymentMethod"
)

// Canonical condition operators. The engine matches operator names
// case-insensitively.
const (
	OperatorEquals     = "equals"
	OperatorContains   = "contains"
	OperatorStartsWith = "startsWith"
	OperatorInList     = "inList"
)

// CategorizationInput is the view of a transaction the engine matches
// against. Building it up front keeps the engine independent of how
// transactions are stored.
type CategorizationInput struct {
	Amount           decimal.Decimal
	Direction        string
	Currency         string
	CounterpartyIban string
	CounterpartyName string
	Description      string
	PaymentMethod    string
}

// InputFromTransaction maps a persisted transaction onto the fields rules
// can reference.
func InputFromTransaction(txn model.Transaction) CategorizationInput {
	return CategorizationInput{
		Amount:           txn.Amount,
		Direction:        string(txn.Direction()),
		Currency:         txn.Currency,
		CounterpartyIban: txn.CounterpartyIdentifier,
		CounterpartyName: txn.Name,
		Description:      txn.Description,
		PaymentMethod:    txn.TransactionType,
	}
}

// Categorize evaluates the rules against one transaction and returns the
// first matching rule, or nil when nothing matches. Disabled rules never
// match. Rules are tried highest priority first; within a priority the
// given order is kept, so callers that load rules in creation order get
// deterministic ties.
func Categorize(ruleSet []model.CategorizationRule, input CategorizationInput) *model.CategorizationRule {
	ordered := make([]model.CategorizationRule, 0, len(ruleSet))
	for _, rule := range ruleSet {
		if rule.IsEnabled {
			ordered = append(ordered, rule)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	for i := range ordered {
		if Matches(&ordered[i], input) {
			return &ordered[i]
		}
	}
	return nil
}

// Matches reports whether every condition of the rule holds for the input.
// A rule without conditions matches nothing.
func Matches(rule *model.CategorizationRule, input CategorizationInput) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	for _, condition := range rule.Conditions {
		if !matchCondition(input, condition) {
			return false
		}
	}
	return true
}

// matchCondition evaluates one predicate. Field and operator names are
// matched case-insensitively, so a rule stored as "Equals" on
// "CounterpartyName" behaves the same as the canonical spelling. Unknown
// fields and operators never match, so a rule authored against a newer
// schema fails closed instead of miscategorizing.
func matchCondition(input CategorizationInput, condition model.RuleCondition) bool {
	field := strings.ToLower(condition.Field)
	fieldValue, known := lookupField(input, field)
	if !known {
		return false
	}

	target := condition.Value
	if isNormalizedField(field) {
		fieldValue = Normalize(fieldValue)
		target = Normalize(target)
	}

	switch strings.ToLower(condition.Operator) {
	case "equals":
		return strings.EqualFold(fieldValue, target)
	case "contains":
		return strings.Contains(strings.ToUpper(fieldValue), strings.ToUpper(target))
	case "startswith":
		return strings.HasPrefix(strings.ToUpper(fieldValue), strings.ToUpper(target))
	case "inlist":
		for _, item := range strings.Split(target, "|") {
			if inListMatch(field, fieldValue, strings.TrimSpace(item)) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// inListMatch applies the per-field membership semantics of inList: text
// fields match by substring, amounts numerically, everything else exactly.
// The field name is already lowercased by the caller.
func inListMatch(field, fieldValue, item string) bool {
	switch field {
	case "counterpartyname", "description":
		return strings.Contains(strings.ToUpper(fieldValue), strings.ToUpper(item))
	case "amount":
		left, errL := decimal.NewFromString(fieldValue)
		right, errR := decimal.NewFromString(strings.Replace(item, ",", ".", 1))
		if errL != nil || errR != nil {
			return false
		}
		return left.Equal(right)
	default:
		return strings.EqualFold(fieldValue, item)
	}
}

// lookupField resolves an already-lowercased field name against the input.
func lookupField(input CategorizationInput, field string) (string, bool) {
	switch field {
	case "direction":
		return input.Direction, true
	case "amount":
		return input.Amount.String(), true
	case "currency":
		return input.Currency, true
	case "counterpartyiban":
		return input.CounterpartyIban, true
	case "counterpartyname":
		return input.CounterpartyName, true
	case "description":
		return input.Description, true
	case "paymentmethod":
		return input.PaymentMethod, true
	default:
		return "", false
	}
}

func isNormalizedField(field string) bool {
	return field == "counterpartyname" || field == "description"
}
