// Package rules implements prioritized rule-based categorization of
// transactions. Matching is pure: the engine never touches storage, the
// runner wires it to persisted rules and transactions.
package rules

import (
	"strings"
)

// Normalize prepares free-text fields for matching: trim, uppercase, and
// collapse runs of whitespace to a single space. Bank exports are
// inconsistent about casing and padding, so rule values and transaction
// text go through the same normalization before comparison.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}
