package bankfile

import (
	"fmt"
	"strings"

	"github.com/Defnoch/finance/internal/common"
)

// Known header layouts per source system. ING exports must match one of the
// registered orderings field-for-field; ASN exports only need to contain the
// required columns somewhere, in any order.
var ingHeaderVariants = [][]string{
	{"Date", "Name / Description", "Account", "Counterparty", "Code", "Debit/credit", "Amount (EUR)", "Transaction type", "Notifications", "Resulting balance", "Tag"},
	{"Datum", "Naam / Omschrijving", "Rekening", "Tegenrekening", "Code", "Af Bij", "Bedrag (EUR)", "Mutatiesoort", "Mededelingen", "Saldo na trn", "Tag"},
	{"Datum", "Naam / Omschrijving", "Rekening", "Tegenrekening", "Code", "Af Bij", "Bedrag (EUR)", "Transactietype", "Mededelingen", "Saldo na mutatie", "Tag"},
	{"Datum", "Naam / Omschrijving", "Rekening", "Tegenrekening", "Code", "Af Bij", "Bedrag (EUR)", "Mutatiesoort", "Mededelingen", "Saldo na mutatie", "Tag"},
}

var ingSavingsHeaderVariants = [][]string{
	{"Datum", "Omschrijving", "Rekening", "Rekening naam", "Tegenrekening", "Af Bij", "Bedrag", "Valuta", "Mutatiesoort", "Mededelingen", "Saldo na mutatie"},
}

var asnRequiredHeaders = []string{
	"Datum", "Je rekening", "Van / naar", "Naam", "Omschrijving", "Bedrag bij / af", "Valuta", "Saldo voor boeking",
}

var asnSavingsRequiredHeaders = []string{
	"Datum", "Je rekening", "Van / naar", "Naam", "Omschrijving", "Bedrag bij / af",
}

// ValidateHeader checks the first line of a file against the registered
// layouts for the declared source system. It runs before full parsing to
// give a cheap, specific rejection.
func ValidateHeader(content []byte, sourceSystem string) error {
	line := firstLine(content)
	if strings.TrimSpace(line) == "" {
		return fmt.Errorf("%w: file has no header line", common.ErrInvalidHeader)
	}

	fields := strings.Split(line, string(detectDelimiter(line)))
	actual := make([]string, len(fields))
	for i, f := range fields {
		actual[i] = trimQuotes(f)
	}

	switch strings.ToUpper(sourceSystem) {
	case "ASN":
		return requireColumns(actual, asnRequiredHeaders, "ASN")
	case "ASN_SPAAR":
		return requireColumns(actual, asnSavingsRequiredHeaders, "ASN_SPAAR")
	case "ING":
		return matchVariant(actual, ingHeaderVariants, "ING")
	case "ING_SPAAR":
		return matchVariant(actual, ingSavingsHeaderVariants, "ING_SPAAR")
	default:
		return fmt.Errorf("%w: unknown source system %q", common.ErrInvalidHeader, sourceSystem)
	}
}

// requireColumns checks that every required column is present somewhere in
// the header, ignoring order and extra columns.
func requireColumns(actual, required []string, format string) error {
	for _, want := range required {
		found := false
		for _, got := range actual {
			if strings.EqualFold(got, want) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: column %q missing in %s header", common.ErrInvalidHeader, want, format)
		}
	}
	return nil
}

// matchVariant checks the header against each accepted layout with exact
// positional equality.
func matchVariant(actual []string, variants [][]string, format string) error {
	for _, expected := range variants {
		if len(actual) != len(expected) {
			continue
		}
		match := true
		for i := range expected {
			if !strings.EqualFold(actual[i], expected[i]) {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}
	return fmt.Errorf("%w: header does not match any expected layout for %s", common.ErrInvalidHeader, format)
}
