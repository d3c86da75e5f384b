package bankfile

import (
	"fmt"
	"strings"

	"github.com/Defnoch/finance/internal/model"
)

// ASN savings-account export. A plain semicolon CSV with a subset of the
// checking-account columns. The savings leg carries no usable counterparty
// account on this format, which is why the reference linker exists.
type ASNSavingsParser struct{}

// NewASNSavingsParser creates a parser for ASN savings-account exports.
func NewASNSavingsParser() *ASNSavingsParser { return &ASNSavingsParser{} }

// SourceSystem implements Parser.
func (p *ASNSavingsParser) SourceSystem() string { return "ASN_SPAAR" }

// CanHandle matches the ASN_SPAAR tag or an asn_spaar-named file.
func (p *ASNSavingsParser) CanHandle(sourceSystem, fileName string) bool {
	return strings.EqualFold(sourceSystem, "ASN_SPAAR") ||
		strings.Contains(strings.ToLower(fileName), "asn_spaar")
}

// Parse implements Parser.
func (p *ASNSavingsParser) Parse(content []byte, _ string) ([]model.TransactionDraft, error) {
	records := readRecords(content, ';')
	if len(records) < 2 {
		return nil, nil
	}

	cm := make(columnMap)
	for i, col := range records[0] {
		cm[strings.ToLower(trimQuotes(col))] = i
	}
	get := func(row []string, col string) string {
		return cm.get(row, strings.ToLower(col))
	}

	drafts := make([]model.TransactionDraft, 0, len(records)-1)
	for _, row := range records[1:] {
		dateStr := get(row, "Datum")
		amountStr := get(row, "Bedrag bij / af")
		if dateStr == "" || amountStr == "" {
			continue
		}

		bookingDate, ok := parseDate(dateStr, "2006-01-02", "02-01-2006")
		if !ok {
			continue
		}
		amount, err := parseAmount(amountStr)
		if err != nil {
			continue
		}

		account := get(row, "Je rekening")
		name := get(row, "Naam")
		description := get(row, "Omschrijving")

		sourceReference := fmt.Sprintf("%s|%s|%s|%s|%s",
			bookingDate.Format("2006-01-02"), amount.String(), account, name, description)

		valueDate := bookingDate
		drafts = append(drafts, model.TransactionDraft{
			SourceSystem:           p.SourceSystem(),
			SourceReference:        sourceReference,
			BookingDate:            bookingDate,
			ValueDate:              &valueDate,
			Amount:                 amount,
			Currency:               "EUR",
			AccountIdentifier:      account,
			CounterpartyIdentifier: get(row, "Van / naar"),
			Description:            description,
			Name:                   name,
		})
	}

	if err := checkDuplicateReferences(drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}
