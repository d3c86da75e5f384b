package bankfile

import (
	"fmt"
	"strings"

	"github.com/Defnoch/finance/internal/model"
)

// ING savings-account export. Same family as the checking export but with
// an extra account-name column, a currency column, an Af/Bij marker and
// more lenient date formats.
type INGSavingsParser struct {
	synonyms map[string]string
}

// NewINGSavingsParser creates a parser for ING savings-account exports.
func NewINGSavingsParser() *INGSavingsParser {
	return &INGSavingsParser{
		synonyms: map[string]string{
			// English
			"Date":              "date",
			"Description":       "description",
			"Account":           "account",
			"Account name":      "accountname",
			"Counterparty":      "counterparty",
			"Debit/credit":      "debitcredit",
			"Amount":            "amount",
			"Currency":          "currency",
			"Transaction type":  "transactiontype",
			"Notifications":     "notifications",
			"Resulting balance": "resultingbalance",
			// Dutch
			"Datum":            "date",
			"Omschrijving":     "description",
			"Rekening":         "account",
			"Rekening naam":    "accountname",
			"Tegenrekening":    "counterparty",
			"Af Bij":           "debitcredit",
			"Bedrag":           "amount",
			"Valuta":           "currency",
			"Mutatiesoort":     "transactiontype",
			"Mededelingen":     "notifications",
			"Saldo na mutatie": "resultingbalance",
		},
	}
}

// SourceSystem implements Parser.
func (p *INGSavingsParser) SourceSystem() string { return "ING_SPAAR" }

// CanHandle selects purely on the declared source system tag.
func (p *INGSavingsParser) CanHandle(sourceSystem, _ string) bool {
	return strings.EqualFold(sourceSystem, "ING_SPAAR")
}

// Parse implements Parser.
func (p *INGSavingsParser) Parse(content []byte, _ string) ([]model.TransactionDraft, error) {
	records := readRecords(content, ';')
	if len(records) < 2 {
		return nil, nil
	}

	cm := newColumnMap(records[0], p.synonyms)
	drafts := make([]model.TransactionDraft, 0, len(records)-1)

	for _, row := range records[1:] {
		dateStr := cm.get(row, "date")
		amountStr := cm.get(row, "amount")
		if dateStr == "" || amountStr == "" {
			continue
		}

		bookingDate, ok := parseDate(dateStr, "2006-01-02", "02-01-2006", "20060102")
		if !ok {
			continue
		}
		amount, err := parseAmount(amountStr)
		if err != nil {
			continue
		}
		amount = applySign(amount, cm.get(row, "debitcredit"))

		currency := cm.get(row, "currency")
		if currency == "" {
			currency = "EUR"
		}

		account := cm.get(row, "account")
		description := cm.get(row, "description")
		notifications := cm.get(row, "notifications")

		sourceReference := fmt.Sprintf("%s|%s|%s|%s|%s",
			bookingDate.Format("2006-01-02"), amount.String(), account, description, notifications)

		drafts = append(drafts, model.TransactionDraft{
			SourceSystem:           p.SourceSystem(),
			SourceReference:        sourceReference,
			BookingDate:            bookingDate,
			Amount:                 amount,
			Currency:               currency,
			ResultingBalance:       optionalAmount(cm.get(row, "resultingbalance")),
			TransactionType:        cm.get(row, "transactiontype"),
			Notifications:          notifications,
			AccountIdentifier:      account,
			CounterpartyIdentifier: cm.get(row, "counterparty"),
			Description:            description,
			Name:                   cm.get(row, "accountname"),
		})
	}

	if err := checkDuplicateReferences(drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}
