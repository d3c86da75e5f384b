package bankfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Defnoch/finance/internal/model"
)

// ING checking-account export. Eleven fixed columns, semicolon separated,
// compact dates (yyyyMMdd) and a Debit/credit marker column. The
// Notifications column can embed the real name and description as labeled
// segments.
type INGParser struct {
	synonyms map[string]string
}

// NewINGParser creates a parser for ordinary ING checking-account exports.
func NewINGParser() *INGParser {
	return &INGParser{
		synonyms: map[string]string{
			// English
			"Date":               "date",
			"Name / Description": "description",
			"Account":            "account",
			"Counterparty":       "counterparty",
			"Debit/credit":       "debitcredit",
			"Amount (EUR)":       "amount",
			"Transaction type":   "transactiontype",
			"Notifications":      "notifications",
			"Resulting balance":  "resultingbalance",
			// Dutch
			"Datum":               "date",
			"Naam / Omschrijving": "description",
			"Rekening":            "account",
			"Tegenrekening":       "counterparty",
			"Af Bij":              "debitcredit",
			"Bedrag (EUR)":        "amount",
			"Transactietype":      "transactiontype",
			"Mutatiesoort":        "transactiontype",
			"Mededelingen":        "notifications",
			"Saldo na trn":        "resultingbalance",
			"Saldo na mutatie":    "resultingbalance",
		},
	}
}

// SourceSystem implements Parser.
func (p *INGParser) SourceSystem() string { return "ING" }

// CanHandle selects purely on the declared source system tag.
func (p *INGParser) CanHandle(sourceSystem, _ string) bool {
	return strings.EqualFold(sourceSystem, "ING")
}

var (
	notificationNameRe = regexp.MustCompile(`(?i)Name:(.*?)Description:`)
	notificationDescRe = regexp.MustCompile(`(?i)Description:(.*?)(IBAN:|Reference:|Value date:|$)`)
)

// Parse implements Parser.
func (p *INGParser) Parse(content []byte, _ string) ([]model.TransactionDraft, error) {
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

		bookingDate, ok := parseDate(dateStr, "20060102")
		if !ok {
			continue
		}
		amount, err := parseAmount(amountStr)
		if err != nil {
			continue
		}
		amount = applySign(amount, cm.get(row, "debitcredit"))

		resultingBalance := optionalAmount(cm.get(row, "resultingbalance"))

		description := cm.get(row, "description")
		account := cm.get(row, "account")
		notifications := cm.get(row, "notifications")

		// The Notifications free text often carries the structured name and
		// description; fall back to the raw description column otherwise.
		parsedName := ""
		parsedDescription := description
		if notifications != "" {
			if m := notificationNameRe.FindStringSubmatch(notifications); m != nil {
				parsedName = strings.TrimSpace(m[1])
			}
			if m := notificationDescRe.FindStringSubmatch(notifications); m != nil {
				parsedDescription = strings.TrimSpace(m[1])
			}
		}

		sourceReference := fmt.Sprintf("%s|%s|%s|%s|%s",
			bookingDate.Format("2006-01-02"), amount.String(), account, description, notifications)

		drafts = append(drafts, model.TransactionDraft{
			SourceSystem:           p.SourceSystem(),
			SourceReference:        sourceReference,
			BookingDate:            bookingDate,
			Amount:                 amount,
			Currency:               "EUR",
			ResultingBalance:       resultingBalance,
			TransactionType:        cm.get(row, "transactiontype"),
			Notifications:          notifications,
			AccountIdentifier:      account,
			CounterpartyIdentifier: cm.get(row, "counterparty"),
			Description:            parsedDescription,
			Name:                   parsedName,
		})
	}

	if err := checkDuplicateReferences(drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}
