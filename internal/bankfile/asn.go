package bankfile

import (
	"fmt"
	"strings"

	"github.com/Defnoch/finance/internal/model"
)

// ASN checking-account export. The real bank export wraps every row in a
// single quoted pseudo-CSV field that has to be re-split by hand; the
// column-split variant (as produced by some tools) and plain CSV are also
// accepted. The parser auto-detects which shape it received.
type ASNParser struct{}

// NewASNParser creates a parser for ASN checking-account exports.
func NewASNParser() *ASNParser { return &ASNParser{} }

// SourceSystem implements Parser.
func (p *ASNParser) SourceSystem() string { return "ASN" }

// CanHandle matches the ASN tag or an ASN-named file.
func (p *ASNParser) CanHandle(sourceSystem, fileName string) bool {
	return strings.EqualFold(sourceSystem, "ASN") ||
		strings.Contains(strings.ToLower(fileName), "asn")
}

// Parse implements Parser.
func (p *ASNParser) Parse(content []byte, _ string) ([]model.TransactionDraft, error) {
	rows := p.readRows(content)
	if len(rows) < 2 {
		return nil, nil
	}

	cm := make(columnMap)
	for i, col := range rows[0] {
		name := trimQuotes(col)
		if _, taken := cm[strings.ToLower(name)]; !taken {
			cm[strings.ToLower(name)] = i
		}
	}
	get := func(row []string, col string) string {
		return cm.get(row, strings.ToLower(col))
	}

	drafts := make([]model.TransactionDraft, 0, len(rows)-1)
	for _, row := range rows[1:] {
		dateStr := get(row, "Datum")
		amountStr := get(row, "Bedrag bij / af")
		if dateStr == "" || amountStr == "" {
			continue
		}

		bookingDate, ok := parseDate(dateStr, "02-01-2006")
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
		sequence := get(row, "Volgnummer")

		currency := get(row, "Valuta")
		if currency == "" {
			currency = "EUR"
		}

		// ASN reports the balance before booking; derive the balance after.
		var resultingBalance = optionalAmount(get(row, "Saldo voor boeking"))
		if resultingBalance != nil {
			after := resultingBalance.Add(amount)
			resultingBalance = &after
		}

		sourceReference := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
			bookingDate.Format("2006-01-02"), amount.String(), account, name, description, sequence)

		valueDate := bookingDate
		drafts = append(drafts, model.TransactionDraft{
			SourceSystem:           p.SourceSystem(),
			SourceReference:        sourceReference,
			BookingDate:            bookingDate,
			ValueDate:              &valueDate,
			Amount:                 amount,
			Currency:               currency,
			ResultingBalance:       resultingBalance,
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

// readRows detects the export shape and returns header plus data rows.
func (p *ASNParser) readRows(content []byte) [][]string {
	first := firstLine(content)
	if strings.TrimSpace(first) == "" {
		return nil
	}

	switch {
	case isColumnSplit(first):
		var rows [][]string
		for _, line := range splitLines(content) {
			if strings.TrimSpace(line) == "" {
				continue
			}
			fields := strings.Split(line, ";")
			for i := range fields {
				fields[i] = trimQuotes(fields[i])
			}
			rows = append(rows, fields)
		}
		return rows
	case isSingleField(first):
		var rows [][]string
		for i, line := range splitLines(content) {
			if strings.TrimSpace(line) == "" {
				continue
			}
			fields := resplitQuotedLine(line)
			if i > 0 {
				fields = rejoinSplitAmounts(fields)
			}
			rows = append(rows, fields)
		}
		return rows
	default:
		return readRecords(content, ';')
	}
}

// isColumnSplit recognizes the already column-split variant.
func isColumnSplit(line string) bool {
	return strings.Contains(line, "Datum") &&
		strings.Contains(line, "Je rekening") &&
		len(strings.Split(line, ";")) > 2
}

// isSingleField recognizes the real bank export: semicolons and quotes in
// the raw line, yet a quote-aware read sees only one top-level field.
func isSingleField(line string) bool {
	if strings.Count(line, ";") == 0 || strings.Count(line, `"`) <= 2 {
		return false
	}
	records := readRecords([]byte(line), ';')
	return len(records) == 1 && len(records[0]) == 1
}

// resplitQuotedLine unwraps one single-field export line: strip the outer
// quotes, split on the embedded semicolons and trim per-field quotes.
func resplitQuotedLine(line string) []string {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`) && len(line) >= 2 {
		line = line[1 : len(line)-1]
	}
	fields := strings.Split(line, ";")
	for i := range fields {
		fields[i] = trimQuotes(fields[i])
	}
	return fields
}

// rejoinSplitAmounts repairs amounts that the export's decimal comma broke
// into two fields: an integer field followed by an exactly-two-digit field
// belong together as "<int>,<cents>".
func rejoinSplitAmounts(fields []string) []string {
	for i := 0; i < len(fields)-1; i++ {
		if isIntegerField(fields[i]) && len(fields[i+1]) == 2 && isDigits(fields[i+1]) {
			fields[i] = fields[i] + "," + fields[i+1]
			fields = append(fields[:i+1], fields[i+2:]...)
			i--
		}
	}
	return fields
}

func isIntegerField(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	return isDigits(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func splitLines(content []byte) []string {
	return strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
}
