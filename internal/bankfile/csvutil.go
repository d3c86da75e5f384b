package bankfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Defnoch/finance/internal/common"
	"github.com/Defnoch/finance/internal/model"
)

// detectDelimiter picks the field separator of a header line. Semicolon is
// preferred; comma is the fallback.
func detectDelimiter(line string) rune {
	if strings.ContainsRune(line, ';') {
		return ';'
	}
	return ','
}

// firstLine returns the first line of the file without its line ending.
func firstLine(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return strings.TrimRight(string(content), "\r")
}

// trimQuotes strips surrounding double quotes from one field.
func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

// readRecords parses the whole file with a general-purpose CSV reader.
// Rows may have a variable number of fields; structural errors on a single
// row skip that row rather than failing the file.
func readRecords(content []byte, delimiter rune) [][]string {
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// the reader resumes at the next line
			continue
		}
		records = append(records, record)
	}
	return records
}

// parseAmount converts a vendor-formatted amount ("1.234,56", "€ 72,48")
// into a decimal. Currency symbols, spaces and thousands separators are
// stripped and the decimal comma becomes a decimal point.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.NewReplacer("€", "", `"`, "", " ", "", ".", "").Replace(raw)
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// parseDate tries each layout in order against the quoted-trimmed value.
func parseDate(raw string, layouts ...string) (time.Time, bool) {
	s := trimQuotes(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// applySign forces the amount sign from an explicit debit/credit marker.
// "Debit"/"Af" means money out, "Credit"/"Bij" money in. Without a
// recognized marker the literal sign is trusted as-is.
func applySign(amount decimal.Decimal, marker string) decimal.Decimal {
	switch strings.ToLower(strings.TrimSpace(marker)) {
	case "debit", "af":
		return amount.Abs().Neg()
	case "credit", "bij":
		return amount.Abs()
	default:
		return amount
	}
}

// optionalAmount parses an amount field that may be absent or malformed.
func optionalAmount(raw string) *decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d, err := parseAmount(raw)
	if err != nil {
		return nil
	}
	return &d
}

// checkDuplicateReferences fails a parse when two distinct rows in one file
// collapse onto the same source reference. Ambiguous files are rejected
// rather than silently merged by the importer's dedup check.
func checkDuplicateReferences(drafts []model.TransactionDraft) error {
	seen := make(map[string]int, len(drafts))
	var dups []string
	for _, d := range drafts {
		seen[d.SourceReference]++
		if seen[d.SourceReference] == 2 {
			dups = append(dups, d.SourceReference)
		}
	}
	if len(dups) > 0 {
		return fmt.Errorf("%w: %s", common.ErrDuplicateSourceReference, strings.Join(dups, ", "))
	}
	return nil
}

// columnMap maps internal field names onto column positions using a
// header-synonym table, so NL and EN exports extract identically.
type columnMap map[string]int

func newColumnMap(header []string, synonyms map[string]string) columnMap {
	cm := make(columnMap)
	for i, col := range header {
		name := trimQuotes(col)
		for synonym, internal := range synonyms {
			if strings.EqualFold(name, synonym) {
				if _, taken := cm[internal]; !taken {
					cm[internal] = i
				}
			}
		}
	}
	return cm
}

// get returns the trimmed value of an internal field, or "" when the column
// is absent from this export or the row is short.
func (cm columnMap) get(row []string, internal string) string {
	idx, ok := cm[internal]
	if !ok || idx >= len(row) {
		return ""
	}
	return trimQuotes(row[idx])
}
