package bankfile

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ingSampleCSV = `Date;Name / Description;Account;Counterparty;Code;Debit/credit;Amount (EUR);Transaction type;Notifications;Resulting balance;Tag
20230718;Albert Heijn 1622;NL11INGB0001234567;NL34RABO1234567890;BA;Debit;12,34;Payment terminal;Name: Albert Heijn Description: Boodschappen IBAN: NL34RABO1234567890;1500,00;
20230719;Werkgever BV;NL11INGB0001234567;NL56INGB9876543210;OV;Credit;2500,00;Transfer;Name: Werkgever BV Description: Salaris juli Reference: 2023-07;4000,00;
`

func TestINGParserParsesEnglishExport(t *testing.T) {
	parser := NewINGParser()

	drafts, err := parser.Parse([]byte(ingSampleCSV), "ing.csv")
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	first := drafts[0]
	assert.Equal(t, "ING", first.SourceSystem)
	assert.Equal(t, time.Date(2023, 7, 18, 0, 0, 0, 0, time.UTC), first.BookingDate)
	assert.True(t, first.Amount.Equal(decimal.RequireFromString("-12.34")), "debit amount %s", first.Amount)
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, "NL11INGB0001234567", first.AccountIdentifier)
	assert.Equal(t, "NL34RABO1234567890", first.CounterpartyIdentifier)
	assert.Equal(t, "Payment terminal", first.TransactionType)
	require.NotNil(t, first.ResultingBalance)
	assert.True(t, first.ResultingBalance.Equal(decimal.RequireFromString("1500.00")))

	second := drafts[1]
	assert.True(t, second.Amount.Equal(decimal.RequireFromString("2500.00")), "credit amount %s", second.Amount)
}

func TestINGParserExtractsNameAndDescriptionFromNotifications(t *testing.T) {
	parser := NewINGParser()

	drafts, err := parser.Parse([]byte(ingSampleCSV), "ing.csv")
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "Albert Heijn", drafts[0].Name)
	assert.Equal(t, "Boodschappen", drafts[0].Description)

	// Description segment terminated by Reference: instead of IBAN:.
	assert.Equal(t, "Werkgever BV", drafts[1].Name)
	assert.Equal(t, "Salaris juli", drafts[1].Description)
}

func TestINGParserFallsBackToDescriptionColumn(t *testing.T) {
	content := `Date;Name / Description;Account;Counterparty;Code;Debit/credit;Amount (EUR);Transaction type;Notifications;Resulting balance;Tag
20230718;Kiosk Amsterdam;NL11INGB0001234567;;BA;Debit;2,50;Payment terminal;;10,00;
`
	parser := NewINGParser()

	drafts, err := parser.Parse([]byte(content), "ing.csv")
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	// No labeled segments in Notifications: the raw column is the
	// description and the name stays empty for the importer to fill.
	assert.Equal(t, "Kiosk Amsterdam", drafts[0].Description)
	assert.Empty(t, drafts[0].Name)
}

func TestINGParserDutchSignMarkers(t *testing.T) {
	content := `Datum;Naam / Omschrijving;Rekening;Tegenrekening;Code;Af Bij;Bedrag (EUR);Mutatiesoort;Mededelingen;Saldo na mutatie;Tag
20230718;Albert Heijn;NL11INGB0001234567;;BA;Af;12,34;Betaalautomaat;;100,00;
20230719;Werkgever;NL11INGB0001234567;;OV;Bij;2500,00;Overschrijving;;2600,00;
`
	parser := NewINGParser()

	drafts, err := parser.Parse([]byte(content), "ing.csv")
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.True(t, drafts[0].Amount.IsNegative(), "Af marks money out")
	assert.True(t, drafts[1].Amount.IsPositive(), "Bij marks money in")
}

func TestINGParserSourceReferenceIsStable(t *testing.T) {
	parser := NewINGParser()

	first, err := parser.Parse([]byte(ingSampleCSV), "ing.csv")
	require.NoError(t, err)
	second, err := parser.Parse([]byte(ingSampleCSV), "other-name.csv")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].SourceReference, second[i].SourceReference)
	}
	assert.Equal(t,
		"2023-07-18|-12.34|NL11INGB0001234567|Albert Heijn 1622|Name: Albert Heijn Description: Boodschappen IBAN: NL34RABO1234567890",
		first[0].SourceReference)
}

func TestINGParserSkipsRowsWithoutDateOrAmount(t *testing.T) {
	content := `Date;Name / Description;Account;Counterparty;Code;Debit/credit;Amount (EUR);Transaction type;Notifications;Resulting balance;Tag
;Missing date;NL11INGB0001234567;;BA;Debit;1,00;;;;
20230718;Bad date fmt;NL11INGB0001234567;;BA;Debit;abc;;;;
20230719;Good;NL11INGB0001234567;;BA;Debit;5,00;;;;
`
	parser := NewINGParser()

	drafts, err := parser.Parse([]byte(content), "ing.csv")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, time.Date(2023, 7, 19, 0, 0, 0, 0, time.UTC), drafts[0].BookingDate)
}

func TestINGParserRejectsDuplicateReferences(t *testing.T) {
	content := `Date;Name / Description;Account;Counterparty;Code;Debit/credit;Amount (EUR);Transaction type;Notifications;Resulting balance;Tag
20230718;Same;NL11INGB0001234567;;BA;Debit;1,00;;;;
20230718;Same;NL11INGB0001234567;;BA;Debit;1,00;;;;
`
	parser := NewINGParser()

	_, err := parser.Parse([]byte(content), "ing.csv")
	require.Error(t, err)
}

func TestINGSavingsParser(t *testing.T) {
	content := `Datum;Omschrijving;Rekening;Rekening naam;Tegenrekening;Af Bij;Bedrag;Valuta;Mutatiesoort;Mededelingen;Saldo na mutatie
2023-07-18;Inleg spaarrekening;S12345678;Spaarrekening;NL11INGB0001234567;Bij;50,00;EUR;Overboeking;;1050,00
`
	parser := NewINGSavingsParser()

	drafts, err := parser.Parse([]byte(content), "ing_spaar.csv")
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	draft := drafts[0]
	assert.Equal(t, "ING_SPAAR", draft.SourceSystem)
	assert.Equal(t, time.Date(2023, 7, 18, 0, 0, 0, 0, time.UTC), draft.BookingDate)
	assert.True(t, draft.Amount.Equal(decimal.RequireFromString("50.00")))
	assert.Equal(t, "EUR", draft.Currency)
	assert.Equal(t, "S12345678", draft.AccountIdentifier)
	assert.Equal(t, "NL11INGB0001234567", draft.CounterpartyIdentifier)
	assert.Equal(t, "Spaarrekening", draft.Name)
	assert.Equal(t, "Inleg spaarrekening", draft.Description)
}

func TestINGSavingsParserAcceptsCompactDates(t *testing.T) {
	content := `Datum;Omschrijving;Rekening;Rekening naam;Tegenrekening;Af Bij;Bedrag;Valuta;Mutatiesoort;Mededelingen;Saldo na mutatie
20230718;a;S12345678;Spaar;;Af;1,00;EUR;;;
18-07-2023;b;S12345678;Spaar;;Af;2,00;EUR;;;
2023-07-19;c;S12345678;Spaar;;Af;3,00;EUR;;;
`
	parser := NewINGSavingsParser()

	drafts, err := parser.Parse([]byte(content), "ing_spaar.csv")
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	assert.Equal(t, time.Date(2023, 7, 18, 0, 0, 0, 0, time.UTC), drafts[0].BookingDate)
	assert.Equal(t, time.Date(2023, 7, 18, 0, 0, 0, 0, time.UTC), drafts[1].BookingDate)
	assert.Equal(t, time.Date(2023, 7, 19, 0, 0, 0, 0, time.UTC), drafts[2].BookingDate)
}
