package bankfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Defnoch/finance/internal/common"
)

func TestResolverPicksParserBySourceSystem(t *testing.T) {
	resolver := NewDefaultResolver()

	tests := []struct {
		sourceSystem string
		fileName     string
		want         string
	}{
		{"ING", "export.csv", "ING"},
		{"ing", "export.csv", "ING"},
		{"ING_SPAAR", "export.csv", "ING_SPAAR"},
		{"ASN", "export.csv", "ASN"},
		{"ASN_SPAAR", "export.csv", "ASN_SPAAR"},
	}
	for _, tt := range tests {
		parser, err := resolver.Resolve(tt.sourceSystem, tt.fileName)
		require.NoError(t, err, "%s/%s", tt.sourceSystem, tt.fileName)
		assert.Equal(t, tt.want, parser.SourceSystem())
	}
}

func TestResolverFallsBackToFileName(t *testing.T) {
	resolver := NewDefaultResolver()

	// The savings parser is registered before the checking parser, so an
	// asn_spaar file resolves to the savings format even though "asn" is a
	// substring of its name.
	parser, err := resolver.Resolve("", "asn_spaar_2023.csv")
	require.NoError(t, err)
	assert.Equal(t, "ASN_SPAAR", parser.SourceSystem())

	parser, err = resolver.Resolve("", "asn_account.csv")
	require.NoError(t, err)
	assert.Equal(t, "ASN", parser.SourceSystem())
}

func TestResolverNoMatch(t *testing.T) {
	resolver := NewDefaultResolver()

	_, err := resolver.Resolve("SNS", "sns.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNoStrategy)
}
