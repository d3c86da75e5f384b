// Package bankfile parses bank-exported ledger files into canonical
// transaction drafts. Each supported (bank, account-type) export format has
// its own parser; the Resolver picks the right one for a declared source
// system and file name.
package bankfile

import (
	"fmt"

	"github.com/Defnoch/finance/internal/common"
	"github.com/Defnoch/finance/internal/model"
)

// Parser converts one vendor export format into transaction drafts. A
// parser knows nothing about persistence or about other formats.
type Parser interface {
	// SourceSystem returns the tag this parser produces drafts for.
	SourceSystem() string

	// CanHandle reports whether this parser accepts the declared source
	// system tag and file name.
	CanHandle(sourceSystem, fileName string) bool

	// Parse converts raw file content into drafts. Rows missing a usable
	// date or amount are skipped; duplicated source references within one
	// file fail the whole parse.
	Parse(content []byte, fileName string) ([]model.TransactionDraft, error)
}

// Resolver selects the parser for an import request from a fixed,
// statically constructed list. The format set is closed, so no runtime
// registration is needed.
type Resolver struct {
	parsers []Parser
}

// NewResolver creates a resolver over the given parsers. Order matters only
// when predicates overlap; more specific parsers should come first.
func NewResolver(parsers ...Parser) *Resolver {
	return &Resolver{parsers: parsers}
}

// NewDefaultResolver creates a resolver over all supported formats.
func NewDefaultResolver() *Resolver {
	return NewResolver(
		NewINGParser(),
		NewINGSavingsParser(),
		NewASNSavingsParser(),
		NewASNParser(),
	)
}

// Resolve returns the first parser that can handle the request. It fails
// rather than guessing when no predicate matches.
func (r *Resolver) Resolve(sourceSystem, fileName string) (Parser, error) {
	for _, p := range r.parsers {
		if p.CanHandle(sourceSystem, fileName) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w for %s / %s", common.ErrNoStrategy, sourceSystem, fileName)
}
