package importer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Defnoch/finance/internal/importer"
	"github.com/Defnoch/finance/internal/model"
	"github.com/Defnoch/finance/internal/testutil"
)

func july(day int) time.Time {
	return time.Date(2023, 7, day, 0, 0, 0, 0, time.UTC)
}

func TestTransferLinkerPairsOppositeSides(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	checking := db.CreateAccount(ctx, "ING", "NL11INGB0001234567", model.AccountKindNormal)
	savings := db.CreateAccount(ctx, "ING", "S12345678", model.AccountKindSavings)

	out := testutil.NewTransaction("-50.00").From(checking).Counterparty(savings).On(july(18)).Build()
	in := testutil.NewTransaction("50.00").From(savings).On(july(18)).Source("ING_SPAAR").Build()
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{out, in}))

	linker := importer.NewTransferLinker(db.Storage, nil)
	require.NoError(t, linker.Link(ctx, []model.Transaction{in}))

	links, err := db.Storage.GetLinksForTransaction(ctx, out.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
}

func TestTransferLinkerAllowsOneDayGap(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	checking := db.CreateAccount(ctx, "ING", "NL11INGB0001234567", model.AccountKindNormal)
	savings := db.CreateAccount(ctx, "ING", "S12345678", model.AccountKindSavings)

	out := testutil.NewTransaction("-50.00").From(checking).Counterparty(savings).On(july(18)).Build()
	in := testutil.NewTransaction("50.00").From(savings).On(july(19)).Build()
	late := testutil.NewTransaction("50.00").From(savings).On(july(21)).Build()
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{out, in, late}))

	linker := importer.NewTransferLinker(db.Storage, nil)
	require.NoError(t, linker.Link(ctx, []model.Transaction{in, late}))

	links, err := db.Storage.GetLinksForTransaction(ctx, out.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.True(t, links[0].TransactionID1 == in.ID || links[0].TransactionID2 == in.ID)
}

func TestTransferLinkerRejectsAmountMismatch(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	checking := db.CreateAccount(ctx, "ING", "NL11INGB0001234567", model.AccountKindNormal)
	savings := db.CreateAccount(ctx, "ING", "S12345678", model.AccountKindSavings)

	// Two cents off is outside the tolerance.
	out := testutil.NewTransaction("-50.02").From(checking).Counterparty(savings).On(july(18)).Build()
	in := testutil.NewTransaction("50.00").From(savings).On(july(18)).Build()
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{out, in}))

	linker := importer.NewTransferLinker(db.Storage, nil)
	require.NoError(t, linker.Link(ctx, []model.Transaction{in}))

	links, err := db.Storage.GetLinksForTransaction(ctx, out.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestTransferLinkerRequiresOppositeAccountKinds(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	first := db.CreateAccount(ctx, "ING", "NL11INGB0001234567", model.AccountKindNormal)
	second := db.CreateAccount(ctx, "ASN", "NL12ASN0123456789", model.AccountKindNormal)

	out := testutil.NewTransaction("-50.00").From(first).Counterparty(second).On(july(18)).Build()
	in := testutil.NewTransaction("50.00").From(second).On(july(18)).Build()
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{out, in}))

	linker := importer.NewTransferLinker(db.Storage, nil)
	require.NoError(t, linker.Link(ctx, []model.Transaction{in}))

	links, err := db.Storage.GetLinksForTransaction(ctx, out.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestTransferLinkerRequiresCrossReference(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	checking := db.CreateAccount(ctx, "ING", "NL11INGB0001234567", model.AccountKindNormal)
	savings := db.CreateAccount(ctx, "ING", "S12345678", model.AccountKindSavings)

	// Neither side names the other as counterparty.
	out := testutil.NewTransaction("-50.00").From(checking).On(july(18)).Build()
	in := testutil.NewTransaction("50.00").From(savings).On(july(18)).Build()
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{out, in}))

	linker := importer.NewTransferLinker(db.Storage, nil)
	require.NoError(t, linker.Link(ctx, []model.Transaction{in}))

	links, err := db.Storage.GetLinksForTransaction(ctx, out.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestTransferLinkerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	checking := db.CreateAccount(ctx, "ING", "NL11INGB0001234567", model.AccountKindNormal)
	savings := db.CreateAccount(ctx, "ING", "S12345678", model.AccountKindSavings)

	out := testutil.NewTransaction("-50.00").From(checking).Counterparty(savings).On(july(18)).Build()
	in := testutil.NewTransaction("50.00").From(savings).On(july(18)).Build()
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{out, in}))

	linker := importer.NewTransferLinker(db.Storage, nil)
	require.NoError(t, linker.Link(ctx, []model.Transaction{in}))
	// Running again, also from the other side, must not duplicate the link.
	require.NoError(t, linker.Link(ctx, []model.Transaction{out}))

	links, err := db.Storage.GetLinksForTransaction(ctx, out.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestReferenceLinkerJoinsSavingsToChecking(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	ref := "2023-07-18|-50.00|NL12ASN0123456789|J. Janssen|Inleg|"
	checking := testutil.NewTransaction("-50.00").Source("ASN").Reference(ref).Build()
	spaar := testutil.NewTransaction("50.00").Source("ASN_SPAAR").Reference(ref).Build()
	other := testutil.NewTransaction("10.00").Source("ASN_SPAAR").Reference("no-match").Build()
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{checking, spaar, other}))

	linker := importer.NewReferenceLinker(db.Storage, nil)
	require.NoError(t, linker.Link(ctx, []model.Transaction{spaar, other}))

	links, err := db.Storage.GetLinksForTransaction(ctx, checking.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)

	orphan, err := db.Storage.GetLinksForTransaction(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, orphan)

	// Re-running leaves the existing link alone.
	require.NoError(t, linker.Link(ctx, []model.Transaction{spaar}))
	links, err = db.Storage.GetLinksForTransaction(ctx, checking.ID)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}

func TestReferenceLinkerIgnoresOtherSourceSystems(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	ref := "shared-ref"
	checking := testutil.NewTransaction("-50.00").Source("ASN").Reference(ref).Build()
	ing := testutil.NewTransaction("50.00").Source("ING").Reference(ref).Build()
	require.NoError(t, db.Storage.SaveTransactions(ctx, []model.Transaction{checking, ing}))

	linker := importer.NewReferenceLinker(db.Storage, nil)
	require.NoError(t, linker.Link(ctx, []model.Transaction{ing}))

	links, err := db.Storage.GetLinksForTransaction(ctx, checking.ID)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestCompositeLinkerRunsAllLinkers(t *testing.T) {
	ctx := context.Background()
	var calls []string
	composite := importer.CompositeLinker{
		linkerFunc(func(context.Context, []model.Transaction) error {
			calls = append(calls, "first")
			return assert.AnError
		}),
		linkerFunc(func(context.Context, []model.Transaction) error {
			calls = append(calls, "second")
			return nil
		}),
	}

	err := composite.Link(ctx, nil)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"first", "second"}, calls)
}
