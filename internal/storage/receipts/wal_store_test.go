package receipts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/presale/internal/domain"
)

func TestWALStoreLifecycle(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	receipt, err := store.Prepare(domain.SubmissionContribute, decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NotEmpty(t, receipt.ID)
	require.Equal(t, domain.SubmissionPending, receipt.Status)

	require.NoError(t, store.MarkDone(receipt, "0xabc"))
	require.Equal(t, domain.SubmissionDone, receipt.Status)
	require.Equal(t, "0xabc", receipt.TxID)

	// both status transitions are journaled.
	records, err := store.ReceiptsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, domain.SubmissionPending, records[0].Receipt.Status)
	require.Equal(t, domain.SubmissionDone, records[1].Receipt.Status)
	require.Equal(t, receipt.ID, records[1].Receipt.ID)
	require.True(t, decimal.NewFromInt(100).Equal(records[1].Receipt.Amount))
}

func TestWALStoreMarkFailedKeepsReason(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	receipt, err := store.Prepare(domain.SubmissionClaim, decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, store.MarkFailed(receipt, errors.New("sale is not finalized")))

	records, err := store.ReceiptsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	last := records[len(records)-1].Receipt
	require.Equal(t, domain.SubmissionFailed, last.Status)
	require.Equal(t, "sale is not finalized", last.Error)
}

func TestWALStoreReceiptsAfterTail(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	first, err := store.Prepare(domain.SubmissionContribute, decimal.NewFromInt(50))
	require.NoError(t, err)
	cursor := store.CurrentIndex()

	second, err := store.Prepare(domain.SubmissionContribute, decimal.NewFromInt(75))
	require.NoError(t, err)

	records, err := store.ReceiptsAfter(cursor)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, second.ID, records[0].Receipt.ID)
	require.NotEqual(t, first.ID, records[0].Receipt.ID)

	records, err = store.ReceiptsAfter(store.CurrentIndex())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestWALStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewWALStore(dir)
	require.NoError(t, err)
	receipt, err := store.Prepare(domain.SubmissionContribute, decimal.NewFromInt(200))
	require.NoError(t, err)
	require.NoError(t, store.MarkDone(receipt, "0xdeadbeef"))
	require.NoError(t, store.Close())

	reopened, err := NewWALStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.ReceiptsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "0xdeadbeef", records[1].Receipt.TxID)
}
