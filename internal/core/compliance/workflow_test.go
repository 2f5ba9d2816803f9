package compliance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ledger/nexusd/internal/core/ledger"
	"github.com/nexus-ledger/nexusd/internal/core/submit"
)

func newTestWorkflow(t *testing.T) (*Workflow, *ledger.Store) {
	t.Helper()
	store := ledger.NewStore()
	require.NoError(t, ledger.SeedDemo(store))
	pipeline := submit.NewPipeline(store,
		submit.WithHashSource(&submit.SequentialHashes{}),
		submit.WithLatency(0, 0),
	)
	return NewWorkflow(store, pipeline), store
}

func usdAsset(t *testing.T, store *ledger.Store) ledger.Asset {
	t.Helper()
	a, err := store.AssetByCurrency("USD", ledger.ColdWalletAddress)
	require.NoError(t, err)
	return a
}

func TestWorkflowFreeze(t *testing.T) {
	w, store := newTestWorkflow(t)
	usd := usdAsset(t, store)

	assert.Equal(t, StateIdle, w.State())

	require.NoError(t, w.Select(usd.ID, ledger.UserWalletAddress, ActionFreeze))
	assert.Equal(t, StateSelected, w.State())

	assetID, holder, action := w.Selection()
	assert.Equal(t, usd.ID, assetID)
	assert.Equal(t, ledger.UserWalletAddress, holder)
	assert.Equal(t, ActionFreeze, action)

	receipt, err := w.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, w.State())
	assert.Equal(t, submit.TesSUCCESS, receipt.Result)
	assert.Equal(t, "Freeze TrustLine USD", receipt.Summary)

	h, err := store.Holder(usd.ID, ledger.UserWalletAddress)
	require.NoError(t, err)
	assert.Equal(t, ledger.HolderFrozen, h.Status)
	assert.Equal(t, 1, store.AuditLen())

	w.Reset()
	assert.Equal(t, StateIdle, w.State())
}

func TestWorkflowClawback(t *testing.T) {
	w, store := newTestWorkflow(t)
	usd := usdAsset(t, store)

	require.NoError(t, w.Select(usd.ID, ledger.UserWalletAddress, ActionClawback))

	receipt, err := w.Confirm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, submit.TesSUCCESS, receipt.Result)

	h, err := store.Holder(usd.ID, ledger.UserWalletAddress)
	require.NoError(t, err)
	assert.Equal(t, "0.00", h.Balance)
}

// Clawback is only offered on assets whose issuer requires authorization
func TestWorkflowClawbackRequiresAuthFlag(t *testing.T) {
	w, store := newTestWorkflow(t)

	plain, err := store.CreateAsset("ABC", "100", ledger.ColdWalletAddress, ledger.AssetFlags{})
	require.NoError(t, err)
	require.NoError(t, store.AddHolder(plain.ID, ledger.Holder{Address: "rHolder", Balance: "10"}))

	err = w.Select(plain.ID, "rHolder", ActionClawback)
	assert.ErrorIs(t, err, ErrNotPermitted)
	assert.Equal(t, StateIdle, w.State())

	// freeze has no such gate
	assert.NoError(t, w.Select(plain.ID, "rHolder", ActionFreeze))
}

func TestWorkflowTransitions(t *testing.T) {
	w, store := newTestWorkflow(t)
	usd := usdAsset(t, store)

	t.Run("confirm without selection", func(t *testing.T) {
		_, err := w.Confirm(context.Background())
		assert.ErrorIs(t, err, ErrNothingSelected)
	})

	t.Run("cancel without selection", func(t *testing.T) {
		assert.ErrorIs(t, w.Cancel(), ErrNothingSelected)
	})

	t.Run("double select", func(t *testing.T) {
		require.NoError(t, w.Select(usd.ID, ledger.UserWalletAddress, ActionFreeze))
		assert.ErrorIs(t, w.Select(usd.ID, ledger.UserWalletAddress, ActionFreeze), ErrBusy)
	})

	t.Run("cancel has no side effects", func(t *testing.T) {
		require.NoError(t, w.Cancel())
		assert.Equal(t, StateCancelled, w.State())
		assert.Equal(t, 0, store.AuditLen())

		h, err := store.Holder(usd.ID, ledger.UserWalletAddress)
		require.NoError(t, err)
		assert.Equal(t, ledger.HolderActive, h.Status)
	})

	t.Run("reset after cancel", func(t *testing.T) {
		w.Reset()
		assert.Equal(t, StateIdle, w.State())
	})

	t.Run("unknown selections", func(t *testing.T) {
		assert.Error(t, w.Select("no-such-asset", "rX", ActionFreeze))
		assert.Error(t, w.Select(usd.ID, "rNobody", ActionFreeze))
		assert.Error(t, w.Select(usd.ID, ledger.UserWalletAddress, Action("melt")))
	})
}

func TestWorkflowConfirmCancelledContext(t *testing.T) {
	store := ledger.NewStore()
	require.NoError(t, ledger.SeedDemo(store))
	pipeline := submit.NewPipeline(store,
		submit.WithHashSource(&submit.SequentialHashes{}),
		submit.WithLatency(50*time.Millisecond, 50*time.Millisecond),
	)
	w := NewWorkflow(store, pipeline)
	usd, err := store.AssetByCurrency("USD", ledger.ColdWalletAddress)
	require.NoError(t, err)

	require.NoError(t, w.Select(usd.ID, ledger.UserWalletAddress, ActionFreeze))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = w.Confirm(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// the selection survives for a retry; the store is untouched
	assert.Equal(t, StateSelected, w.State())
	assert.Equal(t, 0, store.AuditLen())
}
