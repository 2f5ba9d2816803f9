package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ledger/nexusd/internal/core/amm"
)

func TestCreateAsset(t *testing.T) {
	s := NewStore()

	a, err := s.CreateAsset("USD", "1000000", "rIssuer", AssetFlags{RequireAuth: true})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "USD", a.Currency)
	assert.True(t, a.Flags.RequireAuth)

	t.Run("duplicate currency/issuer rejected", func(t *testing.T) {
		_, err := s.CreateAsset("USD", "5", "rIssuer", AssetFlags{})
		assert.ErrorIs(t, err, ErrAssetExists)
	})

	t.Run("same currency different issuer allowed", func(t *testing.T) {
		b, err := s.CreateAsset("USD", "5", "rOther", AssetFlags{})
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID, "asset identifiers are never reused")
	})

	t.Run("lookup by currency pair", func(t *testing.T) {
		got, err := s.AssetByCurrency("USD", "rIssuer")
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)

		_, err = s.AssetByCurrency("EUR", "rIssuer")
		assert.ErrorIs(t, err, ErrAssetNotFound)
	})
}

func TestAssetsReturnsCopies(t *testing.T) {
	s := NewStore()
	_, err := s.CreateAsset("USD", "100", "rIssuer", AssetFlags{})
	require.NoError(t, err)

	assets := s.Assets()
	assets[0].Supply = "tampered"

	again := s.Assets()
	assert.Equal(t, "100", again[0].Supply, "reads must not expose internal state")
}

func TestHolderLifecycle(t *testing.T) {
	s := NewStore()
	a, err := s.CreateAsset("USD", "1000", "rIssuer", AssetFlags{RequireAuth: true})
	require.NoError(t, err)

	h := Holder{Address: "rAlice", Balance: "250.00", Limit: "1000", Tier: 1}
	require.NoError(t, s.AddHolder(a.ID, h))

	t.Run("one record per pair", func(t *testing.T) {
		err := s.AddHolder(a.ID, Holder{Address: "rAlice"})
		assert.ErrorIs(t, err, ErrHolderExists)
	})

	t.Run("status defaults to active", func(t *testing.T) {
		got, err := s.Holder(a.ID, "rAlice")
		require.NoError(t, err)
		assert.Equal(t, HolderActive, got.Status)
	})

	t.Run("freeze and unfreeze", func(t *testing.T) {
		require.NoError(t, s.SetHolderStatus(a.ID, "rAlice", HolderFrozen))
		got, _ := s.Holder(a.ID, "rAlice")
		assert.Equal(t, HolderFrozen, got.Status)
	})

	t.Run("authorize bumps the tier", func(t *testing.T) {
		require.NoError(t, s.AuthorizeHolder(a.ID, "rAlice"))
		got, _ := s.Holder(a.ID, "rAlice")
		assert.Equal(t, HolderActive, got.Status)
		assert.Equal(t, 2, got.Tier)
	})

	t.Run("clawback zeroes the balance", func(t *testing.T) {
		require.NoError(t, s.ZeroHolderBalance(a.ID, "rAlice"))
		got, _ := s.Holder(a.ID, "rAlice")
		assert.Equal(t, "0.00", got.Balance)
	})

	t.Run("unknown holder", func(t *testing.T) {
		assert.ErrorIs(t, s.SetHolderStatus(a.ID, "rNobody", HolderFrozen), ErrHolderNotFound)
		assert.ErrorIs(t, s.AddHolder("no-such-asset", Holder{Address: "rX"}), ErrAssetNotFound)
	})
}

func TestAuditLogOrdering(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))

	var ids []string
	for _, hash := range []string{"AAA", "BBB", "CCC"} {
		e := s.AppendAudit(AuditEntry{Hash: hash, Type: "Payment", Status: StatusValidated, Details: "Sent 1 XRP"})
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, now, e.Timestamp)
		ids = append(ids, e.ID)
	}

	log := s.AuditLog()
	require.Len(t, log, 3)
	assert.Equal(t, "CCC", log[0].Hash, "retrieval is newest-first")
	assert.Equal(t, "AAA", log[2].Hash)
	assert.Equal(t, 3, s.AuditLen())

	t.Run("lookup by id", func(t *testing.T) {
		e, ok := s.EntryByID(ids[1])
		require.True(t, ok)
		assert.Equal(t, "BBB", e.Hash)

		_, ok = s.EntryByID("missing")
		assert.False(t, ok)
	})

	t.Run("lookup by hash distinguishes not-found", func(t *testing.T) {
		e, ok := s.EntryByHash("CCC")
		require.True(t, ok)
		assert.Equal(t, StatusValidated, e.Status)

		_, ok = s.EntryByHash("ZZZ")
		assert.False(t, ok)
	})
}

func TestPools(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.CreatePool(PairKey("XRP", "USD"), "rCreator", "1000", "550", 500))

	t.Run("duplicate pair rejected", func(t *testing.T) {
		err := s.CreatePool(PairKey("XRP", "USD"), "rCreator", "1", "1", 0)
		assert.ErrorIs(t, err, ErrPoolExists)
	})

	t.Run("snapshot", func(t *testing.T) {
		info, err := s.Pool(PairKey("XRP", "USD"))
		require.NoError(t, err)
		assert.Equal(t, "1000", info.BaseReserve)
		assert.Equal(t, "550", info.QuoteReserve)
		assert.Equal(t, uint16(500), info.FeeBps)
	})

	t.Run("mutate under the write lock", func(t *testing.T) {
		err := s.MutatePool(PairKey("XRP", "USD"), func(p *amm.Pool) error {
			_, err := p.DepositBalanced("rLP", "100", "55")
			return err
		})
		require.NoError(t, err)

		info, _ := s.Pool(PairKey("XRP", "USD"))
		assert.Equal(t, "1100", info.BaseReserve)
	})

	t.Run("unknown pair", func(t *testing.T) {
		_, err := s.Pool(PairKey("XRP", "EUR"))
		assert.ErrorIs(t, err, ErrPoolNotFound)
		err = s.MutatePool(PairKey("XRP", "EUR"), func(p *amm.Pool) error { return nil })
		assert.ErrorIs(t, err, ErrPoolNotFound)
	})
}

func TestSeedDemo(t *testing.T) {
	s := NewStore()
	require.NoError(t, SeedDemo(s))

	assets := s.Assets()
	require.Len(t, assets, 3)
	assert.Equal(t, "USD", assets[0].Currency)
	assert.Equal(t, "EUR", assets[1].Currency)
	assert.Equal(t, "GOLD", assets[2].Currency)
	assert.True(t, assets[2].Flags.Freeze)

	gold := assets[2]
	holders, err := s.Holders(gold.ID)
	require.NoError(t, err)
	require.Len(t, holders, 1)
	assert.Equal(t, HolderFrozen, holders[0].Status)

	info, err := s.Pool(PairKey("XRP", "USD"))
	require.NoError(t, err)
	assert.Equal(t, "1000", info.BaseReserve)
	assert.Equal(t, "550", info.QuoteReserve)
}

func TestDemoBook(t *testing.T) {
	book := DemoBook()
	assert.Equal(t, "XRP/USD", book.Pair)
	require.Len(t, book.Bids, 5)
	require.Len(t, book.Asks, 5)

	// bids descend, asks ascend, and the spread is positive
	for i := 1; i < len(book.Bids); i++ {
		assert.Greater(t, book.Bids[i-1].Price, book.Bids[i].Price)
	}
	for i := 1; i < len(book.Asks); i++ {
		assert.Less(t, book.Asks[i-1].Price, book.Asks[i].Price)
	}
	assert.Less(t, book.Bids[0].Price, book.Asks[0].Price)
}
