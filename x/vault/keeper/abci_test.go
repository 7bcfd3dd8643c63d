package keeper

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	"github.com/stretchr/testify/require"
)

func TestEndBlockerSnapshotsRate(t *testing.T) {
	f := setupKeeper(t)
	f.bindStrategy(t)
	f.token.mint("cosmos1alice", math.NewInt(100))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)
	f.strat.accrue(math.NewInt(50))

	require.NoError(t, f.k.EndBlocker(f.ctx))

	points := f.k.GetRateHistory(f.ctx, 0, 0)
	require.Len(t, points, 1)
	require.True(t, points[0].Rate.Equal(math.LegacyNewDecWithPrec(15, 1)),
		"expected rate 1.5, got %s", points[0].Rate)
	require.True(t, points[0].TotalAssets.Equal(math.NewInt(150)))
	require.True(t, points[0].TotalShares.Equal(math.NewInt(100)))

	// Stats TVL tracks the live total including accrued yield
	stats := f.k.GetStats(f.ctx)
	require.True(t, stats.TotalValueLocked.Equal(math.NewInt(150)))
}

func TestEndBlockerOrdersHistoryByHeight(t *testing.T) {
	f := setupKeeper(t)
	f.token.mint("cosmos1alice", math.NewInt(100))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)

	for _, h := range []int64{2, 10, 100} {
		ctx := f.ctx.WithBlockHeader(cmtproto.Header{Height: h, Time: time.Now()})
		require.NoError(t, f.k.EndBlocker(ctx))
	}

	points := f.k.GetRateHistory(f.ctx, 0, 0)
	require.Len(t, points, 3)
}

func TestEndBlockerNoopBeforeInit(t *testing.T) {
	f := setupKeeper(t)

	// Rebuild a keeper without InitVault by wiping the aggregate entry
	f.k.GetStore(f.ctx).Delete(VaultKey)
	require.Nil(t, f.k.GetVault(f.ctx))
	require.NoError(t, f.k.EndBlocker(f.ctx))
	require.Empty(t, f.k.GetRateHistory(f.ctx, 0, 0))
}

func TestEndBlockerEmitsEvent(t *testing.T) {
	f := setupKeeper(t)
	require.NoError(t, f.k.EndBlocker(f.ctx))

	found := false
	for _, ev := range f.ctx.EventManager().Events() {
		if ev.Type == "vault_endblock" {
			found = true
		}
	}
	require.True(t, found, "expected vault_endblock event")
}
