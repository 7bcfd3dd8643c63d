package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/yield-vault/x/vault/types"
)

// TestWithdrawAtYieldedRate reproduces the yielded-pool scenario: a holder
// with 100 shares out of 200, against 300 assets, redeems for
// floor(100*300/200) = 150
func TestWithdrawAtYieldedRate(t *testing.T) {
	f := setupKeeper(t)
	f.bindStrategy(t)

	f.token.mint("cosmos1alice", math.NewInt(100))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)

	f.strat.accrue(math.NewInt(50))

	f.token.mint("cosmos1bob", math.NewInt(150))
	_, err = f.k.Deposit(f.ctx, "cosmos1bob", math.NewInt(150))
	require.NoError(t, err)

	// Pool now: totalShares=200, totalAssets=300
	record, err := f.k.Withdraw(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)

	if !record.AssetsOut.Equal(math.NewInt(150)) {
		t.Errorf("expected 150 assets out, got %s", record.AssetsOut)
	}
	if !f.token.balanceOf("cosmos1alice").Equal(math.NewInt(150)) {
		t.Errorf("expected alice to receive 150, got %s", f.token.balanceOf("cosmos1alice"))
	}

	v := f.k.GetVault(f.ctx)
	if !v.TotalShares.Equal(math.NewInt(100)) {
		t.Errorf("expected total shares 100, got %s", v.TotalShares)
	}
	if !f.k.TotalAssets(f.ctx).Equal(math.NewInt(150)) {
		t.Errorf("expected remaining assets 150, got %s", f.k.TotalAssets(f.ctx))
	}
	f.requireInvariant(t)
}

// TestWithdrawPullsExactShortfall tests that only the shortfall beyond the
// idle balance is requested from the strategy: idle 20, owed 150, pull 130
func TestWithdrawPullsExactShortfall(t *testing.T) {
	f := setupKeeper(t)

	// 100 shares against an idle balance of 100, no strategy bound yet
	f.token.mint("cosmos1alice", math.NewInt(100))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)

	// Delegate 80 of the idle balance and let 50 yield accrue: idle 20,
	// strategy reports 130, totalAssets 150
	f.bindStrategy(t)
	require.NoError(t, f.token.move(testVaultAddr, stratLedgerID, math.NewInt(80)))
	f.strat.assets = f.strat.assets.Add(math.NewInt(80))
	f.strat.accrue(math.NewInt(50))
	require.True(t, f.k.TotalAssets(f.ctx).Equal(math.NewInt(150)))

	record, err := f.k.Withdraw(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)

	if !record.AssetsOut.Equal(math.NewInt(150)) {
		t.Errorf("expected 150 assets out, got %s", record.AssetsOut)
	}
	if !f.strat.lastWithdraw.Equal(math.NewInt(130)) {
		t.Errorf("expected strategy pull of exactly 130, got %s", f.strat.lastWithdraw)
	}
	if !record.StrategyPull.Equal(math.NewInt(130)) {
		t.Errorf("expected recorded strategy pull 130, got %s", record.StrategyPull)
	}
	f.requireInvariant(t)
}

// TestWithdrawValidation tests the rejection paths
func TestWithdrawValidation(t *testing.T) {
	f := setupKeeper(t)
	f.token.mint("cosmos1alice", math.NewInt(100))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)

	if _, err := f.k.Withdraw(f.ctx, "cosmos1alice", math.ZeroInt()); err != types.ErrZeroShares {
		t.Errorf("expected ErrZeroShares, got %v", err)
	}
	if _, err := f.k.Withdraw(f.ctx, "cosmos1alice", math.NewInt(101)); err != types.ErrInsufficientShares {
		t.Errorf("expected ErrInsufficientShares, got %v", err)
	}
	if _, err := f.k.Withdraw(f.ctx, "cosmos1bob", math.NewInt(1)); err != types.ErrInsufficientShares {
		t.Errorf("expected ErrInsufficientShares for stranger, got %v", err)
	}

	require.NoError(t, f.k.SetPaused(f.ctx, testOwner, true))
	if _, err := f.k.Withdraw(f.ctx, "cosmos1alice", math.NewInt(50)); err != types.ErrVaultPaused {
		t.Errorf("expected ErrVaultPaused, got %v", err)
	}

	// State untouched by any of the rejections
	if !f.k.GetBalance(f.ctx, "cosmos1alice").Equal(math.NewInt(100)) {
		t.Errorf("expected alice balance unchanged at 100, got %s", f.k.GetBalance(f.ctx, "cosmos1alice"))
	}
	f.requireInvariant(t)
}

// TestWithdrawPayoutFailureRollsBackBurn tests that a failed payout
// transfer aborts the burn
func TestWithdrawPayoutFailureRollsBackBurn(t *testing.T) {
	f := setupKeeper(t)
	f.token.mint("cosmos1alice", math.NewInt(100))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)

	f.token.failTransfer = true
	_, err = f.k.Withdraw(f.ctx, "cosmos1alice", math.NewInt(40))
	require.Error(t, err)

	v := f.k.GetVault(f.ctx)
	if !v.TotalShares.Equal(math.NewInt(100)) {
		t.Errorf("expected burn rolled back, total shares %s", v.TotalShares)
	}
	if !f.k.GetBalance(f.ctx, "cosmos1alice").Equal(math.NewInt(100)) {
		t.Errorf("expected alice balance unchanged at 100, got %s", f.k.GetBalance(f.ctx, "cosmos1alice"))
	}
	if withdrawals := f.k.GetUserWithdrawals(f.ctx, "cosmos1alice"); len(withdrawals) != 0 {
		t.Errorf("expected no withdrawal records, got %d", len(withdrawals))
	}
	f.requireInvariant(t)
}

// TestWithdrawStrategyShortReturnFails tests that a strategy returning
// less than the requested shortfall aborts the withdrawal
func TestWithdrawStrategyShortReturnFails(t *testing.T) {
	f := setupKeeper(t)
	f.bindStrategy(t)
	f.token.mint("cosmos1alice", math.NewInt(100))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)

	f.strat.shortWithdraw = true
	_, err = f.k.Withdraw(f.ctx, "cosmos1alice", math.NewInt(100))
	require.Error(t, err)

	v := f.k.GetVault(f.ctx)
	if !v.TotalShares.Equal(math.NewInt(100)) {
		t.Errorf("expected burn rolled back, total shares %s", v.TotalShares)
	}
	f.requireInvariant(t)
}

// TestWithdrawFullDrain tests withdrawing the entire pool back to empty
func TestWithdrawFullDrain(t *testing.T) {
	f := setupKeeper(t)
	f.token.mint("cosmos1alice", math.NewInt(250))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(250))
	require.NoError(t, err)

	record, err := f.k.Withdraw(f.ctx, "cosmos1alice", math.NewInt(250))
	require.NoError(t, err)

	if !record.AssetsOut.Equal(math.NewInt(250)) {
		t.Errorf("expected 250 assets out, got %s", record.AssetsOut)
	}

	v := f.k.GetVault(f.ctx)
	if !v.TotalShares.IsZero() {
		t.Errorf("expected empty pool, total shares %s", v.TotalShares)
	}
	// Next deposit bootstraps 1:1 again
	f.token.mint("cosmos1bob", math.NewInt(7))
	rec2, err := f.k.Deposit(f.ctx, "cosmos1bob", math.NewInt(7))
	require.NoError(t, err)
	if !rec2.SharesMinted.Equal(math.NewInt(7)) {
		t.Errorf("expected 1:1 bootstrap after drain, got %s", rec2.SharesMinted)
	}
	f.requireInvariant(t)
}

// TestConservationWithoutYield tests that with no yield the pool never
// pays out more than was put in, with rounding loss favoring the pool
func TestConservationWithoutYield(t *testing.T) {
	f := setupKeeper(t)

	holders := []string{"cosmos1u1", "cosmos1u2", "cosmos1u3"}
	amounts := []int64{97, 311, 56}
	for i, h := range holders {
		f.token.mint(h, math.NewInt(amounts[i]))
		_, err := f.k.Deposit(f.ctx, h, math.NewInt(amounts[i]))
		require.NoError(t, err)
	}

	// Partial withdrawals in arbitrary order
	for _, w := range []struct {
		holder string
		shares int64
	}{
		{"cosmos1u2", 150},
		{"cosmos1u1", 97},
		{"cosmos1u3", 13},
		{"cosmos1u2", 161},
	} {
		_, err := f.k.Withdraw(f.ctx, w.holder, math.NewInt(w.shares))
		require.NoError(t, err)
	}

	// Claims in asset terms never exceed what the pool holds
	v := f.k.GetVault(f.ctx)
	claims := f.k.ConvertToAssets(f.ctx, v.TotalShares)
	if claims.GT(f.k.TotalAssets(f.ctx)) {
		t.Errorf("claims %s exceed pool assets %s", claims, f.k.TotalAssets(f.ctx))
	}
	f.requireInvariant(t)
}
