package keeper

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/yield-vault/x/vault/types"
)

func TestSharesForAssets(t *testing.T) {
	cases := []struct {
		name        string
		assets      int64
		totalShares int64
		totalAssets int64
		want        int64
	}{
		{"bootstrap 1:1", 100, 0, 0, 100},
		{"par pool", 100, 500, 500, 100},
		{"yielded pool floors down", 150, 100, 150, 100},
		{"remainder truncated", 10, 3, 7, 4}, // floor(10*3/7)
		{"tiny deposit rounds to zero", 1, 100, 350, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sharesForAssets(math.NewInt(tc.assets), math.NewInt(tc.totalShares), math.NewInt(tc.totalAssets))
			require.NoError(t, err)
			require.True(t, got.Equal(math.NewInt(tc.want)), "got %s, want %d", got, tc.want)
		})
	}
}

func TestSharesForAssetsUnpriceable(t *testing.T) {
	// Shares outstanding against zero assets: no rate exists
	_, err := sharesForAssets(math.NewInt(100), math.NewInt(50), math.ZeroInt())
	require.ErrorIs(t, err, types.ErrUnpriceable)
}

func TestAssetsForShares(t *testing.T) {
	cases := []struct {
		name        string
		shares      int64
		totalShares int64
		totalAssets int64
		want        int64
	}{
		{"empty pool 1:1", 50, 0, 0, 50},
		{"par pool", 50, 200, 200, 50},
		{"yielded pool", 100, 200, 300, 150},
		{"remainder truncated", 1, 3, 10, 3}, // floor(1*10/3)
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := assetsForShares(math.NewInt(tc.shares), math.NewInt(tc.totalShares), math.NewInt(tc.totalAssets))
			require.True(t, got.Equal(math.NewInt(tc.want)), "got %s, want %d", got, tc.want)
		})
	}
}

// TestConversionRoundTrip tests that converting assets to shares and back
// never produces more than the original amount
func TestConversionRoundTrip(t *testing.T) {
	totalShares := math.NewInt(977)
	totalAssets := math.NewInt(1411)

	for _, x := range []int64{1, 7, 100, 999, 123456789} {
		shares, err := sharesForAssets(math.NewInt(x), totalShares, totalAssets)
		require.NoError(t, err)
		back := assetsForShares(shares, totalShares, totalAssets)
		require.True(t, back.LTE(math.NewInt(x)),
			"round trip of %d produced %s", x, back)
	}
}

// TestConversionWideIntermediate tests that the multiply does not overflow
// on amounts far past 64 bits
func TestConversionWideIntermediate(t *testing.T) {
	huge, ok := math.NewIntFromString("123456789012345678901234567890")
	require.True(t, ok)

	shares, err := sharesForAssets(huge, huge, huge)
	require.NoError(t, err)
	require.True(t, shares.Equal(huge))

	assets := assetsForShares(huge, huge, huge)
	require.True(t, assets.Equal(huge))
}

func TestExchangeRate(t *testing.T) {
	f := setupKeeper(t)

	// Empty pool reports the bootstrap rate
	require.True(t, f.k.ExchangeRate(f.ctx).Equal(math.LegacyOneDec()))

	f.bindStrategy(t)
	f.token.mint("cosmos1alice", math.NewInt(100))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(100))
	require.NoError(t, err)
	require.True(t, f.k.ExchangeRate(f.ctx).Equal(math.LegacyOneDec()))

	f.strat.accrue(math.NewInt(50))
	require.True(t, f.k.ExchangeRate(f.ctx).Equal(math.LegacyNewDecWithPrec(15, 1)),
		"expected rate 1.5, got %s", f.k.ExchangeRate(f.ctx))
}

// TestTotalAssetsIncludesStrategy tests that live totals combine idle and
// delegated balances
func TestTotalAssetsIncludesStrategy(t *testing.T) {
	f := setupKeeper(t)
	require.True(t, f.k.TotalAssets(f.ctx).IsZero())

	f.token.mint(testVaultAddr, math.NewInt(40))
	require.True(t, f.k.TotalAssets(f.ctx).Equal(math.NewInt(40)))

	f.bindStrategy(t)
	f.strat.accrue(math.NewInt(60))
	require.True(t, f.k.TotalAssets(f.ctx).Equal(math.NewInt(100)))
}

func TestConvertKeeperWrappers(t *testing.T) {
	f := setupKeeper(t)
	f.bindStrategy(t)
	f.token.mint("cosmos1alice", math.NewInt(200))
	_, err := f.k.Deposit(f.ctx, "cosmos1alice", math.NewInt(200))
	require.NoError(t, err)
	f.strat.accrue(math.NewInt(100))

	// 200 shares against 300 assets
	shares, err := f.k.ConvertToShares(f.ctx, math.NewInt(150))
	require.NoError(t, err)
	require.True(t, shares.Equal(math.NewInt(100)))

	assets := f.k.ConvertToAssets(f.ctx, math.NewInt(100))
	require.True(t, assets.Equal(math.NewInt(150)))
}
