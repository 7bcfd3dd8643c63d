package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// TotalAssets returns the vault's idle ledger balance plus whatever the
// bound strategy currently reports. Always recomputed: strategy yield
// accrues between calls, so this value must never be cached.
func (k *Keeper) TotalAssets(ctx sdk.Context) math.Int {
	total := k.assetToken.BalanceOf(ctx, k.vaultAddress)

	v := k.GetVault(ctx)
	if v != nil && v.HasStrategy() {
		if strat, ok := k.strategies.Resolve(v.Strategy); ok {
			total = total.Add(strat.TotalAssets(ctx))
		}
	}
	return total
}

// ConvertToShares returns the share count the given asset amount buys at
// the current exchange rate
func (k *Keeper) ConvertToShares(ctx sdk.Context, assets math.Int) (math.Int, error) {
	totalShares := math.ZeroInt()
	if v := k.GetVault(ctx); v != nil {
		totalShares = v.TotalShares
	}
	return sharesForAssets(assets, totalShares, k.TotalAssets(ctx))
}

// ConvertToAssets returns the asset amount the given shares redeem for at
// the current exchange rate
func (k *Keeper) ConvertToAssets(ctx sdk.Context, shares math.Int) math.Int {
	totalShares := math.ZeroInt()
	if v := k.GetVault(ctx); v != nil {
		totalShares = v.TotalShares
	}
	return assetsForShares(shares, totalShares, k.TotalAssets(ctx))
}

// ExchangeRate returns the current assets-per-share rate as a decimal for
// display. An empty pool reports the 1:1 bootstrap rate.
func (k *Keeper) ExchangeRate(ctx sdk.Context) math.LegacyDec {
	v := k.GetVault(ctx)
	if v == nil || v.TotalShares.IsZero() {
		return math.LegacyOneDec()
	}
	return math.LegacyNewDecFromInt(k.TotalAssets(ctx)).QuoInt(v.TotalShares)
}

// sharesForAssets prices a deposit off the given frozen totals.
//
// Empty pool mints 1:1 (bootstrap rule). Otherwise floor(assets * shares /
// totalAssets): the multiply runs on big integers, so it cannot overflow
// before the division, and the truncation always favors the pool. A pool
// with shares outstanding but zero assets cannot price a deposit at all.
func sharesForAssets(assets, totalShares, totalAssets math.Int) (math.Int, error) {
	if totalShares.IsZero() {
		return assets, nil
	}
	if !totalAssets.IsPositive() {
		return math.Int{}, types.ErrUnpriceable
	}
	return assets.Mul(totalShares).Quo(totalAssets), nil
}

// assetsForShares values a redemption off the given frozen totals, floor
// rounded toward the pool
func assetsForShares(shares, totalShares, totalAssets math.Int) math.Int {
	if totalShares.IsZero() {
		return shares
	}
	return shares.Mul(totalAssets).Quo(totalShares)
}
