package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// Deposit pulls amount from the depositor's ledger balance, mints shares at
// the pre-deposit exchange rate, and forwards the pulled amount to the
// bound strategy if one is set.
//
// All state writes run on a branched store committed only on success, so a
// failure at any step, including the strategy forward after minting,
// leaves the vault untouched.
func (k *Keeper) Deposit(ctx sdk.Context, depositor string, amount math.Int) (*types.DepositRecord, error) {
	v := k.GetVault(ctx)
	if v == nil {
		return nil, types.ErrNotInitialized
	}
	if !amount.IsPositive() {
		return nil, types.ErrZeroAmount
	}
	if v.Paused {
		return nil, types.ErrVaultPaused
	}

	// Freeze the rate before the incoming funds land. Pricing off totals
	// that already include the pulled amount would be self-referential and
	// inflate the minted shares.
	totalShares := v.TotalShares
	totalAssets := k.TotalAssets(ctx)

	cacheCtx, write := ctx.CacheContext()

	if err := k.assetToken.TransferFrom(cacheCtx, depositor, k.vaultAddress, amount); err != nil {
		return nil, errorsmod.Wrap(types.ErrAssetTransfer, err.Error())
	}

	shares, err := sharesForAssets(amount, totalShares, totalAssets)
	if err != nil {
		return nil, err
	}

	balance := k.GetBalance(cacheCtx, depositor)
	firstDeposit := balance.IsZero()
	k.setBalance(cacheCtx, depositor, balance.Add(shares))

	v.TotalShares = totalShares.Add(shares)
	v.Touch()
	k.SetVault(cacheCtx, v)

	record := types.NewDepositRecord(depositor, amount, shares)
	k.SetDepositRecord(cacheCtx, record)

	stats := k.GetStats(cacheCtx)
	stats.TotalDeposited = stats.TotalDeposited.Add(amount)
	stats.TotalValueLocked = totalAssets.Add(amount)
	if firstDeposit {
		stats.TotalDepositors++
	}
	stats.UpdatedAt = record.DepositedAt
	k.SetStats(cacheCtx, stats)

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_deposit",
			sdk.NewAttribute("depositor", depositor),
			sdk.NewAttribute("amount", amount.String()),
			sdk.NewAttribute("shares_minted", shares.String()),
		),
	)

	// Forwarding happens after minting so the deposit is recorded at the
	// pre-forward rate; it must not change the minted share count.
	if v.HasStrategy() {
		strat, ok := k.strategies.Resolve(v.Strategy)
		if !ok {
			return nil, types.ErrStrategyNotFound
		}
		if err := k.assetToken.Approve(cacheCtx, v.Strategy, amount); err != nil {
			return nil, errorsmod.Wrap(types.ErrAssetTransfer, err.Error())
		}
		if err := strat.Deposit(cacheCtx, amount); err != nil {
			return nil, errorsmod.Wrap(types.ErrStrategyCall, err.Error())
		}
	}

	write()

	k.logger.Info("Deposit processed",
		"depositor", depositor,
		"amount", amount.String(),
		"shares", shares.String(),
	)

	return record, nil
}
