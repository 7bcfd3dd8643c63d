package keeper

import (
	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// Withdraw burns shares and pays out the asset amount they redeem for at
// the current rate, pulling any shortfall beyond the vault's idle balance
// from the bound strategy.
//
// The owed amount is computed off totals frozen before the burn: reducing
// the share supply first while TotalAssets is unchanged would overpay the
// withdrawer at the expense of remaining holders.
func (k *Keeper) Withdraw(ctx sdk.Context, withdrawer string, shares math.Int) (*types.WithdrawalRecord, error) {
	v := k.GetVault(ctx)
	if v == nil {
		return nil, types.ErrNotInitialized
	}
	if !shares.IsPositive() {
		return nil, types.ErrZeroShares
	}
	if v.Paused {
		return nil, types.ErrVaultPaused
	}

	balance := k.GetBalance(ctx, withdrawer)
	if balance.LT(shares) {
		return nil, types.ErrInsufficientShares
	}

	// Freeze inputs before mutating supply. totalShares > 0 here because
	// the withdrawer holds at least `shares` of it.
	totalShares := v.TotalShares
	owed := assetsForShares(shares, totalShares, k.TotalAssets(ctx))

	cacheCtx, write := ctx.CacheContext()

	k.setBalance(cacheCtx, withdrawer, balance.Sub(shares))
	v.TotalShares = totalShares.Sub(shares)
	v.Touch()
	k.SetVault(cacheCtx, v)

	cacheCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_withdraw",
			sdk.NewAttribute("withdrawer", withdrawer),
			sdk.NewAttribute("assets_out", owed.String()),
			sdk.NewAttribute("shares_burned", shares.String()),
		),
	)

	// Pull exactly the shortfall from the strategy, never the full owed
	// amount: idle balance is spent first to avoid strategy churn.
	strategyPull := math.ZeroInt()
	held := k.assetToken.BalanceOf(cacheCtx, k.vaultAddress)
	if held.LT(owed) && v.HasStrategy() {
		strat, ok := k.strategies.Resolve(v.Strategy)
		if !ok {
			return nil, types.ErrStrategyNotFound
		}
		shortfall := owed.Sub(held)
		returned, err := strat.Withdraw(cacheCtx, shortfall)
		if err != nil {
			return nil, errorsmod.Wrap(types.ErrStrategyCall, err.Error())
		}
		if returned.LT(shortfall) {
			return nil, errorsmod.Wrapf(types.ErrStrategyCall,
				"strategy returned %s of requested %s", returned.String(), shortfall.String())
		}
		strategyPull = shortfall
	}

	if err := k.assetToken.Transfer(cacheCtx, withdrawer, owed); err != nil {
		return nil, errorsmod.Wrap(types.ErrAssetTransfer, err.Error())
	}

	record := types.NewWithdrawalRecord(withdrawer, shares, owed, strategyPull)
	k.SetWithdrawalRecord(cacheCtx, record)

	stats := k.GetStats(cacheCtx)
	stats.TotalWithdrawn = stats.TotalWithdrawn.Add(owed)
	stats.TotalValueLocked = k.TotalAssets(cacheCtx)
	if strategyPull.IsPositive() {
		stats.StrategyPulls++
	}
	stats.UpdatedAt = record.WithdrawnAt
	k.SetStats(cacheCtx, stats)

	write()

	k.logger.Info("Withdrawal processed",
		"withdrawer", withdrawer,
		"shares", shares.String(),
		"assets_out", owed.String(),
		"strategy_pull", strategyPull.String(),
	)

	return record, nil
}
