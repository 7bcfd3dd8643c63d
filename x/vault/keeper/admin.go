package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// SetStrategy rebinds the yield strategy. Owner only; the new strategy
// must be registered.
func (k *Keeper) SetStrategy(ctx sdk.Context, caller, strategyID string) error {
	v := k.GetVault(ctx)
	if v == nil {
		return types.ErrNotInitialized
	}
	if caller != v.Owner {
		return types.ErrUnauthorized
	}
	if strategyID == "" {
		return types.ErrEmptyAddress
	}
	if _, ok := k.strategies.Resolve(strategyID); !ok {
		return types.ErrStrategyNotFound
	}

	v.Strategy = strategyID
	v.Touch()
	k.SetVault(ctx, v)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_strategy_updated",
			sdk.NewAttribute("strategy", strategyID),
		),
	)

	k.logger.Info("Strategy rebound", "strategy", strategyID)
	return nil
}

// SetPaused toggles the deposit/withdraw kill switch. Owner only.
func (k *Keeper) SetPaused(ctx sdk.Context, caller string, paused bool) error {
	v := k.GetVault(ctx)
	if v == nil {
		return types.ErrNotInitialized
	}
	if caller != v.Owner {
		return types.ErrUnauthorized
	}

	v.Paused = paused
	v.Touch()
	k.SetVault(ctx, v)

	eventType := "vault_unpaused"
	if paused {
		eventType = "vault_paused"
	}
	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			eventType,
			sdk.NewAttribute("caller", caller),
		),
	)

	k.logger.Info("Pause flag set", "paused", paused)
	return nil
}

// TransferOwnership rebinds the privileged owner. Owner only; the new
// owner must be a real address.
func (k *Keeper) TransferOwnership(ctx sdk.Context, caller, newOwner string) error {
	v := k.GetVault(ctx)
	if v == nil {
		return types.ErrNotInitialized
	}
	if caller != v.Owner {
		return types.ErrUnauthorized
	}
	if newOwner == "" {
		return types.ErrEmptyAddress
	}

	v.Owner = newOwner
	v.Touch()
	k.SetVault(ctx, v)

	k.logger.Info("Ownership transferred", "new_owner", newOwner)
	return nil
}
