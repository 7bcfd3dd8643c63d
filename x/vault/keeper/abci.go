package keeper

import (
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// EndBlocker snapshots the exchange rate and refreshes running stats once
// per block. The snapshot reads live totals, so accrued strategy yield
// shows up here without any explicit report call.
func (k *Keeper) EndBlocker(ctx sdk.Context) error {
	v := k.GetVault(ctx)
	if v == nil {
		return nil
	}

	start := time.Now()
	height := ctx.BlockHeight()

	totalAssets := k.TotalAssets(ctx)
	rate := k.ExchangeRate(ctx)

	k.AddRatePoint(ctx, height, &types.RatePoint{
		Rate:        rate,
		TotalAssets: totalAssets,
		TotalShares: v.TotalShares,
		Timestamp:   time.Now().Unix(),
	})

	stats := k.GetStats(ctx)
	stats.TotalValueLocked = totalAssets
	stats.UpdatedAt = time.Now().Unix()
	k.SetStats(ctx, stats)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"vault_endblock",
			sdk.NewAttribute("block_height", math.NewInt(height).String()),
			sdk.NewAttribute("total_assets", totalAssets.String()),
			sdk.NewAttribute("exchange_rate", rate.String()),
		),
	)

	k.logger.Debug("Vault EndBlocker completed",
		"block", height,
		"total_assets", totalAssets.String(),
		"rate", rate.String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}
