package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// QueryServer defines the vault QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// Vault returns the vault aggregate
func (q *QueryServer) Vault(ctx context.Context) (*types.Vault, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	v := q.keeper.GetVault(sdkCtx)
	if v == nil {
		return nil, types.ErrNotInitialized
	}
	return v, nil
}

// TotalAssets returns the vault's live asset total (idle plus strategy)
func (q *QueryServer) TotalAssets(ctx context.Context) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.TotalAssets(sdkCtx), nil
}

// ExchangeRate returns the current assets-per-share rate
func (q *QueryServer) ExchangeRate(ctx context.Context) (math.LegacyDec, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.ExchangeRate(sdkCtx), nil
}

// Balance returns a holder's share balance and its current asset value
func (q *QueryServer) Balance(ctx context.Context, holder string) (shares, value math.Int, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	shares = q.keeper.GetBalance(sdkCtx, holder)
	value = q.keeper.ConvertToAssets(sdkCtx, shares)
	return shares, value, nil
}

// ConvertToShares previews the share count for an asset amount
func (q *QueryServer) ConvertToShares(ctx context.Context, assets math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.ConvertToShares(sdkCtx, assets)
}

// ConvertToAssets previews the asset amount for a share count
func (q *QueryServer) ConvertToAssets(ctx context.Context, shares math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.ConvertToAssets(sdkCtx, shares), nil
}

// UserDeposits returns all deposit records for a user
func (q *QueryServer) UserDeposits(ctx context.Context, user string) ([]*types.DepositRecord, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetUserDeposits(sdkCtx, user), nil
}

// UserWithdrawals returns all withdrawal records for a user
func (q *QueryServer) UserWithdrawals(ctx context.Context, user string) ([]*types.WithdrawalRecord, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetUserWithdrawals(sdkCtx, user), nil
}

// RateHistory returns exchange-rate snapshots in the given time window
func (q *QueryServer) RateHistory(ctx context.Context, fromTime, toTime int64) ([]*types.RatePoint, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetRateHistory(sdkCtx, fromTime, toTime), nil
}

// Stats returns the vault's running statistics
func (q *QueryServer) Stats(ctx context.Context) (*types.VaultStats, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetStats(sdkCtx), nil
}
