package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// MsgServer defines the vault MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// parseInt parses a positive integer amount from its message encoding
func parseInt(s string) (math.Int, error) {
	amount, ok := math.NewIntFromString(s)
	if !ok {
		return math.Int{}, types.ErrZeroAmount
	}
	return amount, nil
}

// Deposit handles MsgDeposit
func (m *MsgServer) Deposit(ctx context.Context, msg *types.MsgDeposit) (*types.MsgDepositResponse, error) {
	amount, err := parseInt(msg.Amount)
	if err != nil {
		return nil, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	record, err := m.keeper.Deposit(sdkCtx, msg.Depositor, amount)
	if err != nil {
		return nil, err
	}

	return &types.MsgDepositResponse{
		DepositID:    record.DepositID,
		SharesMinted: record.SharesMinted.String(),
	}, nil
}

// Withdraw handles MsgWithdraw
func (m *MsgServer) Withdraw(ctx context.Context, msg *types.MsgWithdraw) (*types.MsgWithdrawResponse, error) {
	shares, err := parseInt(msg.Shares)
	if err != nil {
		return nil, types.ErrZeroShares
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	record, err := m.keeper.Withdraw(sdkCtx, msg.Withdrawer, shares)
	if err != nil {
		return nil, err
	}

	return &types.MsgWithdrawResponse{
		WithdrawalID: record.WithdrawalID,
		AssetsOut:    record.AssetsOut.String(),
		SharesBurned: record.SharesBurned.String(),
	}, nil
}

// SetStrategy handles MsgSetStrategy
func (m *MsgServer) SetStrategy(ctx context.Context, msg *types.MsgSetStrategy) (*types.MsgSetStrategyResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.SetStrategy(sdkCtx, msg.Owner, msg.Strategy); err != nil {
		return nil, err
	}
	return &types.MsgSetStrategyResponse{Strategy: msg.Strategy}, nil
}

// SetPaused handles MsgSetPaused
func (m *MsgServer) SetPaused(ctx context.Context, msg *types.MsgSetPaused) (*types.MsgSetPausedResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.SetPaused(sdkCtx, msg.Owner, msg.Paused); err != nil {
		return nil, err
	}
	return &types.MsgSetPausedResponse{Paused: msg.Paused}, nil
}

// TransferOwnership handles MsgTransferOwnership
func (m *MsgServer) TransferOwnership(ctx context.Context, msg *types.MsgTransferOwnership) (*types.MsgTransferOwnershipResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.TransferOwnership(sdkCtx, msg.Owner, msg.NewOwner); err != nil {
		return nil, err
	}
	return &types.MsgTransferOwnershipResponse{NewOwner: msg.NewOwner}, nil
}
