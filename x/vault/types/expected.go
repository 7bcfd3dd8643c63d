package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// AssetToken defines the expected interface of the underlying fungible
// asset ledger. The vault only consults balances and moves funds; it never
// inspects ledger internals.
type AssetToken interface {
	// BalanceOf returns the current balance of holder. Read-only.
	BalanceOf(ctx sdk.Context, holder string) math.Int

	// Transfer moves amount from the vault's own balance to the recipient.
	Transfer(ctx sdk.Context, to string, amount math.Int) error

	// TransferFrom moves amount between third parties under a prior
	// approval from the sender.
	TransferFrom(ctx sdk.Context, from, to string, amount math.Int) error

	// Approve authorizes spender to later pull up to amount via TransferFrom.
	Approve(ctx sdk.Context, spender string, amount math.Int) error
}

// Strategy defines the expected interface of an external yield delegate.
type Strategy interface {
	// Deposit accepts amount of the asset (already approved to the
	// strategy) and begins generating yield on it.
	Deposit(ctx sdk.Context, amount math.Int) error

	// Withdraw returns at least amount of the asset to the vault and
	// reports the amount actually returned.
	Withdraw(ctx sdk.Context, amount math.Int) (math.Int, error)

	// TotalAssets reports principal plus accrued yield held on the
	// vault's behalf. Read-only.
	TotalAssets(ctx sdk.Context) math.Int
}

// StrategyRegistry resolves a bound strategy ID to its implementation.
// Registration happens at wiring time; the vault state only stores the ID.
type StrategyRegistry interface {
	Resolve(id string) (Strategy, bool)
}
