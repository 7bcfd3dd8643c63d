package types

import (
	"cosmossdk.io/errors"
)

// Module error codes
var (
	ErrUnauthorized       = errors.Register(ModuleName, 1, "caller is not the vault owner")
	ErrZeroAmount         = errors.Register(ModuleName, 2, "amount must be positive")
	ErrZeroShares         = errors.Register(ModuleName, 3, "shares must be positive")
	ErrVaultPaused        = errors.Register(ModuleName, 4, "vault is paused")
	ErrInsufficientShares = errors.Register(ModuleName, 5, "insufficient shares for withdrawal")
	ErrEmptyAddress       = errors.Register(ModuleName, 6, "address must not be empty")
	ErrStrategyNotFound   = errors.Register(ModuleName, 7, "strategy not registered")
	ErrAssetTransfer      = errors.Register(ModuleName, 8, "asset transfer failed")
	ErrStrategyCall       = errors.Register(ModuleName, 9, "strategy call failed")
	ErrUnpriceable        = errors.Register(ModuleName, 10, "shares outstanding but no assets to price against")
	ErrNotInitialized     = errors.Register(ModuleName, 11, "vault not initialized")
)
