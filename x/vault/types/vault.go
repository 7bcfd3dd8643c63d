package types

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "vault"
	StoreKey   = ModuleName
)

// Vault is the pooled-custody aggregate: total share supply plus the
// administrative state that gates deposits and withdrawals. Holder balances
// and operation records live under their own store prefixes. Total assets
// are never stored; they are recomputed from the asset ledger and the bound
// strategy on every read.
type Vault struct {
	Owner       string   `json:"owner"`
	Strategy    string   `json:"strategy,omitempty"` // bound strategy ID, empty when unbound
	Paused      bool     `json:"paused"`
	TotalShares math.Int `json:"total_shares"`

	// Timestamps
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// NewVault creates a vault with an empty pool and no strategy bound
func NewVault(owner string) *Vault {
	now := time.Now().Unix()
	return &Vault{
		Owner:       owner,
		Strategy:    "",
		Paused:      false,
		TotalShares: math.ZeroInt(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasStrategy reports whether a strategy is currently bound
func (v *Vault) HasStrategy() bool {
	return v.Strategy != ""
}

// Touch refreshes the update timestamp
func (v *Vault) Touch() {
	v.UpdatedAt = time.Now().Unix()
}

// DepositRecord represents a completed deposit
type DepositRecord struct {
	DepositID    string   `json:"deposit_id"`
	Depositor    string   `json:"depositor"`
	Amount       math.Int `json:"amount"`
	SharesMinted math.Int `json:"shares_minted"`
	DepositedAt  int64    `json:"deposited_at"`
}

// NewDepositRecord creates a new deposit record
func NewDepositRecord(depositor string, amount, shares math.Int) *DepositRecord {
	return &DepositRecord{
		DepositID:    generateID("dep"),
		Depositor:    depositor,
		Amount:       amount,
		SharesMinted: shares,
		DepositedAt:  time.Now().Unix(),
	}
}

// WithdrawalRecord represents a completed withdrawal
type WithdrawalRecord struct {
	WithdrawalID string   `json:"withdrawal_id"`
	Withdrawer   string   `json:"withdrawer"`
	SharesBurned math.Int `json:"shares_burned"`
	AssetsOut    math.Int `json:"assets_out"`
	StrategyPull math.Int `json:"strategy_pull"` // portion covered by the strategy
	WithdrawnAt  int64    `json:"withdrawn_at"`
}

// NewWithdrawalRecord creates a new withdrawal record
func NewWithdrawalRecord(withdrawer string, shares, assets, strategyPull math.Int) *WithdrawalRecord {
	return &WithdrawalRecord{
		WithdrawalID: generateID("wth"),
		Withdrawer:   withdrawer,
		SharesBurned: shares,
		AssetsOut:    assets,
		StrategyPull: strategyPull,
		WithdrawnAt:  time.Now().Unix(),
	}
}

// VaultStats aggregates vault statistics
type VaultStats struct {
	TotalValueLocked math.Int `json:"total_value_locked"`
	TotalDepositors  int64    `json:"total_depositors"`
	TotalDeposited   math.Int `json:"total_deposited"`
	TotalWithdrawn   math.Int `json:"total_withdrawn"`
	StrategyPulls    int64    `json:"strategy_pulls"`
	UpdatedAt        int64    `json:"updated_at"`
}

// NewVaultStats creates a zeroed stats record
func NewVaultStats() *VaultStats {
	return &VaultStats{
		TotalValueLocked: math.ZeroInt(),
		TotalDepositors:  0,
		TotalDeposited:   math.ZeroInt(),
		TotalWithdrawn:   math.ZeroInt(),
		StrategyPulls:    0,
		UpdatedAt:        time.Now().Unix(),
	}
}

// RatePoint stores a historical exchange-rate data point
type RatePoint struct {
	Rate        math.LegacyDec `json:"rate"` // assets per share
	TotalAssets math.Int       `json:"total_assets"`
	TotalShares math.Int       `json:"total_shares"`
	Timestamp   int64          `json:"timestamp"`
}

// generateID generates a random ID with the given prefix
func generateID(prefix string) string {
	b := make([]byte, 8)
	rand.Read(b)
	return prefix + "-" + hex.EncodeToString(b)
}
