package keeper

import (
	"encoding/json"
	"fmt"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/openalpha/yield-vault/x/vault/types"
)

// Store key prefixes
var (
	VaultKey                 = []byte{0x01}
	BalanceKeyPrefix         = []byte{0x02}
	DepositKeyPrefix         = []byte{0x03}
	WithdrawalKeyPrefix      = []byte{0x04}
	UserDepositsKeyPrefix    = []byte{0x05}
	UserWithdrawalsKeyPrefix = []byte{0x06}
	StatsKey                 = []byte{0x07}
	RateHistoryKeyPrefix     = []byte{0x08}
)

// Keeper manages the vault module state. The vault holds idle assets under
// vaultAddress on the external asset ledger; everything share-denominated
// lives in this keeper's store.
type Keeper struct {
	cdc          codec.BinaryCodec
	storeKey     storetypes.StoreKey
	assetToken   types.AssetToken
	strategies   types.StrategyRegistry
	vaultAddress string
	logger       log.Logger
}

// NewKeeper creates a new vault keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	assetToken types.AssetToken,
	strategies types.StrategyRegistry,
	vaultAddress string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:          cdc,
		storeKey:     storeKey,
		assetToken:   assetToken,
		strategies:   strategies,
		vaultAddress: vaultAddress,
		logger:       logger.With("module", "x/vault"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// VaultAddress returns the ledger address under which idle assets are held
func (k *Keeper) VaultAddress() string {
	return k.vaultAddress
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// ============ Vault Aggregate ============

// InitVault initializes the vault aggregate if it does not exist yet
func (k *Keeper) InitVault(ctx sdk.Context, owner string) *types.Vault {
	if v := k.GetVault(ctx); v != nil {
		return v
	}
	v := types.NewVault(owner)
	k.SetVault(ctx, v)
	k.SetStats(ctx, types.NewVaultStats())
	k.logger.Info("Initialized vault", "owner", owner)
	return v
}

// SetVault saves the vault aggregate to the store
func (k *Keeper) SetVault(ctx sdk.Context, v *types.Vault) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(v)
	store.Set(VaultKey, bz)
}

// GetVault retrieves the vault aggregate, or nil before initialization
func (k *Keeper) GetVault(ctx sdk.Context) *types.Vault {
	store := k.GetStore(ctx)
	bz := store.Get(VaultKey)
	if bz == nil {
		return nil
	}
	var v types.Vault
	if err := json.Unmarshal(bz, &v); err != nil {
		return nil
	}
	return &v
}

// ============ Holder Balances ============

// balanceKey generates the key for a holder's share balance
func balanceKey(holder string) []byte {
	return append(BalanceKeyPrefix, []byte(holder)...)
}

// GetBalance returns a holder's share balance, zero by default
func (k *Keeper) GetBalance(ctx sdk.Context, holder string) math.Int {
	store := k.GetStore(ctx)
	bz := store.Get(balanceKey(holder))
	if bz == nil {
		return math.ZeroInt()
	}
	var bal math.Int
	if err := json.Unmarshal(bz, &bal); err != nil {
		return math.ZeroInt()
	}
	return bal
}

// setBalance writes a holder's share balance, deleting the entry at zero
// so that zero balances never accumulate in the store
func (k *Keeper) setBalance(ctx sdk.Context, holder string, bal math.Int) {
	store := k.GetStore(ctx)
	if bal.IsZero() {
		store.Delete(balanceKey(holder))
		return
	}
	bz, _ := json.Marshal(bal)
	store.Set(balanceKey(holder), bz)
}

// SumBalances iterates all holder balances and returns their sum. Intended
// for audits and tests; linear in the number of holders.
func (k *Keeper) SumBalances(ctx sdk.Context) math.Int {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, BalanceKeyPrefix)
	defer iterator.Close()

	sum := math.ZeroInt()
	for ; iterator.Valid(); iterator.Next() {
		var bal math.Int
		if err := json.Unmarshal(iterator.Value(), &bal); err != nil {
			continue
		}
		sum = sum.Add(bal)
	}
	return sum
}

// ============ Deposit Records ============

// depositKey generates the key for a deposit record
func depositKey(depositID string) []byte {
	return append(DepositKeyPrefix, []byte(depositID)...)
}

// userDepositsKey generates the key for a user's deposit index
func userDepositsKey(user, depositID string) []byte {
	return append(UserDepositsKeyPrefix, []byte(user+":"+depositID)...)
}

// SetDepositRecord saves a deposit record and indexes it by user
func (k *Keeper) SetDepositRecord(ctx sdk.Context, record *types.DepositRecord) {
	store := k.GetStore(ctx)

	bz, _ := json.Marshal(record)
	store.Set(depositKey(record.DepositID), bz)
	store.Set(userDepositsKey(record.Depositor, record.DepositID), []byte(record.DepositID))
}

// GetDepositRecord retrieves a deposit record by ID
func (k *Keeper) GetDepositRecord(ctx sdk.Context, depositID string) *types.DepositRecord {
	store := k.GetStore(ctx)
	bz := store.Get(depositKey(depositID))
	if bz == nil {
		return nil
	}
	var record types.DepositRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return nil
	}
	return &record
}

// GetUserDeposits returns all deposit records for a user
func (k *Keeper) GetUserDeposits(ctx sdk.Context, user string) []*types.DepositRecord {
	store := k.GetStore(ctx)
	prefix := append(UserDepositsKeyPrefix, []byte(user+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var records []*types.DepositRecord
	for ; iterator.Valid(); iterator.Next() {
		record := k.GetDepositRecord(ctx, string(iterator.Value()))
		if record != nil {
			records = append(records, record)
		}
	}
	return records
}

// ============ Withdrawal Records ============

// withdrawalKey generates the key for a withdrawal record
func withdrawalKey(withdrawalID string) []byte {
	return append(WithdrawalKeyPrefix, []byte(withdrawalID)...)
}

// userWithdrawalsKey generates the key for a user's withdrawal index
func userWithdrawalsKey(user, withdrawalID string) []byte {
	return append(UserWithdrawalsKeyPrefix, []byte(user+":"+withdrawalID)...)
}

// SetWithdrawalRecord saves a withdrawal record and indexes it by user
func (k *Keeper) SetWithdrawalRecord(ctx sdk.Context, record *types.WithdrawalRecord) {
	store := k.GetStore(ctx)

	bz, _ := json.Marshal(record)
	store.Set(withdrawalKey(record.WithdrawalID), bz)
	store.Set(userWithdrawalsKey(record.Withdrawer, record.WithdrawalID), []byte(record.WithdrawalID))
}

// GetWithdrawalRecord retrieves a withdrawal record by ID
func (k *Keeper) GetWithdrawalRecord(ctx sdk.Context, withdrawalID string) *types.WithdrawalRecord {
	store := k.GetStore(ctx)
	bz := store.Get(withdrawalKey(withdrawalID))
	if bz == nil {
		return nil
	}
	var record types.WithdrawalRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return nil
	}
	return &record
}

// GetUserWithdrawals returns all withdrawal records for a user
func (k *Keeper) GetUserWithdrawals(ctx sdk.Context, user string) []*types.WithdrawalRecord {
	store := k.GetStore(ctx)
	prefix := append(UserWithdrawalsKeyPrefix, []byte(user+":")...)
	iterator := storetypes.KVStorePrefixIterator(store, prefix)
	defer iterator.Close()

	var records []*types.WithdrawalRecord
	for ; iterator.Valid(); iterator.Next() {
		record := k.GetWithdrawalRecord(ctx, string(iterator.Value()))
		if record != nil {
			records = append(records, record)
		}
	}
	return records
}

// ============ Stats ============

// SetStats saves vault stats to the store
func (k *Keeper) SetStats(ctx sdk.Context, stats *types.VaultStats) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(stats)
	store.Set(StatsKey, bz)
}

// GetStats retrieves vault stats from the store
func (k *Keeper) GetStats(ctx sdk.Context) *types.VaultStats {
	store := k.GetStore(ctx)
	bz := store.Get(StatsKey)
	if bz == nil {
		return types.NewVaultStats()
	}
	var stats types.VaultStats
	if err := json.Unmarshal(bz, &stats); err != nil {
		return types.NewVaultStats()
	}
	return &stats
}

// ============ Rate History ============

// rateHistoryKey generates the key for a rate history point. Fixed-width
// height keeps iteration in block order.
func rateHistoryKey(height int64) []byte {
	return append(RateHistoryKeyPrefix, []byte(fmt.Sprintf("%020d", height))...)
}

// AddRatePoint stores an exchange-rate snapshot for a block height
func (k *Keeper) AddRatePoint(ctx sdk.Context, height int64, point *types.RatePoint) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(point)
	store.Set(rateHistoryKey(height), bz)
}

// GetRateHistory retrieves rate snapshots within the given time window.
// Zero bounds are open-ended.
func (k *Keeper) GetRateHistory(ctx sdk.Context, fromTime, toTime int64) []*types.RatePoint {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, RateHistoryKeyPrefix)
	defer iterator.Close()

	var points []*types.RatePoint
	for ; iterator.Valid(); iterator.Next() {
		var p types.RatePoint
		if err := json.Unmarshal(iterator.Value(), &p); err != nil {
			continue
		}
		if (fromTime == 0 || p.Timestamp >= fromTime) && (toTime == 0 || p.Timestamp <= toTime) {
			points = append(points, &p)
		}
	}
	return points
}
