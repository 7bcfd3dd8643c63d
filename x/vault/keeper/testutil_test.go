package keeper

import (
	"errors"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/codec"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/yield-vault/x/vault/types"
)

const (
	testOwner      = "cosmos1owner"
	testVaultAddr  = "cosmos1vault"
	testStrategyID = "yield-strategy"
	stratLedgerID  = "strategy-acct"
)

// ledgerToken is a synthetic AssetToken: an in-memory balance map with
// failure injection for transfer paths.
type ledgerToken struct {
	vault            string
	balances         map[string]math.Int
	allowances       map[string]math.Int // spender -> approved by vault
	failTransfer     bool
	failTransferFrom bool
}

func newLedgerToken(vault string) *ledgerToken {
	return &ledgerToken{
		vault:      vault,
		balances:   make(map[string]math.Int),
		allowances: make(map[string]math.Int),
	}
}

func (l *ledgerToken) mint(holder string, amount math.Int) {
	l.balances[holder] = l.balanceOf(holder).Add(amount)
}

func (l *ledgerToken) balanceOf(holder string) math.Int {
	if bal, ok := l.balances[holder]; ok {
		return bal
	}
	return math.ZeroInt()
}

func (l *ledgerToken) move(from, to string, amount math.Int) error {
	if l.balanceOf(from).LT(amount) {
		return errors.New("insufficient token balance")
	}
	l.balances[from] = l.balanceOf(from).Sub(amount)
	l.balances[to] = l.balanceOf(to).Add(amount)
	return nil
}

func (l *ledgerToken) BalanceOf(_ sdk.Context, holder string) math.Int {
	return l.balanceOf(holder)
}

func (l *ledgerToken) Transfer(_ sdk.Context, to string, amount math.Int) error {
	if l.failTransfer {
		return errors.New("transfer rejected")
	}
	return l.move(l.vault, to, amount)
}

func (l *ledgerToken) TransferFrom(_ sdk.Context, from, to string, amount math.Int) error {
	if l.failTransferFrom {
		return errors.New("transferFrom rejected")
	}
	return l.move(from, to, amount)
}

func (l *ledgerToken) Approve(_ sdk.Context, spender string, amount math.Int) error {
	l.allowances[spender] = amount
	return nil
}

// mockStrategy is a synthetic Strategy backed by the same token ledger. It
// reports principal plus injected yield and can be made to fail or return
// less than requested.
type mockStrategy struct {
	token         *ledgerToken
	ledgerID      string
	assets        math.Int
	failDeposit   bool
	failWithdraw  bool
	shortWithdraw bool
	lastWithdraw  math.Int
}

func newMockStrategy(token *ledgerToken) *mockStrategy {
	return &mockStrategy{
		token:        token,
		ledgerID:     stratLedgerID,
		assets:       math.ZeroInt(),
		lastWithdraw: math.ZeroInt(),
	}
}

func (s *mockStrategy) Deposit(_ sdk.Context, amount math.Int) error {
	if s.failDeposit {
		return errors.New("strategy deposit rejected")
	}
	if err := s.token.move(s.token.vault, s.ledgerID, amount); err != nil {
		return err
	}
	s.assets = s.assets.Add(amount)
	return nil
}

func (s *mockStrategy) Withdraw(_ sdk.Context, amount math.Int) (math.Int, error) {
	if s.failWithdraw {
		return math.ZeroInt(), errors.New("strategy withdraw rejected")
	}
	s.lastWithdraw = amount
	returned := amount
	if s.shortWithdraw {
		returned = amount.Quo(math.NewInt(2))
	}
	if err := s.token.move(s.ledgerID, s.token.vault, returned); err != nil {
		return math.ZeroInt(), err
	}
	s.assets = s.assets.Sub(returned)
	return returned, nil
}

func (s *mockStrategy) TotalAssets(_ sdk.Context) math.Int {
	return s.assets
}

// accrue simulates yield (or pre-delegated principal): the strategy's
// reported balance grows and the backing tokens appear on its ledger
// account so they can be returned later.
func (s *mockStrategy) accrue(amount math.Int) {
	s.assets = s.assets.Add(amount)
	s.token.mint(s.ledgerID, amount)
}

// strategyRegistry is a synthetic StrategyRegistry
type strategyRegistry map[string]types.Strategy

func (r strategyRegistry) Resolve(id string) (types.Strategy, bool) {
	s, ok := r[id]
	return s, ok
}

// fixture bundles a keeper over a fresh in-memory store with its doubles
type fixture struct {
	ctx   sdk.Context
	k     *Keeper
	token *ledgerToken
	strat *mockStrategy
}

func setupKeeper(t *testing.T) *fixture {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	cms := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	cms.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, cms.LoadLatestVersion())

	cdc := codec.NewProtoCodec(codectypes.NewInterfaceRegistry())

	token := newLedgerToken(testVaultAddr)
	strat := newMockStrategy(token)
	registry := strategyRegistry{testStrategyID: strat}

	k := NewKeeper(cdc, storeKey, token, registry, testVaultAddr, log.NewNopLogger())
	ctx := sdk.NewContext(cms, cmtproto.Header{Height: 1, Time: time.Now()}, false, log.NewNopLogger())
	k.InitVault(ctx, testOwner)

	return &fixture{ctx: ctx, k: k, token: token, strat: strat}
}

// bindStrategy binds the test strategy as the vault owner
func (f *fixture) bindStrategy(t *testing.T) {
	t.Helper()
	require.NoError(t, f.k.SetStrategy(f.ctx, testOwner, testStrategyID))
}

// requireInvariant asserts total share supply equals the sum of all holder
// balances, which must hold on every exit path
func (f *fixture) requireInvariant(t *testing.T) {
	t.Helper()
	v := f.k.GetVault(f.ctx)
	require.NotNil(t, v)
	require.True(t, v.TotalShares.Equal(f.k.SumBalances(f.ctx)),
		"total shares %s != sum of balances %s", v.TotalShares, f.k.SumBalances(f.ctx))
}
