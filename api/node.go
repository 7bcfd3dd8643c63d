package api

import (
	"context"
	"sync"
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

	vaultmetrics "github.com/openalpha/yield-vault/metrics"
	"github.com/openalpha/yield-vault/x/vault/keeper"
	"github.com/openalpha/yield-vault/x/vault/types"
)

const (
	// DefaultStrategyID is the strategy the standalone node registers
	DefaultStrategyID = "sim-yield"

	strategyAccount = "strategy-sim"
)

// NodeConfig configures the standalone vault node
type NodeConfig struct {
	Owner         string
	VaultAddress  string
	BlockInterval time.Duration
	// Per-block strategy accrual in basis points. Zero disables yield.
	AccrualBps int64
	// Bind the simulated strategy at startup
	BindStrategy bool
}

// DefaultNodeConfig returns the default standalone node configuration
func DefaultNodeConfig() *NodeConfig {
	return &NodeConfig{
		Owner:         "cosmos1vaultowner",
		VaultAddress:  "cosmos1vaultcustody",
		BlockInterval: 2 * time.Second,
		AccrualBps:    5,
		BindStrategy:  true,
	}
}

// PoolSnapshot is a point-in-time view of the pool, produced once per
// simulated block for broadcasters and metrics.
type PoolSnapshot struct {
	Height      int64
	Rate        math.LegacyDec
	TotalAssets math.Int
	TotalShares math.Int
	Idle        math.Int
	Delegated   math.Int
	Paused      bool
	Depositors  int64
	Timestamp   int64
}

// Node runs the vault keeper over an in-memory commit multistore with a
// simulated asset ledger and yield strategy. It stands in for a full chain
// node: one goroutine advances blocks, everything else goes through Do.
type Node struct {
	mu sync.Mutex

	cms      storetypes.CommitMultiStore
	storeKey *storetypes.KVStoreKey
	keeper   *keeper.Keeper
	ledger   *simLedger
	strategy *simStrategy
	config   *NodeConfig
	logger   log.Logger

	ctx    sdk.Context
	height int64

	// OnBlock, when set, is invoked after every committed block
	OnBlock func(PoolSnapshot)

	stopCh chan struct{}
}

// NewNode creates a standalone vault node with a fresh in-memory store
func NewNode(config *NodeConfig, logger log.Logger) (*Node, error) {
	if config == nil {
		config = DefaultNodeConfig()
	}

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	db := dbm.NewMemDB()
	cms := store.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	cms.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, err
	}

	ledger := newSimLedger(config.VaultAddress)
	strategy := newSimStrategy(ledger, strategyAccount, config.AccrualBps)
	registry := simRegistry{DefaultStrategyID: strategy}

	cdc := codec.NewProtoCodec(codectypes.NewInterfaceRegistry())
	k := keeper.NewKeeper(cdc, storeKey, ledger, registry, config.VaultAddress, logger)

	n := &Node{
		cms:      cms,
		storeKey: storeKey,
		keeper:   k,
		ledger:   ledger,
		strategy: strategy,
		config:   config,
		logger:   logger.With("component", "node"),
		height:   1,
		stopCh:   make(chan struct{}),
	}
	n.ctx = n.newContext()

	k.InitVault(n.ctx, config.Owner)
	if config.BindStrategy {
		if err := k.SetStrategy(n.ctx, config.Owner, DefaultStrategyID); err != nil {
			return nil, err
		}
	}
	n.commit()

	return n, nil
}

func (n *Node) newContext() sdk.Context {
	header := cmtproto.Header{Height: n.height, Time: time.Now().UTC()}
	return sdk.NewContext(n.cms, header, false, n.logger)
}

// commit writes the current block to the multistore
func (n *Node) commit() {
	n.cms.Commit()
}

// Keeper returns the underlying vault keeper
func (n *Node) Keeper() *keeper.Keeper {
	return n.keeper
}

// Faucet mints simulated assets to an address
func (n *Node) Faucet(addr string, amount math.Int) {
	n.ledger.Mint(addr, amount)
}

// Do runs fn against the current block context, serialized with block
// production. The context it receives unwraps back to an sdk.Context.
func (n *Node) Do(fn func(ctx context.Context) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return fn(sdk.WrapSDKContext(n.ctx))
}

// Run produces blocks until Stop is called: accrue simulated yield, run
// the EndBlocker, commit, then publish a snapshot.
func (n *Node) Run() {
	ticker := time.NewTicker(n.config.BlockInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n.produceBlock()
		case <-n.stopCh:
			return
		}
	}
}

// Stop halts block production
func (n *Node) Stop() {
	close(n.stopCh)
}

func (n *Node) produceBlock() {
	n.mu.Lock()

	yield := n.strategy.Accrue()
	if err := n.keeper.EndBlocker(n.ctx); err != nil {
		n.logger.Error("EndBlocker failed", "height", n.height, "error", err)
	}
	n.commit()

	snap := n.snapshot()
	n.height++
	n.ctx = n.newContext()
	n.mu.Unlock()

	if yield.IsPositive() {
		n.logger.Debug("Accrued simulated yield", "height", snap.Height, "yield", yield.String())
	}

	n.publishMetrics(snap)
	if n.OnBlock != nil {
		n.OnBlock(snap)
	}
}

// snapshot reads the pool state for the current block. Caller holds mu.
func (n *Node) snapshot() PoolSnapshot {
	v := n.keeper.GetVault(n.ctx)
	stats := n.keeper.GetStats(n.ctx)
	idle := n.ledger.BalanceOf(n.ctx, n.config.VaultAddress)
	delegated := n.strategy.TotalAssets(n.ctx)

	return PoolSnapshot{
		Height:      n.height,
		Rate:        n.keeper.ExchangeRate(n.ctx),
		TotalAssets: n.keeper.TotalAssets(n.ctx),
		TotalShares: v.TotalShares,
		Idle:        idle,
		Delegated:   delegated,
		Paused:      v.Paused,
		Depositors:  stats.TotalDepositors,
		Timestamp:   time.Now().Unix(),
	}
}

func (n *Node) publishMetrics(snap PoolSnapshot) {
	c := vaultmetrics.GetCollector()
	rate, _ := snap.Rate.Float64()
	c.UpdatePool(
		float64(snap.TotalAssets.Int64()),
		float64(snap.TotalShares.Int64()),
		rate,
		float64(snap.Idle.Int64()),
		float64(snap.Delegated.Int64()),
		snap.Depositors,
		snap.Paused,
	)
	c.UpdateBlockHeight(snap.Height)
}
