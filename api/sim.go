package api

import (
	"errors"
	"sync"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/openalpha/yield-vault/x/vault/types"
)

// simLedger is an in-memory asset ledger backing the standalone daemon. It
// plays the role the external asset token plays on a live chain: balances
// live outside the vault store and survive store rollbacks.
type simLedger struct {
	mu       sync.RWMutex
	vault    string
	balances map[string]math.Int
}

func newSimLedger(vault string) *simLedger {
	return &simLedger{
		vault:    vault,
		balances: make(map[string]math.Int),
	}
}

// Mint credits a holder out of thin air. Faucet use only.
func (l *simLedger) Mint(holder string, amount math.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[holder] = l.get(holder).Add(amount)
}

func (l *simLedger) get(holder string) math.Int {
	if bal, ok := l.balances[holder]; ok {
		return bal
	}
	return math.ZeroInt()
}

func (l *simLedger) move(from, to string, amount math.Int) error {
	if l.get(from).LT(amount) {
		return errors.New("insufficient ledger balance")
	}
	l.balances[from] = l.get(from).Sub(amount)
	l.balances[to] = l.get(to).Add(amount)
	return nil
}

// BalanceOf implements types.AssetToken
func (l *simLedger) BalanceOf(_ sdk.Context, holder string) math.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.get(holder)
}

// Transfer implements types.AssetToken, moving assets out of the vault
func (l *simLedger) Transfer(_ sdk.Context, to string, amount math.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(l.vault, to, amount)
}

// TransferFrom implements types.AssetToken
func (l *simLedger) TransferFrom(_ sdk.Context, from, to string, amount math.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// Approve implements types.AssetToken. The simulated ledger trusts the
// vault, so approvals are accepted without bookkeeping.
func (l *simLedger) Approve(_ sdk.Context, _ string, _ math.Int) error {
	return nil
}

// simStrategy is a yield strategy that accrues interest on delegated
// principal once per block at a fixed per-block rate.
type simStrategy struct {
	mu       sync.Mutex
	ledger   *simLedger
	account  string
	assets   math.Int
	rateBps  int64 // per-block accrual in basis points
	minYield math.Int
}

func newSimStrategy(ledger *simLedger, account string, rateBps int64) *simStrategy {
	return &simStrategy{
		ledger:   ledger,
		account:  account,
		assets:   math.ZeroInt(),
		rateBps:  rateBps,
		minYield: math.OneInt(),
	}
}

// Deposit implements types.Strategy
func (s *simStrategy) Deposit(_ sdk.Context, amount math.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.mu.Lock()
	err := s.ledger.move(s.ledger.vault, s.account, amount)
	s.ledger.mu.Unlock()
	if err != nil {
		return err
	}
	s.assets = s.assets.Add(amount)
	return nil
}

// Withdraw implements types.Strategy
func (s *simStrategy) Withdraw(_ sdk.Context, amount math.Int) (math.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assets.LT(amount) {
		return math.ZeroInt(), errors.New("strategy holds less than requested")
	}
	s.ledger.mu.Lock()
	err := s.ledger.move(s.account, s.ledger.vault, amount)
	s.ledger.mu.Unlock()
	if err != nil {
		return math.ZeroInt(), err
	}
	s.assets = s.assets.Sub(amount)
	return amount, nil
}

// TotalAssets implements types.Strategy
func (s *simStrategy) TotalAssets(_ sdk.Context) math.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assets
}

// Accrue grows the delegated principal by the per-block rate. Yield is
// minted onto the strategy's ledger account so later withdrawals can
// actually return it.
func (s *simStrategy) Accrue() math.Int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.assets.IsPositive() || s.rateBps <= 0 {
		return math.ZeroInt()
	}
	yield := s.assets.Mul(math.NewInt(s.rateBps)).Quo(math.NewInt(10000))
	if yield.LT(s.minYield) {
		yield = s.minYield
	}
	s.ledger.Mint(s.account, yield)
	s.assets = s.assets.Add(yield)
	return yield
}

// simRegistry resolves strategy IDs for the standalone daemon
type simRegistry map[string]types.Strategy

// Resolve implements types.StrategyRegistry
func (r simRegistry) Resolve(id string) (types.Strategy, bool) {
	s, ok := r[id]
	return s, ok
}
