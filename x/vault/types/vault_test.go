package types

import (
	"strings"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
)

func TestNewVault(t *testing.T) {
	v := NewVault("cosmos1owner")

	require.Equal(t, "cosmos1owner", v.Owner)
	require.False(t, v.Paused)
	require.False(t, v.HasStrategy())
	require.True(t, v.TotalShares.IsZero())
	require.NotZero(t, v.CreatedAt)
	require.Equal(t, v.CreatedAt, v.UpdatedAt)
}

func TestHasStrategy(t *testing.T) {
	v := NewVault("cosmos1owner")
	require.False(t, v.HasStrategy())

	v.Strategy = "yield-strategy"
	require.True(t, v.HasStrategy())
}

func TestNewDepositRecord(t *testing.T) {
	r := NewDepositRecord("cosmos1alice", math.NewInt(100), math.NewInt(80))

	require.True(t, strings.HasPrefix(r.DepositID, "dep-"))
	require.Equal(t, "cosmos1alice", r.Depositor)
	require.True(t, r.Amount.Equal(math.NewInt(100)))
	require.True(t, r.SharesMinted.Equal(math.NewInt(80)))
	require.NotZero(t, r.DepositedAt)
}

func TestNewWithdrawalRecord(t *testing.T) {
	r := NewWithdrawalRecord("cosmos1alice", math.NewInt(100), math.NewInt(150), math.NewInt(130))

	require.True(t, strings.HasPrefix(r.WithdrawalID, "wth-"))
	require.True(t, r.SharesBurned.Equal(math.NewInt(100)))
	require.True(t, r.AssetsOut.Equal(math.NewInt(150)))
	require.True(t, r.StrategyPull.Equal(math.NewInt(130)))
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateID("dep")
		require.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}

func TestNewVaultStats(t *testing.T) {
	s := NewVaultStats()
	require.True(t, s.TotalValueLocked.IsZero())
	require.True(t, s.TotalDeposited.IsZero())
	require.True(t, s.TotalWithdrawn.IsZero())
	require.Zero(t, s.TotalDepositors)
	require.Zero(t, s.StrategyPulls)
}
