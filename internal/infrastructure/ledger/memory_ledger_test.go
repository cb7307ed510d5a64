package ledger

import (
	"context"
	"testing"

	"paystream/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usdc = domain.TokenID("USDC")

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Mint(usdc, "alice", 1000)

	require.NoError(t, l.Transfer(ctx, usdc, "alice", "bob", 400))

	aliceBal, _ := l.BalanceOf(ctx, usdc, "alice")
	bobBal, _ := l.BalanceOf(ctx, usdc, "bob")
	assert.Equal(t, uint64(600), aliceBal)
	assert.Equal(t, uint64(400), bobBal)
}

func TestTransferInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Mint(usdc, "alice", 100)

	err := l.Transfer(ctx, usdc, "alice", "bob", 101)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// failed transfer must not touch balances
	aliceBal, _ := l.BalanceOf(ctx, usdc, "alice")
	bobBal, _ := l.BalanceOf(ctx, usdc, "bob")
	assert.Equal(t, uint64(100), aliceBal)
	assert.Equal(t, uint64(0), bobBal)
}

func TestTransferFromRequiresAllowance(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Mint(usdc, "alice", 1000)

	err := l.TransferFrom(ctx, usdc, "alice", "custody", "custody", 500)
	assert.ErrorIs(t, err, domain.ErrInsufficientAllowance)

	require.NoError(t, l.Approve(ctx, usdc, "alice", "custody", 500))
	require.NoError(t, l.TransferFrom(ctx, usdc, "alice", "custody", "custody", 500))

	custodyBal, _ := l.BalanceOf(ctx, usdc, "custody")
	assert.Equal(t, uint64(500), custodyBal)

	// allowance is spent
	err = l.TransferFrom(ctx, usdc, "alice", "custody", "custody", 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientAllowance)
}

func TestTransferFromDistinguishesFundsFromAllowance(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Mint(usdc, "alice", 100)
	require.NoError(t, l.Approve(ctx, usdc, "alice", "custody", 1000))

	err := l.TransferFrom(ctx, usdc, "alice", "custody", "custody", 500)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// allowance untouched by the failed leg
	require.NoError(t, l.TransferFrom(ctx, usdc, "alice", "custody", "custody", 100))
}

func TestSelfTransferFromSkipsAllowance(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	l.Mint(usdc, "alice", 100)

	require.NoError(t, l.TransferFrom(ctx, usdc, "alice", "alice", "bob", 60))
	bobBal, _ := l.BalanceOf(ctx, usdc, "bob")
	assert.Equal(t, uint64(60), bobBal)
}
