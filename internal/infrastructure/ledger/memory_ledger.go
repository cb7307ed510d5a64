package ledger

import (
	"context"
	"sync"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
	"paystream/pkg/fixedpoint"
)

type balanceKey struct {
	token domain.TokenID
	addr  domain.Address
}

type allowanceKey struct {
	token   domain.TokenID
	owner   domain.Address
	spender domain.Address
}

// MemoryLedger is an in-process fungible-asset ledger with transfer,
// transfer-from and allowance semantics. Balance and allowance guards fail
// distinguishably, and a failed leg leaves every balance untouched.
type MemoryLedger struct {
	balances   map[balanceKey]uint64
	allowances map[allowanceKey]uint64
	mu         sync.Mutex
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances:   make(map[balanceKey]uint64),
		allowances: make(map[allowanceKey]uint64),
	}
}

// Mint credits an account out of thin air. Dev and test helper; not part of
// the ports.TokenLedger contract.
func (l *MemoryLedger) Mint(token domain.TokenID, addr domain.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[balanceKey{token, addr}] += amount
}

func (l *MemoryLedger) Transfer(ctx context.Context, token domain.TokenID, from, to domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(token, from, to, amount)
}

func (l *MemoryLedger) TransferFrom(ctx context.Context, token domain.TokenID, owner, spender, to domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if owner != spender {
		key := allowanceKey{token, owner, spender}
		allowance := l.allowances[key]
		if allowance < amount {
			return domain.ErrInsufficientAllowance
		}
		if err := l.move(token, owner, to, amount); err != nil {
			return err
		}
		l.allowances[key] = allowance - amount
		return nil
	}

	return l.move(token, owner, to, amount)
}

func (l *MemoryLedger) move(token domain.TokenID, from, to domain.Address, amount uint64) error {
	fromKey := balanceKey{token, from}
	balance := l.balances[fromKey]
	if balance < amount {
		return domain.ErrInsufficientFunds
	}

	toKey := balanceKey{token, to}
	credited, err := fixedpoint.CheckedAdd(l.balances[toKey], amount)
	if err != nil {
		return domain.ErrArithmeticOverflow
	}

	l.balances[fromKey] = balance - amount
	l.balances[toKey] = credited
	return nil
}

func (l *MemoryLedger) BalanceOf(ctx context.Context, token domain.TokenID, addr domain.Address) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[balanceKey{token, addr}], nil
}

func (l *MemoryLedger) Approve(ctx context.Context, token domain.TokenID, owner, spender domain.Address, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{token, owner, spender}] = amount
	return nil
}

var _ ports.TokenLedger = (*MemoryLedger)(nil)
