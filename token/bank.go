package token

import (
	"sync"

	"github.com/holiman/uint256"
)

// PaymentSender is the outbound value-transfer primitive. The contract
// commits state before calling Send; a Send error aborts the operation
// and the contract rolls its state back.
type PaymentSender interface {
	Send(to Address, amount *uint256.Int) error
}

// MemoryBank is an in-process PaymentSender that accumulates credited
// balances. It backs demos and tests; a deployment would wire a real
// settlement layer here.
type MemoryBank struct {
	mu       sync.Mutex
	balances map[Address]*uint256.Int
}

// NewMemoryBank creates an empty bank.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[Address]*uint256.Int)}
}

// Send credits amount to the recipient.
func (b *MemoryBank) Send(to Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	bal, ok := b.balances[to]
	if !ok {
		bal = uint256.NewInt(0)
		b.balances[to] = bal
	}
	bal.Add(bal, amount)
	return nil
}

// BalanceOf returns the credited balance of an account.
func (b *MemoryBank) BalanceOf(account Address) *uint256.Int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if bal, ok := b.balances[account]; ok {
		return bal.Clone()
	}
	return uint256.NewInt(0)
}
