package token

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Withdraw releases the entire escrowed treasury to the operator.
// Operator-only; fails with ErrWindowStillOpen for any now at or
// before the window expiry. Returns the withdrawn amount.
func (c *Contract) Withdraw(caller Address) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOperator(caller); err != nil {
		return nil, err
	}
	if !c.clock.Now().After(c.refundEndTime) {
		return nil, ErrWindowStillOpen
	}

	amount := c.treasury
	c.treasury = uint256.NewInt(0)
	if err := c.bank.Send(c.cfg.Operator, amount); err != nil {
		c.treasury = amount
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	c.emit(Event{
		Type:         EventWithdraw,
		Account:      caller,
		Counterparty: c.cfg.Operator,
		Amount:       amount.Clone(),
	})
	return amount.Clone(), nil
}
