package token

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-mintgate/ledger"
)

// Refund reverses the purchase of the given records: each record is
// transferred to the refund recipient, permanently marked refunded,
// and the caller is paid back MintPrice per record in one aggregated
// payout. The batch is all-or-nothing: a failure on any ID rolls back
// every mutation and returns the first error.
//
// Per-record checks, in order: the record must exist, must not be
// complimentary, must not already be refunded, must be owned by the
// caller, and the window must still be open (now == RefundEndTime is
// the last refundable instant).
func (c *Contract) Refund(caller Address, ids []ledger.ID) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(ids) == 0 {
		return uint256.NewInt(0), nil
	}

	saved := c.ledger.Clone()
	savedTreasury := c.treasury.Clone()
	revert := func() {
		c.ledger = saved
		c.treasury = savedTreasury
	}

	now := c.clock.Now()
	for _, id := range ids {
		if err := c.refundOne(id, caller, now); err != nil {
			revert()
			return nil, err
		}
	}

	payout := new(uint256.Int).Mul(c.cfg.MintPrice, uint256.NewInt(uint64(len(ids))))
	if c.treasury.Cmp(payout) < 0 {
		revert()
		return nil, fmt.Errorf("%w: treasury below payout", ErrPaymentFailed)
	}
	c.treasury.Sub(c.treasury, payout)

	// State is committed before the outbound payment so a reentrant
	// refund attempt on the same record observes Refunded.
	if err := c.bank.Send(caller, payout); err != nil {
		revert()
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	c.emit(Event{
		Type:         EventRefund,
		Account:      caller,
		Counterparty: c.refundAddress,
		Records:      ids,
		Amount:       payout,
	})
	return payout, nil
}

// refundOne validates and commits a single record refund. Callers
// hold c.mu and roll back on error.
func (c *Contract) refundOne(id ledger.ID, caller Address, now time.Time) error {
	state, err := c.ledger.StateOf(id)
	if err != nil {
		return err
	}
	// Terminal states dominate ownership: a complimentary or refunded
	// record reports its state to any caller.
	switch state {
	case ledger.Complimentary:
		return ErrComplimentaryNotRefundable
	case ledger.Refunded:
		return ErrAlreadyRefunded
	}

	owner, err := c.ledger.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotOwner
	}
	if now.After(c.refundEndTime) {
		return ErrWindowClosed
	}

	if err := c.ledger.Transfer(id, caller, c.refundAddress); err != nil {
		return err
	}
	return c.ledger.MarkRefunded(id)
}

// IsRefundable reports whether a refund of the record by caller would
// succeed right now. Pure query, no mutation.
func (c *Contract) IsRefundable(caller Address, id ledger.ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.ledger.StateOf(id)
	if err != nil || state != ledger.Active {
		return false
	}
	owner, err := c.ledger.OwnerOf(id)
	if err != nil || owner != caller {
		return false
	}
	return !c.clock.Now().After(c.refundEndTime)
}

// ToggleRefundCountdown resets the refund window to now + RefundPeriod.
// Operator-only; callable whether the window is open or closed, and
// always moves the expiry forward from the current instant.
func (c *Contract) ToggleRefundCountdown(caller Address) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOperator(caller); err != nil {
		return time.Time{}, err
	}
	c.refundEndTime = c.clock.Now().Add(c.cfg.RefundPeriod)
	c.emit(Event{Type: EventWindowExtended, Account: caller})
	return c.refundEndTime, nil
}

// SetRefundAddress changes the account that receives refunded records.
// Operator-only.
func (c *Contract) SetRefundAddress(caller, account Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOperator(caller); err != nil {
		return err
	}
	if account == "" {
		return ErrInvalidAddress
	}
	c.refundAddress = account
	c.emit(Event{Type: EventRefundAddressChanged, Account: caller, Counterparty: account})
	return nil
}
