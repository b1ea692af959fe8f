package token

import (
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-mintgate/ledger"
)

// EventType names a contract mutation.
type EventType string

const (
	EventMint                 EventType = "mint"
	EventRefund               EventType = "refund"
	EventWithdraw             EventType = "withdraw"
	EventPresaleToggled       EventType = "presale_toggled"
	EventPublicSaleToggled    EventType = "public_sale_toggled"
	EventRootUpdated          EventType = "root_updated"
	EventWindowExtended       EventType = "window_extended"
	EventRefundAddressChanged EventType = "refund_address_changed"
)

// Event records a committed mutation. Events carry a contract-local
// sequence number; every successful mutating operation appends exactly
// one event after its state is committed.
type Event struct {
	Seq           uint64       `json:"seq"`
	Type          EventType    `json:"type"`
	At            time.Time    `json:"at"`
	Account       Address      `json:"account"`
	Counterparty  Address      `json:"counterparty,omitempty"`
	Records       []ledger.ID  `json:"records,omitempty"`
	Amount        *uint256.Int `json:"amount,omitempty"`
	Complimentary bool         `json:"complimentary,omitempty"`
	Active        bool         `json:"active,omitempty"`
}

// Emitter receives committed events. Emit runs inside the contract's
// critical section and must not call back into the contract; failures
// are the sink's to handle (the contract's own in-memory log is the
// source of truth).
type Emitter interface {
	Emit(Event)
}

// emit stamps and appends an event. Callers hold c.mu.
func (c *Contract) emit(ev Event) {
	ev.Seq = c.seq
	c.seq++
	ev.At = c.clock.Now()
	c.events = append(c.events, ev)
	if c.emitter != nil {
		c.emitter.Emit(ev)
	}
}

// Events returns a copy of the in-memory event log.
func (c *Contract) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}
