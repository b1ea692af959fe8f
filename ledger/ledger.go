// Package ledger tracks ownership of sequentially numbered records.
//
// Records are assigned 0-based IDs in issuance order and are never
// deleted. Each record carries a lifecycle state: Active records were
// purchased and may still be refunded, Complimentary records were
// issued without payment and can never be refunded, and Refunded is
// terminal. Per-account balances are maintained alongside the record
// table so that the sum of all balances always equals the number of
// records issued.
package ledger

import "fmt"

// Address identifies an account.
type Address string

// ID is a sequential, 0-based record identifier.
type ID uint64

// State is the lifecycle state of a record.
type State int

const (
	// Active records were purchased and are eligible for refund while
	// the refund window is open.
	Active State = iota
	// Complimentary records were issued by the operator without
	// payment. They never become refundable.
	Complimentary
	// Refunded is terminal. A refunded record keeps its ledger entry
	// but can never be refunded again.
	Refunded
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Complimentary:
		return "complimentary"
	case Refunded:
		return "refunded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Record is a single ownership entry.
type Record struct {
	Owner Address
	State State
}

// Ledger is the ownership table. It is not safe for concurrent use;
// callers serialize access (the contract holds one lock around all
// operations).
type Ledger struct {
	maxSupply uint64
	records   []Record
	balances  map[Address]uint64
}

// New creates an empty ledger capped at maxSupply records.
func New(maxSupply uint64) *Ledger {
	return &Ledger{
		maxSupply: maxSupply,
		balances:  make(map[Address]uint64),
	}
}

// Clone creates a deep copy of the ledger. Batched operations snapshot
// the ledger before mutating so a mid-batch failure can restore it.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		maxSupply: l.maxSupply,
		records:   make([]Record, len(l.records)),
		balances:  make(map[Address]uint64, len(l.balances)),
	}
	copy(c.records, l.records)
	for a, n := range l.balances {
		c.balances[a] = n
	}
	return c
}

// MaxSupply returns the issuance cap.
func (l *Ledger) MaxSupply() uint64 {
	return l.maxSupply
}

// TotalIssued returns the number of records issued so far.
func (l *Ledger) TotalIssued() uint64 {
	return uint64(len(l.records))
}

// Mint issues quantity sequential records to the given owner and
// returns their IDs. The first new ID equals TotalIssued before the
// call. Fails with ErrSupplyExceeded if the cap would be crossed;
// nothing is issued in that case.
func (l *Ledger) Mint(to Address, quantity uint64, complimentary bool) ([]ID, error) {
	// Subtraction form: the additive comparison wraps for quantity
	// near the uint64 ceiling.
	if quantity > l.maxSupply-l.TotalIssued() {
		return nil, ErrSupplyExceeded
	}

	state := Active
	if complimentary {
		state = Complimentary
	}

	ids := make([]ID, 0, quantity)
	for i := uint64(0); i < quantity; i++ {
		ids = append(ids, ID(len(l.records)))
		l.records = append(l.records, Record{Owner: to, State: state})
	}
	l.balances[to] += quantity
	return ids, nil
}

// Transfer moves a record from one owner to another. Fails with
// ErrUnknownRecord for unissued IDs and ErrNotOwner if from does not
// currently own the record.
func (l *Ledger) Transfer(id ID, from, to Address) error {
	rec, err := l.record(id)
	if err != nil {
		return err
	}
	if rec.Owner != from {
		return ErrNotOwner
	}

	l.balances[from]--
	l.balances[to]++
	rec.Owner = to
	return nil
}

// OwnerOf returns the current owner of a record.
func (l *Ledger) OwnerOf(id ID) (Address, error) {
	rec, err := l.record(id)
	if err != nil {
		return "", err
	}
	return rec.Owner, nil
}

// BalanceOf returns the number of records currently owned by account.
func (l *Ledger) BalanceOf(account Address) uint64 {
	return l.balances[account]
}

// StateOf returns the lifecycle state of a record.
func (l *Ledger) StateOf(id ID) (State, error) {
	rec, err := l.record(id)
	if err != nil {
		return 0, err
	}
	return rec.State, nil
}

// MarkRefunded transitions a record from Active to Refunded. The
// transition is one-way: Complimentary records fail with
// ErrComplimentaryNotRefundable and Refunded records fail with
// ErrAlreadyRefunded.
func (l *Ledger) MarkRefunded(id ID) error {
	rec, err := l.record(id)
	if err != nil {
		return err
	}
	switch rec.State {
	case Complimentary:
		return ErrComplimentaryNotRefundable
	case Refunded:
		return ErrAlreadyRefunded
	}
	rec.State = Refunded
	return nil
}

func (l *Ledger) record(id ID) (*Record, error) {
	if uint64(id) >= l.TotalIssued() {
		return nil, ErrUnknownRecord
	}
	return &l.records[id], nil
}
