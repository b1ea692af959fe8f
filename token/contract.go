// Package token implements a refundable-token issuance contract: it
// mints sequentially numbered ownership records against exact payment,
// escrows the received funds for a bounded refund window, and lets
// buyers burn a purchased record back to the operator for a full
// refund until the window closes. Withdrawal of escrowed funds is
// gated on window expiry.
//
// The contract executes as a serialized state machine: one mutex
// guards all state, every operation commits fully or fails with no
// partial effect, and outbound payments are issued strictly after the
// state commit (with explicit rollback if the payment primitive
// fails). Time, payment transfer, allowlist verification, and event
// sinks are injected capabilities.
package token

import (
	"sync"
	"time"

	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-mintgate/allowlist"
	"github.com/pflow-xyz/go-mintgate/ledger"
)

// Address identifies an account.
type Address = ledger.Address

// Contract is the composed issuance ledger. Create one with New; the
// zero value is not usable.
type Contract struct {
	mu sync.Mutex

	cfg      Config
	clock    Clock
	bank     PaymentSender
	verifier allowlist.Verifier
	emitter  Emitter

	ledger           *ledger.Ledger
	refundAddress    Address
	presaleActive    bool
	publicSaleActive bool
	merkleRoot       allowlist.Root
	refundEndTime    time.Time
	treasury         *uint256.Int
	purchased        map[Address]uint64

	events []Event
	seq    uint64
}

// Option configures a Contract at construction.
type Option func(*Contract)

// WithClock injects the time source (default: SystemClock).
func WithClock(clock Clock) Option {
	return func(c *Contract) { c.clock = clock }
}

// WithBank injects the outbound payment primitive (default: a fresh
// MemoryBank).
func WithBank(bank PaymentSender) Option {
	return func(c *Contract) { c.bank = bank }
}

// WithVerifier injects the allowlist-proof oracle (default: the native
// MiMC Merkle verifier).
func WithVerifier(v allowlist.Verifier) Option {
	return func(c *Contract) { c.verifier = v }
}

// WithEmitter attaches an event sink.
func WithEmitter(e Emitter) Option {
	return func(c *Contract) { c.emitter = e }
}

// New creates a contract. The refund window opens immediately and runs
// for cfg.RefundPeriod; both sale phases start inactive; the refund
// recipient defaults to the operator.
func New(cfg Config, opts ...Option) (*Contract, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Contract{
		cfg:           cfg,
		clock:         SystemClock{},
		bank:          NewMemoryBank(),
		verifier:      allowlist.MiMCVerifier{},
		ledger:        ledger.New(cfg.MaxMintSupply),
		refundAddress: cfg.Operator,
		treasury:      uint256.NewInt(0),
		purchased:     make(map[Address]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.refundEndTime = c.clock.Now().Add(cfg.RefundPeriod)
	return c, nil
}

// requireOperator gates administrative mutations. Callers hold c.mu.
func (c *Contract) requireOperator(caller Address) error {
	if caller != c.cfg.Operator {
		return ErrUnauthorized
	}
	return nil
}

// Operator returns the administrative account.
func (c *Contract) Operator() Address {
	return c.cfg.Operator
}

// MaxMintSupply returns the issuance cap.
func (c *Contract) MaxMintSupply() uint64 {
	return c.cfg.MaxMintSupply
}

// MintPrice returns the per-record purchase price in wei.
func (c *Contract) MintPrice() *uint256.Int {
	return c.cfg.MintPrice.Clone()
}

// MaxUserMintAmount returns the per-account purchase cap.
func (c *Contract) MaxUserMintAmount() uint64 {
	return c.cfg.MaxUserMintAmount
}

// RefundPeriod returns the configured window length.
func (c *Contract) RefundPeriod() time.Duration {
	return c.cfg.RefundPeriod
}

// RefundEndTime returns the current window expiry.
func (c *Contract) RefundEndTime() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refundEndTime
}

// RefundGuaranteeActive reports whether now is strictly before the
// window expiry.
func (c *Contract) RefundGuaranteeActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clock.Now().Before(c.refundEndTime)
}

// PresaleActive reports the presale gate.
func (c *Contract) PresaleActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.presaleActive
}

// PublicSaleActive reports the public sale gate.
func (c *Contract) PublicSaleActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.publicSaleActive
}

// MerkleRoot returns the current allowlist root.
func (c *Contract) MerkleRoot() allowlist.Root {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.merkleRoot
}

// RefundAddress returns the account that receives refunded records.
func (c *Contract) RefundAddress() Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refundAddress
}

// TotalIssued returns the number of records issued so far.
func (c *Contract) TotalIssued() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.TotalIssued()
}

// BalanceOf returns the number of records currently owned by account.
func (c *Contract) BalanceOf(account Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.BalanceOf(account)
}

// OwnerOf returns the current owner of a record.
func (c *Contract) OwnerOf(id ledger.ID) (Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.OwnerOf(id)
}

// StateOf returns the lifecycle state of a record.
func (c *Contract) StateOf(id ledger.ID) (ledger.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.StateOf(id)
}

// IsOwnerMint reports whether a record was minted complimentarily by
// the operator.
func (c *Contract) IsOwnerMint(id ledger.ID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.ledger.StateOf(id)
	if err != nil {
		return false, err
	}
	return state == ledger.Complimentary, nil
}

// TreasuryBalance returns the escrowed funds.
func (c *Contract) TreasuryBalance() *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.treasury.Clone()
}

// PurchasedBy returns the cumulative purchased (non-complimentary)
// record count for an account.
func (c *Contract) PurchasedBy(account Address) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purchased[account]
}
