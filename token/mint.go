package token

import (
	"github.com/holiman/uint256"

	"github.com/pflow-xyz/go-mintgate/allowlist"
	"github.com/pflow-xyz/go-mintgate/ledger"
)

// PublicSaleMint purchases quantity records during the public sale.
// The attached payment must equal quantity * MintPrice exactly.
// Returns the newly issued record IDs.
func (c *Contract) PublicSaleMint(caller Address, quantity uint64, payment *uint256.Int) ([]ledger.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.publicSaleActive {
		return nil, ErrSaleInactive
	}
	return c.purchase(caller, quantity, payment)
}

// PreSaleMint purchases quantity records during the presale. The
// caller must supply a proof that verifies against the current
// allowlist root.
func (c *Contract) PreSaleMint(caller Address, quantity uint64, payment *uint256.Int, proof allowlist.Proof) ([]ledger.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.presaleActive {
		return nil, ErrSaleInactive
	}
	if c.verifier == nil || !c.verifier.Verify(string(caller), c.merkleRoot, proof) {
		return nil, ErrNotAllowlisted
	}
	return c.purchase(caller, quantity, payment)
}

// OwnerMint issues quantity complimentary records to the operator.
// Complimentary records carry no payment, do not count against the
// per-account purchase cap, and can never be refunded.
func (c *Contract) OwnerMint(caller Address, quantity uint64) ([]ledger.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOperator(caller); err != nil {
		return nil, err
	}
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	ids, err := c.ledger.Mint(caller, quantity, true)
	if err != nil {
		return nil, err
	}
	c.emit(Event{
		Type:          EventMint,
		Account:       caller,
		Counterparty:  caller,
		Records:       ids,
		Complimentary: true,
	})
	return ids, nil
}

// purchase validates and commits a paid mint. Check order: nonzero
// quantity, supply, per-account cap, exact payment. Supply is checked
// before payment so a sold-out sale reports SupplyExceeded regardless
// of the attached payment. Callers hold c.mu and have already passed
// the sale gate.
func (c *Contract) purchase(caller Address, quantity uint64, payment *uint256.Int) ([]ledger.ID, error) {
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	// Subtraction form: the additive comparisons wrap for quantity
	// near the uint64 ceiling.
	if quantity > c.cfg.MaxMintSupply-c.ledger.TotalIssued() {
		return nil, ErrSupplyExceeded
	}
	if quantity > c.cfg.MaxUserMintAmount-c.purchased[caller] {
		return nil, ErrOverMintLimit
	}
	expected := new(uint256.Int).Mul(c.cfg.MintPrice, uint256.NewInt(quantity))
	if payment == nil || payment.Cmp(expected) != 0 {
		return nil, ErrInsufficientPayment
	}

	ids, err := c.ledger.Mint(caller, quantity, false)
	if err != nil {
		return nil, err
	}
	c.treasury.Add(c.treasury, expected)
	c.purchased[caller] += quantity

	c.emit(Event{
		Type:         EventMint,
		Account:      caller,
		Counterparty: caller,
		Records:      ids,
		Amount:       expected,
	})
	return ids, nil
}
