package token

import "github.com/pflow-xyz/go-mintgate/allowlist"

// TogglePresaleStatus flips the presale gate and returns the new
// value. Operator-only. The two sale gates are independent.
func (c *Contract) TogglePresaleStatus(caller Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOperator(caller); err != nil {
		return false, err
	}
	c.presaleActive = !c.presaleActive
	c.emit(Event{Type: EventPresaleToggled, Account: caller, Active: c.presaleActive})
	return c.presaleActive, nil
}

// TogglePublicSaleStatus flips the public sale gate and returns the
// new value. Operator-only.
func (c *Contract) TogglePublicSaleStatus(caller Address) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOperator(caller); err != nil {
		return false, err
	}
	c.publicSaleActive = !c.publicSaleActive
	c.emit(Event{Type: EventPublicSaleToggled, Account: caller, Active: c.publicSaleActive})
	return c.publicSaleActive, nil
}

// SetMerkleRoot replaces the allowlist root wholesale. Operator-only.
func (c *Contract) SetMerkleRoot(caller Address, root allowlist.Root) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireOperator(caller); err != nil {
		return err
	}
	c.merkleRoot = root
	c.emit(Event{Type: EventRootUpdated, Account: caller})
	return nil
}
