package token

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

// Defaults of the reference deployment.
const (
	DefaultMaxMintSupply     = 8000
	DefaultMaxUserMintAmount = 5
	DefaultRefundPeriod      = 45 * 24 * time.Hour // 3,888,000 s
)

// DefaultMintPrice is 0.1 ether in wei.
func DefaultMintPrice() *uint256.Int {
	return uint256.NewInt(100_000_000_000_000_000)
}

// Config holds the constants fixed at construction. All fields are
// immutable once the contract is created.
type Config struct {
	// Operator is the single account authorized for administrative
	// mutations. It also receives withdrawals and, by default,
	// refunded records.
	Operator Address

	// MaxMintSupply caps the total number of records ever issued.
	MaxMintSupply uint64

	// MintPrice is the exact per-record purchase price in wei.
	MintPrice *uint256.Int

	// MaxUserMintAmount caps cumulative purchased (non-complimentary)
	// records per account.
	MaxUserMintAmount uint64

	// RefundPeriod is the length of the refund window. The window
	// opens at construction and can be re-extended by the operator.
	RefundPeriod time.Duration
}

// DefaultConfig returns the reference deployment parameters: supply
// 8000, price 0.1 ether, per-user cap 5, refund period 45 days.
func DefaultConfig(operator Address) Config {
	return Config{
		Operator:          operator,
		MaxMintSupply:     DefaultMaxMintSupply,
		MintPrice:         DefaultMintPrice(),
		MaxUserMintAmount: DefaultMaxUserMintAmount,
		RefundPeriod:      DefaultRefundPeriod,
	}
}

// Validate checks the configuration for construction.
func (c Config) Validate() error {
	if c.Operator == "" {
		return fmt.Errorf("token: config: operator is required")
	}
	if c.MaxMintSupply == 0 {
		return fmt.Errorf("token: config: max mint supply must be positive")
	}
	if c.MintPrice == nil {
		return fmt.Errorf("token: config: mint price is required")
	}
	if c.MaxUserMintAmount == 0 {
		return fmt.Errorf("token: config: max user mint amount must be positive")
	}
	if c.RefundPeriod <= 0 {
		return fmt.Errorf("token: config: refund period must be positive")
	}
	return nil
}
