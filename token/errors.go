package token

import (
	"errors"

	"github.com/pflow-xyz/go-mintgate/ledger"
)

var (
	// Access control
	ErrUnauthorized = errors.New("token: unauthorized")

	// Sale gating
	ErrSaleInactive   = errors.New("token: sale inactive")
	ErrNotAllowlisted = errors.New("token: not allowlisted")

	// Purchase validation
	ErrInvalidQuantity     = errors.New("token: quantity must be positive")
	ErrInsufficientPayment = errors.New("token: insufficient payment")
	ErrOverMintLimit       = errors.New("token: over mint limit")

	// Refund window
	ErrWindowClosed    = errors.New("token: refund window closed")
	ErrWindowStillOpen = errors.New("token: refund window still open")

	// Outbound payment failures abort and roll back the operation.
	ErrPaymentFailed = errors.New("token: payment transfer failed")

	ErrInvalidAddress = errors.New("token: invalid address")
)

// Ledger lifecycle errors surface through the contract unchanged, so
// callers have one taxonomy to match against.
var (
	ErrSupplyExceeded             = ledger.ErrSupplyExceeded
	ErrUnknownRecord              = ledger.ErrUnknownRecord
	ErrNotOwner                   = ledger.ErrNotOwner
	ErrComplimentaryNotRefundable = ledger.ErrComplimentaryNotRefundable
	ErrAlreadyRefunded            = ledger.ErrAlreadyRefunded
)
