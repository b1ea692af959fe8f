package ledger

import "errors"

var (
	// Mint errors
	ErrSupplyExceeded = errors.New("ledger: supply exceeded")

	// Lookup and transfer errors
	ErrUnknownRecord = errors.New("ledger: unknown record")
	ErrNotOwner      = errors.New("ledger: not owner")

	// Refund lifecycle errors
	ErrComplimentaryNotRefundable = errors.New("ledger: complimentary record not refundable")
	ErrAlreadyRefunded            = errors.New("ledger: record already refunded")
)
