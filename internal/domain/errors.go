package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	// ErrLedgerFailure marks a funding update that failed after the
	// investment status had already flipped; the records need manual
	// reconciliation.
	ErrLedgerFailure = errors.New("funding ledger update failed")
	ErrLockHeld      = errors.New("lock already held")
	ErrRateLimited   = errors.New("rate limited")

	// Minting adapter failure classes. The orchestrator logs them
	// distinctly but treats all of them as non-fatal.
	ErrInvalidAddress    = errors.New("invalid address")
	ErrContractNotFound  = errors.New("contract not found")
	ErrInsufficientFunds = errors.New("insufficient funds for gas")
)
