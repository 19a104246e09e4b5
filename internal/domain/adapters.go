package domain

import "context"

// Minter mints bond tokens on chain. Implementations make exactly one
// attempt per call; retrying is the caller's decision.
type Minter interface {
	// Mint mints bondCount bonds from the opportunity's contract to the
	// investor's wallet and returns the transaction hash. Failures are
	// classified as ErrInvalidAddress, ErrContractNotFound,
	// ErrInsufficientFunds, or a generic chain error.
	Mint(ctx context.Context, contractAddress, toWallet string, bondCount int64) (string, error)
}

// InvestmentDetails carries everything the investor-facing emails mention.
type InvestmentDetails struct {
	InvestmentID     string
	OpportunityTitle string
	Amount           string
	Bonds            int64
	Reference        string
	MintTxHash       string
}

// Mailer sends investor notifications. Errors are reported but never fatal
// to the operation that triggered the email.
type Mailer interface {
	SendConfirmation(ctx context.Context, to, name string, details InvestmentDetails) error
	SendCancellation(ctx context.Context, to, name string, details InvestmentDetails) error
}
