package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentStatus tracks the investment lifecycle. Pending is the only
// non-terminal state: a pending investment is either confirmed or cancelled
// exactly once, by an admin action.
type InvestmentStatus string

const (
	InvestmentStatusPending   InvestmentStatus = "pending"
	InvestmentStatusConfirmed InvestmentStatus = "confirmed"
	InvestmentStatusCancelled InvestmentStatus = "cancelled"
)

// PaymentMethod indicates how the investor funded the commitment.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodSEPA         PaymentMethod = "sepa"
)

// Investment is a single funding commitment by one investor into one
// investment opportunity.
type Investment struct {
	ID            string
	UserID        string
	OpportunityID string
	Date          time.Time
	Amount        decimal.Decimal
	Bonds         int64
	Status        InvestmentStatus
	PaymentMethod PaymentMethod
	DocumentURL   string

	// WalletAddress is captured at creation time (request value, falling
	// back to the investor's profile wallet) and used as the mint target
	// when the investment is confirmed.
	WalletAddress string
	// MintTxHash is the hash of the bond-minting transaction, set only
	// after a successful on-chain mint.
	MintTxHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPending reports whether the investment can still be confirmed or
// cancelled.
func (i Investment) IsPending() bool {
	return i.Status == InvestmentStatusPending
}
