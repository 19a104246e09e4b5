package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes the kinds of monetary movement on an
// investor's ledger.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeInvestment TransactionType = "Investment"
	TransactionTypeWithdrawal TransactionType = "Withdrawal"
)

// TransactionStatus mirrors the outcome of the movement. For investment
// transactions the status follows the linked investment: confirmed maps to
// completed, cancelled maps to failed.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is a ledger entry for one monetary movement. Investment
// transactions carry a negative amount (outflow from the investor's balance)
// and usually reference the investment they fund; legacy rows may lack the
// reference and are matched by investor, type and negated amount instead.
type Transaction struct {
	ID            string
	UserID        string
	Date          time.Time
	Type          TransactionType
	Amount        decimal.Decimal
	Currency      string
	Status        TransactionStatus
	Reference     string
	InvestmentID  *string
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
