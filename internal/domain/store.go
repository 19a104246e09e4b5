package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
}

// InvestmentStore persists investments. Status is only ever written by the
// confirmation workflow.
type InvestmentStore interface {
	Create(ctx context.Context, inv Investment) error
	GetByID(ctx context.Context, id string) (Investment, error)
	UpdateStatus(ctx context.Context, id string, status InvestmentStatus) error
	// SetMintReference records the mint transaction hash and the wallet the
	// bonds were minted to, after a successful on-chain mint.
	SetMintReference(ctx context.Context, id, txHash, wallet string) error
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Investment, error)
	ListByOpportunity(ctx context.Context, opportunityID string, opts ListOpts) ([]Investment, error)
}

// TransactionStore persists investor ledger entries.
type TransactionStore interface {
	Create(ctx context.Context, tx Transaction) error
	GetByID(ctx context.Context, id string) (Transaction, error)
	// FindByInvestmentID returns the transaction that references the given
	// investment, or ErrNotFound.
	FindByInvestmentID(ctx context.Context, investmentID string) (Transaction, error)
	// FindLatestByUserAndAmount matches legacy rows that lack an investment
	// reference: most recent investment-type transaction for the user with
	// the given (negative) amount.
	FindLatestByUserAndAmount(ctx context.Context, userID string, amount decimal.Decimal) (Transaction, error)
	UpdateStatus(ctx context.Context, id string, status TransactionStatus) error
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Transaction, error)
}

// OpportunityStore persists funding rounds. ApplyFunding is the single
// write path for the funding fields and must be atomic: the increment, the
// investor count bump, and the conditional close happen in one guarded
// update so concurrent confirmations cannot lose an increment.
type OpportunityStore interface {
	Create(ctx context.Context, opp Opportunity) error
	GetByID(ctx context.Context, id string) (Opportunity, error)
	ApplyFunding(ctx context.Context, id string, amount decimal.Decimal) (FundingUpdate, error)
	// SetContract records the deployed bond-token contract for an
	// opportunity.
	SetContract(ctx context.Context, id, contractAddress, deployTx string) error
	ListByStatus(ctx context.Context, status OpportunityStatus, opts ListOpts) ([]Opportunity, error)
}

// AssetStore persists bond ownership records.
type AssetStore interface {
	Create(ctx context.Context, asset Asset) error
	ListByUser(ctx context.Context, userID string, opts ListOpts) ([]Asset, error)
}

// UserStore reads investor accounts.
type UserStore interface {
	GetByID(ctx context.Context, id string) (User, error)
}

// ProfileStore reads investor profiles.
type ProfileStore interface {
	// GetWalletAddress returns the profile wallet for the user, or
	// ErrNotFound when the user has no profile or no wallet on file.
	GetWalletAddress(ctx context.Context, userID string) (string, error)
}

// DocumentStore persists opportunity document metadata.
type DocumentStore interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, id string) (Document, error)
	ListByOpportunity(ctx context.Context, opportunityID string) ([]Document, error)
}

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	TotalUsers          int64
	TotalInvestments    int64
	AmountRaised        decimal.Decimal
	ActiveOpportunities int64
}

// StatsStore computes platform-wide aggregates in the database.
type StatsStore interface {
	PlatformStats(ctx context.Context) (PlatformStats, error)
}
