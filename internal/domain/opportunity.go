package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpportunityStatus represents the lifecycle state of a funding round.
type OpportunityStatus string

const (
	OpportunityStatusActive   OpportunityStatus = "active"
	OpportunityStatusUpcoming OpportunityStatus = "upcoming"
	OpportunityStatusClosed   OpportunityStatus = "closed"
	OpportunityStatusPaused   OpportunityStatus = "paused"
)

// RiskLevel classifies an opportunity for investor disclosure.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Opportunity is a bond funding round that investments count against.
// CurrentFunding and InvestorsCount are mutated exclusively through
// OpportunityStore.ApplyFunding; admin CRUD touches only the descriptive
// fields.
type Opportunity struct {
	ID            string
	Title         string
	Slug          string
	Company       string
	Sector        string
	Location      string
	Description   string
	Rate          decimal.Decimal // annual rate, percent
	MinInvestment decimal.Decimal
	TermMonths    int

	TotalFundingTarget decimal.Decimal
	CurrentFunding     decimal.Decimal
	InvestorsCount     int64

	Status    OpportunityStatus
	RiskLevel RiskLevel
	StartDate time.Time
	EndDate   *time.Time

	// ContractAddress is set once a bond-token contract has been deployed
	// for this opportunity; nil means bonds cannot be minted yet.
	ContractAddress  *string
	ContractDeployTx *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TargetReached reports whether the funding target has been met.
func (o Opportunity) TargetReached() bool {
	return o.CurrentFunding.GreaterThanOrEqual(o.TotalFundingTarget)
}

// FundingUpdate is the outcome of an ApplyFunding call, returned so callers
// can log the post-update totals without a second read.
type FundingUpdate struct {
	CurrentFunding decimal.Decimal
	InvestorsCount int64
	Status         OpportunityStatus
}
