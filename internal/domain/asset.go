package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType classifies the holding recorded for an investor.
type AssetType string

const (
	AssetTypeBond        AssetType = "Bond"
	AssetTypeCertificate AssetType = "Certificate"
)

// Asset records bond ownership created when an investment is confirmed.
// Exactly one asset is written per confirmation and it is never mutated
// afterwards.
type Asset struct {
	ID            string
	UserID        string
	OpportunityID string
	Name          string
	Type          AssetType
	Quantity      int64
	Value         decimal.Decimal
	DateAcquired  time.Time
	CreatedAt     time.Time
}
