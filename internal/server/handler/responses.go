package handler

import (
	"time"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// Response DTOs keep the wire format stable independently of the domain
// structs.

type investmentResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	OpportunityID string `json:"opportunity_id"`
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Bonds         int64  `json:"bonds"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
	WalletAddress string `json:"wallet_address,omitempty"`
	MintTxHash    string `json:"mint_tx_hash,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

func toInvestmentResponse(inv domain.Investment) investmentResponse {
	return investmentResponse{
		ID:            inv.ID,
		UserID:        inv.UserID,
		OpportunityID: inv.OpportunityID,
		Date:          inv.Date.UTC().Format(time.RFC3339),
		Amount:        inv.Amount.StringFixed(2),
		Bonds:         inv.Bonds,
		Status:        string(inv.Status),
		PaymentMethod: string(inv.PaymentMethod),
		WalletAddress: inv.WalletAddress,
		MintTxHash:    inv.MintTxHash,
		CreatedAt:     inv.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     inv.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toInvestmentResponses(invs []domain.Investment) []investmentResponse {
	out := make([]investmentResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, toInvestmentResponse(inv))
	}
	return out
}

type opportunityResponse struct {
	ID                 string  `json:"id"`
	Title              string  `json:"title"`
	Company            string  `json:"company"`
	Sector             string  `json:"sector"`
	Location           string  `json:"location"`
	Rate               string  `json:"rate"`
	MinInvestment      string  `json:"min_investment"`
	TermMonths         int     `json:"term_months"`
	TotalFundingTarget string  `json:"total_funding_target"`
	CurrentFunding     string  `json:"current_funding"`
	InvestorsCount     int64   `json:"investors_count"`
	Status             string  `json:"status"`
	RiskLevel          string  `json:"risk_level"`
	ContractAddress    *string `json:"contract_address,omitempty"`
	ContractDeployTx   *string `json:"contract_deploy_tx,omitempty"`
}

func toOpportunityResponse(opp domain.Opportunity) opportunityResponse {
	return opportunityResponse{
		ID:                 opp.ID,
		Title:              opp.Title,
		Company:            opp.Company,
		Sector:             opp.Sector,
		Location:           opp.Location,
		Rate:               opp.Rate.StringFixed(2),
		MinInvestment:      opp.MinInvestment.StringFixed(2),
		TermMonths:         opp.TermMonths,
		TotalFundingTarget: opp.TotalFundingTarget.StringFixed(2),
		CurrentFunding:     opp.CurrentFunding.StringFixed(2),
		InvestorsCount:     opp.InvestorsCount,
		Status:             string(opp.Status),
		RiskLevel:          string(opp.RiskLevel),
		ContractAddress:    opp.ContractAddress,
		ContractDeployTx:   opp.ContractDeployTx,
	}
}

type documentResponse struct {
	ID            string `json:"id"`
	OpportunityID string `json:"opportunity_id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	ContentType   string `json:"content_type"`
	SizeBytes     int64  `json:"size_bytes"`
	CreatedAt     string `json:"created_at"`
}

func toDocumentResponse(doc domain.Document) documentResponse {
	return documentResponse{
		ID:            doc.ID,
		OpportunityID: doc.OpportunityID,
		Name:          doc.Name,
		Category:      string(doc.Category),
		ContentType:   doc.ContentType,
		SizeBytes:     doc.SizeBytes,
		CreatedAt:     doc.CreatedAt.UTC().Format(time.RFC3339),
	}
}
