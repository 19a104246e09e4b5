package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// OpportunityService serves opportunity reads and records contract
// deployments. Funding fields are off limits here; only ApplyFunding inside
// the confirmation workflow writes them.
type OpportunityService struct {
	opportunities domain.OpportunityStore
	logger        *slog.Logger
}

// NewOpportunityService creates an OpportunityService.
func NewOpportunityService(opportunities domain.OpportunityStore, logger *slog.Logger) *OpportunityService {
	return &OpportunityService{opportunities: opportunities, logger: logger}
}

// GetByID returns one opportunity.
func (s *OpportunityService) GetByID(ctx context.Context, id string) (domain.Opportunity, error) {
	opp, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return domain.Opportunity{}, fmt.Errorf("opportunity: get %s: %w", id, err)
	}
	return opp, nil
}

// ListActive returns the opportunities currently open for investment.
func (s *OpportunityService) ListActive(ctx context.Context, opts domain.ListOpts) ([]domain.Opportunity, error) {
	opps, err := s.opportunities.ListByStatus(ctx, domain.OpportunityStatusActive, opts)
	if err != nil {
		return nil, fmt.Errorf("opportunity: list active: %w", err)
	}
	return opps, nil
}

// RecordContract stores the address and deployment transaction of the
// bond-token contract backing an opportunity. Confirmations mint against
// this address from then on.
func (s *OpportunityService) RecordContract(ctx context.Context, id, contractAddress, deployTx string) error {
	if contractAddress == "" {
		return fmt.Errorf("opportunity: contract address must not be empty: %w", domain.ErrInvalidAddress)
	}
	if err := s.opportunities.SetContract(ctx, id, contractAddress, deployTx); err != nil {
		return fmt.Errorf("opportunity: record contract for %s: %w", id, err)
	}

	s.logger.InfoContext(ctx, "opportunity: contract recorded",
		slog.String("opportunity_id", id),
		slog.String("contract_address", contractAddress),
		slog.String("deploy_tx", deployTx),
	)
	return nil
}
