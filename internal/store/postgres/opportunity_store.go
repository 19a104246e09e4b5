package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a new OpportunityStore backed by the given
// connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const opportunitySelectCols = `id, title, slug, company, sector, location,
	description, rate, min_investment, term_months,
	total_funding_target, current_funding, investors_count,
	status, risk_level, start_date, end_date,
	contract_address, contract_deploy_tx, created_at, updated_at`

func scanOpportunityRow(row pgx.Row) (domain.Opportunity, error) {
	var opp domain.Opportunity
	var status, riskLevel string
	var slug *string

	err := row.Scan(
		&opp.ID, &opp.Title, &slug, &opp.Company, &opp.Sector, &opp.Location,
		&opp.Description, &opp.Rate, &opp.MinInvestment, &opp.TermMonths,
		&opp.TotalFundingTarget, &opp.CurrentFunding, &opp.InvestorsCount,
		&status, &riskLevel, &opp.StartDate, &opp.EndDate,
		&opp.ContractAddress, &opp.ContractDeployTx,
		&opp.CreatedAt, &opp.UpdatedAt,
	)
	if err != nil {
		return domain.Opportunity{}, err
	}
	if slug != nil {
		opp.Slug = *slug
	}
	opp.Status = domain.OpportunityStatus(status)
	opp.RiskLevel = domain.RiskLevel(riskLevel)
	return opp, nil
}

// Create inserts a new opportunity.
func (s *OpportunityStore) Create(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO investment_opportunities (
			id, title, slug, company, sector, location,
			description, rate, min_investment, term_months,
			total_funding_target, current_funding, investors_count,
			status, risk_level, start_date, end_date,
			contract_address, contract_deploy_tx, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, NOW(), NOW()
		)`

	var slug *string
	if opp.Slug != "" {
		slug = &opp.Slug
	}

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.Title, slug, opp.Company, opp.Sector, opp.Location,
		opp.Description, opp.Rate, opp.MinInvestment, opp.TermMonths,
		opp.TotalFundingTarget, opp.CurrentFunding, opp.InvestorsCount,
		string(opp.Status), string(opp.RiskLevel), opp.StartDate, opp.EndDate,
		opp.ContractAddress, opp.ContractDeployTx,
	)
	if err != nil {
		return fmt.Errorf("postgres: create opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// GetByID retrieves a single opportunity by its ID.
func (s *OpportunityStore) GetByID(ctx context.Context, id string) (domain.Opportunity, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+opportunitySelectCols+` FROM investment_opportunities WHERE id = $1`, id)

	opp, err := scanOpportunityRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Opportunity{}, domain.ErrNotFound
		}
		return domain.Opportunity{}, fmt.Errorf("postgres: get opportunity %s: %w", id, err)
	}
	return opp, nil
}

// ApplyFunding adds a confirmed investment amount to the opportunity's
// funding in one guarded update: the increment, the investor count bump,
// and the conditional close all happen atomically inside the database, so
// two concurrent confirmations against the same opportunity cannot lose an
// increment. Only an active opportunity accepts funding.
func (s *OpportunityStore) ApplyFunding(ctx context.Context, id string, amount decimal.Decimal) (domain.FundingUpdate, error) {
	const query = `
		UPDATE investment_opportunities SET
			current_funding = current_funding + $2,
			investors_count = investors_count + 1,
			status = CASE
				WHEN current_funding + $2 >= total_funding_target THEN 'closed'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING current_funding, investors_count, status`

	var upd domain.FundingUpdate
	var status string
	err := s.pool.QueryRow(ctx, query, id, amount).
		Scan(&upd.CurrentFunding, &upd.InvestorsCount, &status)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Distinguish a vanished row from one that is no longer active.
			var exists bool
			checkErr := s.pool.QueryRow(ctx,
				"SELECT EXISTS(SELECT 1 FROM investment_opportunities WHERE id = $1)", id,
			).Scan(&exists)
			if checkErr == nil && exists {
				return domain.FundingUpdate{}, fmt.Errorf("postgres: apply funding %s: %w", id, domain.ErrInvalidState)
			}
			return domain.FundingUpdate{}, domain.ErrNotFound
		}
		return domain.FundingUpdate{}, fmt.Errorf("postgres: apply funding %s: %w", id, err)
	}
	upd.Status = domain.OpportunityStatus(status)
	return upd, nil
}

// SetContract records the deployed bond-token contract for an opportunity.
func (s *OpportunityStore) SetContract(ctx context.Context, id, contractAddress, deployTx string) error {
	const query = `
		UPDATE investment_opportunities SET
			contract_address   = $2,
			contract_deploy_tx = $3,
			updated_at         = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, contractAddress, deployTx)
	if err != nil {
		return fmt.Errorf("postgres: set contract %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByStatus returns opportunities in the given state, newest first.
func (s *OpportunityStore) ListByStatus(ctx context.Context, status domain.OpportunityStatus, opts domain.ListOpts) ([]domain.Opportunity, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+opportunitySelectCols+` FROM investment_opportunities
		 WHERE status = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		string(status), listLimit(opts), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		opp, err := scanOpportunityRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunities: %w", err)
		}
		opps = append(opps, opp)
	}
	return opps, rows.Err()
}
