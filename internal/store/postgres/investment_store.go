package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// InvestmentStore implements domain.InvestmentStore using PostgreSQL.
type InvestmentStore struct {
	pool *pgxpool.Pool
}

// NewInvestmentStore creates a new InvestmentStore backed by the given
// connection pool.
func NewInvestmentStore(pool *pgxpool.Pool) *InvestmentStore {
	return &InvestmentStore{pool: pool}
}

const investmentSelectCols = `id, user_id, opportunity_id, date, amount, bonds,
	status, payment_method, document_url, wallet_address, mint_tx_hash,
	created_at, updated_at`

func scanInvestmentRow(row pgx.Row) (domain.Investment, error) {
	var inv domain.Investment
	var status, paymentMethod string

	err := row.Scan(
		&inv.ID, &inv.UserID, &inv.OpportunityID, &inv.Date,
		&inv.Amount, &inv.Bonds,
		&status, &paymentMethod,
		&inv.DocumentURL, &inv.WalletAddress, &inv.MintTxHash,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Investment{}, err
	}
	inv.Status = domain.InvestmentStatus(status)
	inv.PaymentMethod = domain.PaymentMethod(paymentMethod)
	return inv, nil
}

func scanInvestmentRows(rows pgx.Rows) ([]domain.Investment, error) {
	var investments []domain.Investment
	for rows.Next() {
		inv, err := scanInvestmentRow(rows)
		if err != nil {
			return nil, err
		}
		investments = append(investments, inv)
	}
	return investments, rows.Err()
}

// Create inserts a new investment.
func (s *InvestmentStore) Create(ctx context.Context, inv domain.Investment) error {
	const query = `
		INSERT INTO investments (
			id, user_id, opportunity_id, date, amount, bonds,
			status, payment_method, document_url, wallet_address, mint_tx_hash,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			NOW(), NOW()
		)`

	_, err := s.pool.Exec(ctx, query,
		inv.ID, inv.UserID, inv.OpportunityID, inv.Date,
		inv.Amount, inv.Bonds,
		string(inv.Status), string(inv.PaymentMethod),
		inv.DocumentURL, inv.WalletAddress, inv.MintTxHash,
	)
	if err != nil {
		return fmt.Errorf("postgres: create investment %s: %w", inv.ID, err)
	}
	return nil
}

// GetByID retrieves a single investment by its ID.
func (s *InvestmentStore) GetByID(ctx context.Context, id string) (domain.Investment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+investmentSelectCols+` FROM investments WHERE id = $1`, id)

	inv, err := scanInvestmentRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Investment{}, domain.ErrNotFound
		}
		return domain.Investment{}, fmt.Errorf("postgres: get investment %s: %w", id, err)
	}
	return inv, nil
}

// UpdateStatus sets the investment status.
func (s *InvestmentStore) UpdateStatus(ctx context.Context, id string, status domain.InvestmentStatus) error {
	const query = `
		UPDATE investments SET
			status     = $2,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("postgres: update investment status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetMintReference records the mint transaction hash and target wallet.
func (s *InvestmentStore) SetMintReference(ctx context.Context, id, txHash, wallet string) error {
	const query = `
		UPDATE investments SET
			mint_tx_hash   = $2,
			wallet_address = $3,
			updated_at     = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, txHash, wallet)
	if err != nil {
		return fmt.Errorf("postgres: set mint reference %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser returns investments for the given user, newest first.
func (s *InvestmentStore) ListByUser(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Investment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+investmentSelectCols+` FROM investments
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, listLimit(opts), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list investments for user %s: %w", userID, err)
	}
	defer rows.Close()

	investments, err := scanInvestmentRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan investments: %w", err)
	}
	return investments, nil
}

// ListByOpportunity returns investments for the given opportunity, newest first.
func (s *InvestmentStore) ListByOpportunity(ctx context.Context, opportunityID string, opts domain.ListOpts) ([]domain.Investment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+investmentSelectCols+` FROM investments
		 WHERE opportunity_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		opportunityID, listLimit(opts), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list investments for opportunity %s: %w", opportunityID, err)
	}
	defer rows.Close()

	investments, err := scanInvestmentRows(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres: scan investments: %w", err)
	}
	return investments, nil
}

// listLimit applies the default page size when the caller did not set one.
func listLimit(opts domain.ListOpts) int {
	if opts.Limit <= 0 {
		return 50
	}
	return opts.Limit
}
