package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// StatsStore computes platform aggregates with SQL so the dashboard never
// pages full tables through the application.
type StatsStore struct {
	pool *pgxpool.Pool
}

// NewStatsStore creates a new StatsStore backed by the given pool.
func NewStatsStore(pool *pgxpool.Pool) *StatsStore {
	return &StatsStore{pool: pool}
}

// PlatformStats returns the admin dashboard summary. Amount raised counts
// completed investment transactions; their amounts are stored negative, so
// the sum is taken over absolute values.
func (s *StatsStore) PlatformStats(ctx context.Context) (domain.PlatformStats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_active),
			(SELECT COUNT(*) FROM investments),
			(SELECT COALESCE(SUM(ABS(amount)), 0) FROM transactions
			 WHERE type = 'Investment' AND status = 'completed'),
			(SELECT COUNT(*) FROM investment_opportunities WHERE status = 'active')`

	var stats domain.PlatformStats
	err := s.pool.QueryRow(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.TotalInvestments,
		&stats.AmountRaised,
		&stats.ActiveOpportunities,
	)
	if err != nil {
		return domain.PlatformStats{}, fmt.Errorf("postgres: platform stats: %w", err)
	}
	return stats, nil
}
