package service

import (
	"context"
	"fmt"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// StatsService serves the admin dashboard summary.
type StatsService struct {
	stats domain.StatsStore
}

// NewStatsService creates a StatsService.
func NewStatsService(stats domain.StatsStore) *StatsService {
	return &StatsService{stats: stats}
}

// Platform returns the platform-wide aggregates.
func (s *StatsService) Platform(ctx context.Context) (domain.PlatformStats, error) {
	stats, err := s.stats.PlatformStats(ctx)
	if err != nil {
		return domain.PlatformStats{}, fmt.Errorf("stats: platform: %w", err)
	}
	return stats, nil
}
