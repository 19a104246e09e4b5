package handler

import (
	"net/http"

	"github.com/Skysparko/trust-ledger-backend/internal/service"
)

// StatsHandler serves the admin dashboard summary.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Platform returns the platform-wide aggregates.
// GET /api/admin/stats
func (h *StatsHandler) Platform(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Platform(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total_users":          stats.TotalUsers,
		"total_investments":    stats.TotalInvestments,
		"amount_raised":        stats.AmountRaised.StringFixed(2),
		"active_opportunities": stats.ActiveOpportunities,
	})
}
