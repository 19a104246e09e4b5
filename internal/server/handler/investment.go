package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
	"github.com/Skysparko/trust-ledger-backend/internal/service"
)

// InvestmentHandler serves investment creation, reads, and the admin
// confirm/cancel actions.
type InvestmentHandler struct {
	investments   *service.InvestmentService
	confirmations *service.ConfirmationService
}

// NewInvestmentHandler creates an InvestmentHandler.
func NewInvestmentHandler(investments *service.InvestmentService, confirmations *service.ConfirmationService) *InvestmentHandler {
	return &InvestmentHandler{
		investments:   investments,
		confirmations: confirmations,
	}
}

type createInvestmentRequest struct {
	UserID        string `json:"user_id"`
	OpportunityID string `json:"opportunity_id"`
	Bonds         int64  `json:"bonds"`
	PaymentMethod string `json:"payment_method"`
	WalletAddress string `json:"wallet_address"`
}

// Create opens a pending investment.
// POST /api/investments
func (h *InvestmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvestmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.OpportunityID == "" {
		writeError(w, http.StatusBadRequest, "user_id and opportunity_id are required")
		return
	}

	inv, err := h.investments.Create(r.Context(), service.CreateInvestmentInput{
		UserID:        req.UserID,
		OpportunityID: req.OpportunityID,
		Bonds:         req.Bonds,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvestmentResponse(inv))
}

// Get returns one investment.
// GET /api/investments/{id}
func (h *InvestmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.investments.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

// ListByUser returns a user's investments.
// GET /api/users/{id}/investments
func (h *InvestmentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	invs, err := h.investments.ListByUser(r.Context(), r.PathValue("id"), parseListOpts(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponses(invs))
}

// Confirm runs the confirmation workflow for an investment or transaction
// reference.
// POST /api/admin/investments/{id}/confirm
func (h *InvestmentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	inv, err := h.confirmations.Confirm(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}

// Cancel cancels a pending investment.
// POST /api/admin/investments/{id}/cancel
func (h *InvestmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	inv, err := h.confirmations.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponse(inv))
}
