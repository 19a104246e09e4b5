package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Skysparko/trust-ledger-backend/internal/service"
)

// OpportunityHandler serves opportunity reads and the contract record
// action.
type OpportunityHandler struct {
	opportunities *service.OpportunityService
	investments   *service.InvestmentService
}

// NewOpportunityHandler creates an OpportunityHandler.
func NewOpportunityHandler(opportunities *service.OpportunityService, investments *service.InvestmentService) *OpportunityHandler {
	return &OpportunityHandler{
		opportunities: opportunities,
		investments:   investments,
	}
}

// List returns the active opportunities.
// GET /api/opportunities
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	opps, err := h.opportunities.ListActive(r.Context(), parseListOpts(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]opportunityResponse, 0, len(opps))
	for _, opp := range opps {
		out = append(out, toOpportunityResponse(opp))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one opportunity.
// GET /api/opportunities/{id}
func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	opp, err := h.opportunities.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOpportunityResponse(opp))
}

// ListInvestments returns the investments counted against an opportunity.
// GET /api/admin/opportunities/{id}/investments
func (h *OpportunityHandler) ListInvestments(w http.ResponseWriter, r *http.Request) {
	invs, err := h.investments.ListByOpportunity(r.Context(), r.PathValue("id"), parseListOpts(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInvestmentResponses(invs))
}

type recordContractRequest struct {
	ContractAddress string `json:"contract_address"`
	DeployTx        string `json:"deploy_tx"`
}

// RecordContract stores the deployed bond-token contract for an
// opportunity.
// PUT /api/admin/opportunities/{id}/contract
func (h *OpportunityHandler) RecordContract(w http.ResponseWriter, r *http.Request) {
	var req recordContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := r.PathValue("id")
	if err := h.opportunities.RecordContract(r.Context(), id, req.ContractAddress, req.DeployTx); err != nil {
		writeDomainError(w, err)
		return
	}

	opp, err := h.opportunities.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOpportunityResponse(opp))
}
