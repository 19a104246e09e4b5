package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// bondPrice is the fixed bond denomination: one bond costs 100 units of
// platform currency.
var bondPrice = decimal.NewFromInt(100)

// rateLimitWindow is the sliding window for per-user investment creation.
const rateLimitWindow = time.Minute

// CreateInvestmentInput carries the investor's request to open a position.
type CreateInvestmentInput struct {
	UserID        string
	OpportunityID string
	Bonds         int64
	PaymentMethod domain.PaymentMethod
	// WalletAddress optionally overrides the profile wallet as the future
	// mint target.
	WalletAddress string
}

// InvestmentService creates pending investments and serves investor reads.
// Confirming or cancelling them is ConfirmationService's job.
type InvestmentService struct {
	investments   domain.InvestmentStore
	transactions  domain.TransactionStore
	opportunities domain.OpportunityStore
	profiles      domain.ProfileStore
	limiter       domain.RateLimiter
	bus           domain.EventBus
	createLimit   int
	logger        *slog.Logger
}

// NewInvestmentService creates an InvestmentService. createLimit bounds how
// many investments one user can open per minute.
func NewInvestmentService(
	investments domain.InvestmentStore,
	transactions domain.TransactionStore,
	opportunities domain.OpportunityStore,
	profiles domain.ProfileStore,
	limiter domain.RateLimiter,
	bus domain.EventBus,
	createLimit int,
	logger *slog.Logger,
) *InvestmentService {
	return &InvestmentService{
		investments:   investments,
		transactions:  transactions,
		opportunities: opportunities,
		profiles:      profiles,
		limiter:       limiter,
		bus:           bus,
		createLimit:   createLimit,
		logger:        logger,
	}
}

// Create opens a pending investment and its companion ledger transaction.
// The amount is derived from the bond count at the fixed bond price. The
// wallet address is captured now (request value, else profile wallet) so the
// mint target is settled before confirmation.
func (s *InvestmentService) Create(ctx context.Context, in CreateInvestmentInput) (domain.Investment, error) {
	allowed, err := s.limiter.Allow(ctx, "invest:"+in.UserID, s.createLimit, rateLimitWindow)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("investment: rate limit check: %w", err)
	}
	if !allowed {
		return domain.Investment{}, fmt.Errorf("investment: user %s: %w", in.UserID, domain.ErrRateLimited)
	}

	if in.Bonds <= 0 {
		return domain.Investment{}, fmt.Errorf("investment: bond count %d must be positive: %w",
			in.Bonds, domain.ErrInvalidState)
	}

	opp, err := s.opportunities.GetByID(ctx, in.OpportunityID)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("investment: opportunity %s: %w", in.OpportunityID, err)
	}
	if opp.Status != domain.OpportunityStatusActive {
		return domain.Investment{}, fmt.Errorf("investment: opportunity %s is %s, not active: %w",
			opp.ID, opp.Status, domain.ErrInvalidState)
	}

	amount := bondPrice.Mul(decimal.NewFromInt(in.Bonds))
	if amount.LessThan(opp.MinInvestment) {
		return domain.Investment{}, fmt.Errorf("investment: amount %s below minimum %s: %w",
			amount, opp.MinInvestment, domain.ErrInvalidState)
	}
	if opp.CurrentFunding.Add(amount).GreaterThan(opp.TotalFundingTarget) {
		return domain.Investment{}, fmt.Errorf("investment: amount %s exceeds funding target: %w",
			amount, domain.ErrInvalidState)
	}

	wallet := in.WalletAddress
	if wallet == "" {
		if w, err := s.profiles.GetWalletAddress(ctx, in.UserID); err == nil {
			wallet = w
		} else if !isNotFound(err) {
			return domain.Investment{}, fmt.Errorf("investment: profile wallet for %s: %w", in.UserID, err)
		}
	}

	now := time.Now().UTC()
	inv := domain.Investment{
		ID:            uuid.New().String(),
		UserID:        in.UserID,
		OpportunityID: in.OpportunityID,
		Date:          now,
		Amount:        amount,
		Bonds:         in.Bonds,
		Status:        domain.InvestmentStatusPending,
		PaymentMethod: in.PaymentMethod,
		WalletAddress: wallet,
	}
	if err := s.investments.Create(ctx, inv); err != nil {
		return domain.Investment{}, fmt.Errorf("investment: create: %w", err)
	}

	invID := inv.ID
	tx := domain.Transaction{
		ID:            uuid.New().String(),
		UserID:        in.UserID,
		Date:          now,
		Type:          domain.TransactionTypeInvestment,
		Amount:        amount.Neg(),
		Currency:      "USD",
		Status:        domain.TransactionStatusPending,
		Reference:     newTransactionReference(now),
		InvestmentID:  &invID,
		PaymentMethod: in.PaymentMethod,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return domain.Investment{}, fmt.Errorf("investment: create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "investment: created",
		slog.String("investment_id", inv.ID),
		slog.String("user_id", in.UserID),
		slog.String("opportunity_id", in.OpportunityID),
		slog.String("amount", amount.String()),
		slog.Int64("bonds", in.Bonds),
	)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, EventChannel, []byte(
			fmt.Sprintf(`{"event":"investment.created","investment_id":%q,"opportunity_id":%q}`, inv.ID, inv.OpportunityID),
		)); err != nil {
			s.logger.WarnContext(ctx, "investment: event publish failed",
				slog.String("investment_id", inv.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return inv, nil
}

// GetByID returns one investment.
func (s *InvestmentService) GetByID(ctx context.Context, id string) (domain.Investment, error) {
	inv, err := s.investments.GetByID(ctx, id)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("investment: get %s: %w", id, err)
	}
	return inv, nil
}

// ListByUser returns the user's investments, newest first.
func (s *InvestmentService) ListByUser(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Investment, error) {
	invs, err := s.investments.ListByUser(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("investment: list for %s: %w", userID, err)
	}
	return invs, nil
}

// ListByOpportunity returns the investments counted against an opportunity.
func (s *InvestmentService) ListByOpportunity(ctx context.Context, opportunityID string, opts domain.ListOpts) ([]domain.Investment, error) {
	invs, err := s.investments.ListByOpportunity(ctx, opportunityID, opts)
	if err != nil {
		return nil, fmt.Errorf("investment: list for opportunity %s: %w", opportunityID, err)
	}
	return invs, nil
}

// newTransactionReference builds the investor-visible ledger reference in
// the TXN-<year>-<six digits> form.
func newTransactionReference(now time.Time) string {
	return fmt.Sprintf("TXN-%d-%06d", now.Year(), rand.Intn(1_000_000))
}
