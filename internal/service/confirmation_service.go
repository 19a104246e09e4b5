// Package service implements the platform's business operations on top of
// the domain stores and adapters.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// confirmLockTTL bounds how long a confirmation can hold the per-investment
// lock before it expires on its own.
const confirmLockTTL = 30 * time.Second

// EventChannel is the Redis channel investment lifecycle events are
// published on.
const EventChannel = "events:investments"

// ConfirmationService drives the investment confirmation workflow: the
// status transition, the companion transaction, the funding ledger, the
// asset record, and the best-effort mint and email steps, in that fixed
// order. Later steps are allowed to fail silently while earlier ones are
// not, so the order is load-bearing.
type ConfirmationService struct {
	investments   domain.InvestmentStore
	transactions  domain.TransactionStore
	opportunities domain.OpportunityStore
	assets        domain.AssetStore
	users         domain.UserStore
	profiles      domain.ProfileStore
	locks         domain.LockManager
	bus           domain.EventBus
	minter        domain.Minter // nil when minting is not configured
	mailer        domain.Mailer // nil when email is not configured
	logger        *slog.Logger
}

// NewConfirmationService creates a ConfirmationService. minter and mailer
// may be nil; the corresponding best-effort steps are then skipped.
func NewConfirmationService(
	investments domain.InvestmentStore,
	transactions domain.TransactionStore,
	opportunities domain.OpportunityStore,
	assets domain.AssetStore,
	users domain.UserStore,
	profiles domain.ProfileStore,
	locks domain.LockManager,
	bus domain.EventBus,
	minter domain.Minter,
	mailer domain.Mailer,
	logger *slog.Logger,
) *ConfirmationService {
	return &ConfirmationService{
		investments:   investments,
		transactions:  transactions,
		opportunities: opportunities,
		assets:        assets,
		users:         users,
		profiles:      profiles,
		locks:         locks,
		bus:           bus,
		minter:        minter,
		mailer:        mailer,
		logger:        logger,
	}
}

// Confirm transitions a pending investment to confirmed, counts its amount
// into the opportunity's funding, creates the bond asset, and then attempts
// the on-chain mint and the confirmation email. The reference may be an
// investment id or a transaction id.
//
// Mint and email failures never fail the call. A funding ledger failure
// after the status flip does fail it, with ErrLedgerFailure: the investment
// is left confirmed but unfunded and needs manual reconciliation.
func (s *ConfirmationService) Confirm(ctx context.Context, reference string) (domain.Investment, error) {
	inv, err := s.resolve(ctx, reference)
	if err != nil {
		return domain.Investment{}, err
	}

	unlock, err := s.locks.Acquire(ctx, "investment:"+inv.ID, confirmLockTTL)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("confirmation: lock investment %s: %w", inv.ID, err)
	}
	defer unlock()

	// Re-read under the lock; a concurrent confirm or cancel may have won
	// the race between resolution and acquisition.
	inv, err = s.investments.GetByID(ctx, inv.ID)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("confirmation: reload investment %s: %w", inv.ID, err)
	}
	if !inv.IsPending() {
		return domain.Investment{}, fmt.Errorf("confirmation: investment %s is %s, not pending: %w",
			inv.ID, inv.Status, domain.ErrInvalidState)
	}

	opp, err := s.opportunities.GetByID(ctx, inv.OpportunityID)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("confirmation: opportunity %s: %w", inv.OpportunityID, err)
	}
	if opp.Status != domain.OpportunityStatusActive {
		return domain.Investment{}, fmt.Errorf("confirmation: opportunity %s is %s, not active: %w",
			opp.ID, opp.Status, domain.ErrInvalidState)
	}

	if err := s.investments.UpdateStatus(ctx, inv.ID, domain.InvestmentStatusConfirmed); err != nil {
		return domain.Investment{}, fmt.Errorf("confirmation: confirm investment %s: %w", inv.ID, err)
	}
	inv.Status = domain.InvestmentStatusConfirmed

	tx, err := s.findCompanion(ctx, inv)
	if err != nil {
		return domain.Investment{}, err
	}
	if tx != nil {
		if err := s.transactions.UpdateStatus(ctx, tx.ID, domain.TransactionStatusCompleted); err != nil {
			return domain.Investment{}, fmt.Errorf("confirmation: complete transaction %s: %w", tx.ID, err)
		}
	}

	upd, err := s.opportunities.ApplyFunding(ctx, inv.OpportunityID, inv.Amount)
	if err != nil {
		// The investment is already confirmed; nothing rolls it back. This
		// is the documented inconsistency seam and it needs an operator.
		s.logger.ErrorContext(ctx, "confirmation: funding ledger failed after status flip, manual reconciliation required",
			slog.String("investment_id", inv.ID),
			slog.String("opportunity_id", inv.OpportunityID),
			slog.String("amount", inv.Amount.String()),
			slog.String("error", err.Error()),
		)
		return domain.Investment{}, fmt.Errorf("confirmation: investment %s: %v: %w", inv.ID, err, domain.ErrLedgerFailure)
	}

	s.logger.InfoContext(ctx, "confirmation: funding applied",
		slog.String("opportunity_id", opp.ID),
		slog.String("current_funding", upd.CurrentFunding.String()),
		slog.Int64("investors_count", upd.InvestorsCount),
		slog.String("status", string(upd.Status)),
	)

	bonds := bondQuantity(inv)
	asset := domain.Asset{
		ID:            uuid.New().String(),
		UserID:        inv.UserID,
		OpportunityID: inv.OpportunityID,
		Name:          fmt.Sprintf("%s - Bond #%s", opp.Title, shortID(inv.ID)),
		Type:          domain.AssetTypeBond,
		Quantity:      bonds,
		Value:         inv.Amount,
		DateAcquired:  time.Now().UTC(),
	}
	if err := s.assets.Create(ctx, asset); err != nil {
		return domain.Investment{}, fmt.Errorf("confirmation: create asset for investment %s: %w", inv.ID, err)
	}

	s.runBestEffort(ctx, "mint", inv.ID, func() error {
		return s.mintBonds(ctx, &inv, opp, bonds)
	})

	s.runBestEffort(ctx, "email", inv.ID, func() error {
		return s.sendEmail(ctx, inv, opp, tx, true)
	})

	s.runBestEffort(ctx, "publish", inv.ID, func() error {
		return s.publishEvent(ctx, "investment.confirmed", inv)
	})

	return inv, nil
}

// Cancel transitions a pending investment to cancelled and fails its
// companion transaction. Funding was never counted for a pending
// investment, so the ledger and asset steps do not apply.
func (s *ConfirmationService) Cancel(ctx context.Context, reference string) (domain.Investment, error) {
	inv, err := s.resolve(ctx, reference)
	if err != nil {
		return domain.Investment{}, err
	}

	unlock, err := s.locks.Acquire(ctx, "investment:"+inv.ID, confirmLockTTL)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("confirmation: lock investment %s: %w", inv.ID, err)
	}
	defer unlock()

	inv, err = s.investments.GetByID(ctx, inv.ID)
	if err != nil {
		return domain.Investment{}, fmt.Errorf("confirmation: reload investment %s: %w", inv.ID, err)
	}
	if !inv.IsPending() {
		return domain.Investment{}, fmt.Errorf("confirmation: only pending investments can be cancelled, %s is %s: %w",
			inv.ID, inv.Status, domain.ErrInvalidState)
	}

	if err := s.investments.UpdateStatus(ctx, inv.ID, domain.InvestmentStatusCancelled); err != nil {
		return domain.Investment{}, fmt.Errorf("confirmation: cancel investment %s: %w", inv.ID, err)
	}
	inv.Status = domain.InvestmentStatusCancelled

	tx, err := s.findCompanion(ctx, inv)
	if err != nil {
		return domain.Investment{}, err
	}
	if tx != nil {
		if err := s.transactions.UpdateStatus(ctx, tx.ID, domain.TransactionStatusFailed); err != nil {
			return domain.Investment{}, fmt.Errorf("confirmation: fail transaction %s: %w", tx.ID, err)
		}
	}

	s.runBestEffort(ctx, "email", inv.ID, func() error {
		return s.sendEmail(ctx, inv, domain.Opportunity{}, tx, false)
	})

	s.runBestEffort(ctx, "publish", inv.ID, func() error {
		return s.publishEvent(ctx, "investment.cancelled", inv)
	})

	return inv, nil
}

// resolve maps a reference that may be an investment id or a transaction id
// onto the investment it names.
func (s *ConfirmationService) resolve(ctx context.Context, reference string) (domain.Investment, error) {
	inv, err := s.investments.GetByID(ctx, reference)
	if err == nil {
		return inv, nil
	}
	if !isNotFound(err) {
		return domain.Investment{}, fmt.Errorf("confirmation: resolve %s: %w", reference, err)
	}

	tx, err := s.transactions.GetByID(ctx, reference)
	if err != nil {
		if isNotFound(err) {
			return domain.Investment{}, fmt.Errorf("confirmation: reference %s: %w", reference, domain.ErrNotFound)
		}
		return domain.Investment{}, fmt.Errorf("confirmation: resolve %s: %w", reference, err)
	}
	if tx.InvestmentID == nil {
		return domain.Investment{}, fmt.Errorf("confirmation: transaction %s has no investment: %w", reference, domain.ErrNotFound)
	}

	inv, err = s.investments.GetByID(ctx, *tx.InvestmentID)
	if err != nil {
		if isNotFound(err) {
			return domain.Investment{}, fmt.Errorf("confirmation: investment %s: %w", *tx.InvestmentID, domain.ErrNotFound)
		}
		return domain.Investment{}, fmt.Errorf("confirmation: resolve %s: %w", reference, err)
	}
	return inv, nil
}

// findCompanion locates the transaction funding the investment: by direct
// reference first, then by the legacy (investor, type, negated amount)
// match. A missing companion is not an error; nil is returned.
func (s *ConfirmationService) findCompanion(ctx context.Context, inv domain.Investment) (*domain.Transaction, error) {
	tx, err := s.transactions.FindByInvestmentID(ctx, inv.ID)
	if err == nil {
		return &tx, nil
	}
	if !isNotFound(err) {
		return nil, fmt.Errorf("confirmation: find transaction for %s: %w", inv.ID, err)
	}

	tx, err = s.transactions.FindLatestByUserAndAmount(ctx, inv.UserID, inv.Amount.Neg())
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("confirmation: find transaction for %s: %w", inv.ID, err)
	}
	return &tx, nil
}

// mintBonds attempts the on-chain mint for a confirmed investment. It is
// skipped without error when minting is not configured, the opportunity has
// no contract, or no wallet is on file.
func (s *ConfirmationService) mintBonds(ctx context.Context, inv *domain.Investment, opp domain.Opportunity, bonds int64) error {
	if s.minter == nil {
		return nil
	}
	if opp.ContractAddress == nil || *opp.ContractAddress == "" {
		s.logger.InfoContext(ctx, "confirmation: mint skipped, no contract deployed",
			slog.String("opportunity_id", opp.ID),
		)
		return nil
	}

	wallet := inv.WalletAddress
	if wallet == "" {
		w, err := s.profiles.GetWalletAddress(ctx, inv.UserID)
		if err != nil {
			if isNotFound(err) {
				s.logger.InfoContext(ctx, "confirmation: mint skipped, no wallet on file",
					slog.String("investment_id", inv.ID),
					slog.String("user_id", inv.UserID),
				)
				return nil
			}
			return fmt.Errorf("profile wallet for %s: %w", inv.UserID, err)
		}
		wallet = w
	}

	txHash, err := s.minter.Mint(ctx, *opp.ContractAddress, wallet, bonds)
	if err != nil {
		return err
	}

	if err := s.investments.SetMintReference(ctx, inv.ID, txHash, wallet); err != nil {
		return fmt.Errorf("record mint %s: %w", txHash, err)
	}
	inv.MintTxHash = txHash
	inv.WalletAddress = wallet
	return nil
}

// sendEmail delivers the confirmation or cancellation email. It is skipped
// without error when email is not configured.
func (s *ConfirmationService) sendEmail(ctx context.Context, inv domain.Investment, opp domain.Opportunity, tx *domain.Transaction, confirmed bool) error {
	if s.mailer == nil {
		return nil
	}

	user, err := s.users.GetByID(ctx, inv.UserID)
	if err != nil {
		return fmt.Errorf("load user %s: %w", inv.UserID, err)
	}

	details := domain.InvestmentDetails{
		InvestmentID:     inv.ID,
		OpportunityTitle: opp.Title,
		Amount:           inv.Amount.StringFixed(2),
		Bonds:            bondQuantity(inv),
		MintTxHash:       inv.MintTxHash,
	}
	if tx != nil {
		details.Reference = tx.Reference
	}
	if details.OpportunityTitle == "" {
		if o, err := s.opportunities.GetByID(ctx, inv.OpportunityID); err == nil {
			details.OpportunityTitle = o.Title
		}
	}

	if confirmed {
		return s.mailer.SendConfirmation(ctx, user.Email, user.Name, details)
	}
	return s.mailer.SendCancellation(ctx, user.Email, user.Name, details)
}

// publishEvent pushes an investment lifecycle event onto the bus for
// dashboard consumers.
func (s *ConfirmationService) publishEvent(ctx context.Context, event string, inv domain.Investment) error {
	if s.bus == nil {
		return nil
	}
	payload, err := json.Marshal(map[string]any{
		"event":          event,
		"investment_id":  inv.ID,
		"opportunity_id": inv.OpportunityID,
		"user_id":        inv.UserID,
		"amount":         inv.Amount.String(),
		"status":         string(inv.Status),
	})
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, EventChannel, payload)
}

// runBestEffort is the single boundary past which step failures stop
// propagating: the error is logged at warn severity with the step name and
// the call carries on.
func (s *ConfirmationService) runBestEffort(ctx context.Context, step, investmentID string, fn func() error) {
	if err := fn(); err != nil {
		s.logger.WarnContext(ctx, "confirmation: best-effort step failed",
			slog.String("step", step),
			slog.String("investment_id", investmentID),
			slog.String("error", err.Error()),
		)
	}
}

// bondQuantity returns the investment's bond count, deriving it from the
// amount at the legacy 100-per-bond rate when the count was never set.
func bondQuantity(inv domain.Investment) int64 {
	if inv.Bonds > 0 {
		return inv.Bonds
	}
	return inv.Amount.Div(decimal.NewFromInt(100)).IntPart()
}

// shortID returns the first 8 characters of an id for display names.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
