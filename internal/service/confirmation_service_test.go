package service_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
	"github.com/Skysparko/trust-ledger-backend/internal/service"
)

const (
	testUserID    = "user-1"
	testWallet    = "0x1111111111111111111111111111111111111111"
	testContract  = "0x2222222222222222222222222222222222222222"
	testMintHash  = "0xabc123"
	testOppTitle  = "Solar Farm Bonds"
	testReference = "TXN-2026-000042"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// confirmFixture wires a ConfirmationService onto in-memory fakes, seeded
// with one active opportunity, one investor, one pending investment, and
// its companion ledger transaction.
type confirmFixture struct {
	investments   *fakeInvestmentStore
	transactions  *fakeTransactionStore
	opportunities *fakeOpportunityStore
	assets        *fakeAssetStore
	users         *fakeUserStore
	profiles      *fakeProfileStore
	locks         *fakeLockManager
	bus           *fakeEventBus
	minter        *fakeMinter
	mailer        *fakeMailer
	svc           *service.ConfirmationService

	investmentID  string
	transactionID string
	opportunityID string
}

func newConfirmFixture(t *testing.T) *confirmFixture {
	t.Helper()

	f := &confirmFixture{
		investments:   newFakeInvestmentStore(),
		transactions:  newFakeTransactionStore(),
		opportunities: newFakeOpportunityStore(),
		assets:        &fakeAssetStore{},
		users:         &fakeUserStore{users: map[string]domain.User{}},
		profiles:      &fakeProfileStore{wallets: map[string]string{}},
		locks:         newFakeLockManager(),
		bus:           &fakeEventBus{},
		minter:        &fakeMinter{txHash: testMintHash},
		mailer:        &fakeMailer{},
	}

	f.users.users[testUserID] = domain.User{ID: testUserID, Email: "ada@example.com", Name: "Ada", IsActive: true}
	f.profiles.wallets[testUserID] = testWallet

	contract := testContract
	f.opportunityID = uuid.New().String()
	require.NoError(t, f.opportunities.Create(context.Background(), domain.Opportunity{
		ID:                 f.opportunityID,
		Title:              testOppTitle,
		Status:             domain.OpportunityStatusActive,
		MinInvestment:      decimal.NewFromInt(100),
		TotalFundingTarget: decimal.NewFromInt(100_000),
		CurrentFunding:     decimal.Zero,
		ContractAddress:    &contract,
	}))

	f.investmentID = f.seedPendingInvestment(t, decimal.NewFromInt(500), 5)

	f.svc = service.NewConfirmationService(
		f.investments, f.transactions, f.opportunities, f.assets,
		f.users, f.profiles, f.locks, f.bus, f.minter, f.mailer,
		discardLogger(),
	)
	return f
}

// seedPendingInvestment inserts a pending investment plus its companion
// transaction and returns the investment id.
func (f *confirmFixture) seedPendingInvestment(t *testing.T, amount decimal.Decimal, bonds int64) string {
	t.Helper()

	id := uuid.New().String()
	require.NoError(t, f.investments.Create(context.Background(), domain.Investment{
		ID:            id,
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Date:          time.Now().UTC(),
		Amount:        amount,
		Bonds:         bonds,
		Status:        domain.InvestmentStatusPending,
	}))

	txID := uuid.New().String()
	invID := id
	require.NoError(t, f.transactions.Create(context.Background(), domain.Transaction{
		ID:           txID,
		UserID:       testUserID,
		Date:         time.Now().UTC(),
		Type:         domain.TransactionTypeInvestment,
		Amount:       amount.Neg(),
		Currency:     "USD",
		Status:       domain.TransactionStatusPending,
		Reference:    testReference,
		InvestmentID: &invID,
	}))
	if f.transactionID == "" {
		f.transactionID = txID
	}
	return id
}

func TestConfirmHappyPath(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Confirm(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, inv.Status)

	stored, err := f.investments.GetByID(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, stored.Status)
	assert.Equal(t, testMintHash, stored.MintTxHash)

	tx, err := f.transactions.GetByID(ctx, f.transactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)

	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	assert.True(t, opp.CurrentFunding.Equal(decimal.NewFromInt(500)), "funding %s", opp.CurrentFunding)
	assert.Equal(t, int64(1), opp.InvestorsCount)
	assert.Equal(t, domain.OpportunityStatusActive, opp.Status)

	assets := f.assets.all()
	require.Len(t, assets, 1)
	assert.Equal(t, testUserID, assets[0].UserID)
	assert.Equal(t, domain.AssetTypeBond, assets[0].Type)
	assert.Equal(t, int64(5), assets[0].Quantity)
	assert.True(t, assets[0].Value.Equal(decimal.NewFromInt(500)))
	assert.Contains(t, assets[0].Name, testOppTitle+" - Bond #")

	require.Len(t, f.minter.calls, 1)
	assert.Equal(t, testContract, f.minter.calls[0].contract)
	assert.Equal(t, testWallet, f.minter.calls[0].wallet)
	assert.Equal(t, int64(5), f.minter.calls[0].bonds)

	require.Len(t, f.mailer.confirmations, 1)
	assert.Equal(t, testReference, f.mailer.confirmations[0].Reference)
	assert.Equal(t, testMintHash, f.mailer.confirmations[0].MintTxHash)

	assert.Equal(t, 1, f.bus.count())
}

func TestConfirmByTransactionReference(t *testing.T) {
	f := newConfirmFixture(t)

	inv, err := f.svc.Confirm(context.Background(), f.transactionID)
	require.NoError(t, err)
	assert.Equal(t, f.investmentID, inv.ID)
	assert.Equal(t, domain.InvestmentStatusConfirmed, inv.Status)
}

func TestConfirmUnknownReference(t *testing.T) {
	f := newConfirmFixture(t)

	_, err := f.svc.Confirm(context.Background(), "no-such-id")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmNonPendingFails(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	_, err := f.svc.Confirm(ctx, f.investmentID)
	require.NoError(t, err)

	// A second confirm of the same investment must be rejected without
	// touching the ledger again.
	_, err = f.svc.Confirm(ctx, f.investmentID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	assert.True(t, opp.CurrentFunding.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, int64(1), opp.InvestorsCount)
	assert.Len(t, f.assets.all(), 1)
}

func TestConfirmInactiveOpportunityFails(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	opp.Status = domain.OpportunityStatusPaused
	require.NoError(t, f.opportunities.Create(ctx, opp))

	_, err = f.svc.Confirm(ctx, f.investmentID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := f.investments.GetByID(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusPending, stored.Status)
}

func TestConfirmClosesOnTargetReached(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	opp.TotalFundingTarget = decimal.NewFromInt(1000)
	require.NoError(t, f.opportunities.Create(ctx, opp))

	first := f.seedPendingInvestment(t, decimal.NewFromInt(600), 6)
	second := f.seedPendingInvestment(t, decimal.NewFromInt(500), 5)

	_, err = f.svc.Confirm(ctx, first)
	require.NoError(t, err)

	opp, err = f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	assert.True(t, opp.CurrentFunding.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, domain.OpportunityStatusActive, opp.Status)

	_, err = f.svc.Confirm(ctx, second)
	require.NoError(t, err)

	opp, err = f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	assert.True(t, opp.CurrentFunding.Equal(decimal.NewFromInt(1100)), "funding %s", opp.CurrentFunding)
	assert.Equal(t, domain.OpportunityStatusClosed, opp.Status)
	assert.True(t, opp.TargetReached())
}

func TestConfirmLegacyTransactionFallback(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	// A legacy companion row: same investor, investment type, negated
	// amount, but no investment reference.
	id := uuid.New().String()
	require.NoError(t, f.investments.Create(ctx, domain.Investment{
		ID:            id,
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Amount:        decimal.NewFromInt(300),
		Bonds:         3,
		Status:        domain.InvestmentStatusPending,
	}))
	legacyID := uuid.New().String()
	require.NoError(t, f.transactions.Create(ctx, domain.Transaction{
		ID:     legacyID,
		UserID: testUserID,
		Date:   time.Now().UTC(),
		Type:   domain.TransactionTypeInvestment,
		Amount: decimal.NewFromInt(-300),
		Status: domain.TransactionStatusPending,
	}))

	_, err := f.svc.Confirm(ctx, id)
	require.NoError(t, err)

	tx, err := f.transactions.GetByID(ctx, legacyID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)
}

func TestConfirmWithoutCompanionTransaction(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	id := uuid.New().String()
	require.NoError(t, f.investments.Create(ctx, domain.Investment{
		ID:            id,
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Amount:        decimal.NewFromInt(200),
		Bonds:         2,
		Status:        domain.InvestmentStatusPending,
	}))

	inv, err := f.svc.Confirm(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, inv.Status)
}

func TestConfirmLedgerFailure(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	f.opportunities.applyErr = context.DeadlineExceeded

	_, err := f.svc.Confirm(ctx, f.investmentID)
	require.ErrorIs(t, err, domain.ErrLedgerFailure)

	// The status flip is not rolled back; the investment stays confirmed
	// and the ledger failure is surfaced for reconciliation.
	stored, err := f.investments.GetByID(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, stored.Status)
	assert.Empty(t, f.assets.all())
}

func TestConfirmMintFailureStillConfirms(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	f.minter.err = domain.ErrInsufficientFunds

	inv, err := f.svc.Confirm(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, inv.Status)
	assert.Empty(t, inv.MintTxHash)

	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	assert.True(t, opp.CurrentFunding.Equal(decimal.NewFromInt(500)))
	assert.Len(t, f.assets.all(), 1)
}

func TestConfirmMailFailureStillConfirms(t *testing.T) {
	f := newConfirmFixture(t)

	f.mailer.err = context.DeadlineExceeded

	inv, err := f.svc.Confirm(context.Background(), f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, inv.Status)
}

func TestConfirmSkipsMintWithoutContract(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	opp.ContractAddress = nil
	require.NoError(t, f.opportunities.Create(ctx, opp))

	inv, err := f.svc.Confirm(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, inv.Status)
	assert.Empty(t, f.minter.calls)
}

func TestConfirmSkipsMintWithoutWallet(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	delete(f.profiles.wallets, testUserID)

	inv, err := f.svc.Confirm(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, inv.Status)
	assert.Empty(t, f.minter.calls)
}

func TestConfirmPrefersInvestmentWallet(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	requestWallet := "0x3333333333333333333333333333333333333333"
	inv, err := f.investments.GetByID(ctx, f.investmentID)
	require.NoError(t, err)
	inv.WalletAddress = requestWallet
	require.NoError(t, f.investments.Create(ctx, inv))

	_, err = f.svc.Confirm(ctx, f.investmentID)
	require.NoError(t, err)

	require.Len(t, f.minter.calls, 1)
	assert.Equal(t, requestWallet, f.minter.calls[0].wallet)
}

func TestConfirmLockHeld(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	unlock, err := f.locks.Acquire(ctx, "investment:"+f.investmentID, time.Minute)
	require.NoError(t, err)
	defer unlock()

	_, err = f.svc.Confirm(ctx, f.investmentID)
	require.ErrorIs(t, err, domain.ErrLockHeld)
}

func TestCancelPending(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Cancel(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusCancelled, inv.Status)

	tx, err := f.transactions.GetByID(ctx, f.transactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusFailed, tx.Status)

	// Funding was never counted for a pending investment, so nothing to
	// unwind.
	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	assert.True(t, opp.CurrentFunding.IsZero())
	assert.Equal(t, int64(0), opp.InvestorsCount)
	assert.Empty(t, f.assets.all())

	require.Len(t, f.mailer.cancellations, 1)
}

func TestCancelConfirmedFails(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	_, err := f.svc.Confirm(ctx, f.investmentID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.investmentID)
	require.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err := f.investments.GetByID(ctx, f.investmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentStatusConfirmed, stored.Status)

	tx, err := f.transactions.GetByID(ctx, f.transactionID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusCompleted, tx.Status)
}

// TestConcurrentConfirms confirms N distinct investments of the same amount
// against one opportunity from N goroutines and checks that no funding
// increment is lost.
func TestConcurrentConfirms(t *testing.T) {
	f := newConfirmFixture(t)
	ctx := context.Background()

	const workers = 20
	amount := decimal.NewFromInt(100)

	ids := make([]string, 0, workers)
	for i := 0; i < workers; i++ {
		ids = append(ids, f.seedPendingInvestment(t, amount, 1))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := f.svc.Confirm(ctx, id); err != nil {
				t.Errorf("confirm %s: %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	want := amount.Mul(decimal.NewFromInt(workers))
	assert.True(t, opp.CurrentFunding.Equal(want),
		"funding %s, want %s", opp.CurrentFunding, want)
	assert.Equal(t, int64(workers), opp.InvestorsCount)
}
