package service_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
	"github.com/Skysparko/trust-ledger-backend/internal/service"
)

var referencePattern = regexp.MustCompile(`^TXN-\d{4}-\d{6}$`)

type investFixture struct {
	investments   *fakeInvestmentStore
	transactions  *fakeTransactionStore
	opportunities *fakeOpportunityStore
	profiles      *fakeProfileStore
	limiter       *fakeRateLimiter
	bus           *fakeEventBus
	svc           *service.InvestmentService

	opportunityID string
}

func newInvestFixture(t *testing.T) *investFixture {
	t.Helper()

	f := &investFixture{
		investments:   newFakeInvestmentStore(),
		transactions:  newFakeTransactionStore(),
		opportunities: newFakeOpportunityStore(),
		profiles:      &fakeProfileStore{wallets: map[string]string{testUserID: testWallet}},
		limiter:       &fakeRateLimiter{allowed: true},
		bus:           &fakeEventBus{},
	}

	f.opportunityID = uuid.New().String()
	require.NoError(t, f.opportunities.Create(context.Background(), domain.Opportunity{
		ID:                 f.opportunityID,
		Title:              testOppTitle,
		Status:             domain.OpportunityStatusActive,
		MinInvestment:      decimal.NewFromInt(200),
		TotalFundingTarget: decimal.NewFromInt(10_000),
		CurrentFunding:     decimal.Zero,
	}))

	f.svc = service.NewInvestmentService(
		f.investments, f.transactions, f.opportunities, f.profiles,
		f.limiter, f.bus, 10, discardLogger(),
	)
	return f
}

func TestCreateInvestment(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	inv, err := f.svc.Create(ctx, service.CreateInvestmentInput{
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Bonds:         5,
		PaymentMethod: domain.PaymentMethodBankTransfer,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.InvestmentStatusPending, inv.Status)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(500)), "amount %s", inv.Amount)
	assert.Equal(t, int64(5), inv.Bonds)
	// Wallet captured from the profile at creation time.
	assert.Equal(t, testWallet, inv.WalletAddress)

	txs, err := f.transactions.ListByUser(ctx, testUserID, domain.ListOpts{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionTypeInvestment, txs[0].Type)
	assert.Equal(t, domain.TransactionStatusPending, txs[0].Status)
	assert.True(t, txs[0].Amount.Equal(decimal.NewFromInt(-500)), "amount %s", txs[0].Amount)
	require.NotNil(t, txs[0].InvestmentID)
	assert.Equal(t, inv.ID, *txs[0].InvestmentID)
	assert.Regexp(t, referencePattern, txs[0].Reference)

	assert.Equal(t, 1, f.bus.count())
}

func TestCreateInvestmentRequestWalletWins(t *testing.T) {
	f := newInvestFixture(t)

	requestWallet := "0x4444444444444444444444444444444444444444"
	inv, err := f.svc.Create(context.Background(), service.CreateInvestmentInput{
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Bonds:         3,
		WalletAddress: requestWallet,
	})
	require.NoError(t, err)
	assert.Equal(t, requestWallet, inv.WalletAddress)
}

func TestCreateInvestmentRateLimited(t *testing.T) {
	f := newInvestFixture(t)
	f.limiter.allowed = false

	_, err := f.svc.Create(context.Background(), service.CreateInvestmentInput{
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Bonds:         5,
	})
	require.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestCreateInvestmentRejectsZeroBonds(t *testing.T) {
	f := newInvestFixture(t)

	_, err := f.svc.Create(context.Background(), service.CreateInvestmentInput{
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Bonds:         0,
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreateInvestmentBelowMinimum(t *testing.T) {
	f := newInvestFixture(t)

	// 1 bond is 100, below the 200 minimum.
	_, err := f.svc.Create(context.Background(), service.CreateInvestmentInput{
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Bonds:         1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreateInvestmentExceedsTarget(t *testing.T) {
	f := newInvestFixture(t)

	// 101 bonds is 10100, past the 10000 target.
	_, err := f.svc.Create(context.Background(), service.CreateInvestmentInput{
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Bonds:         101,
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreateInvestmentInactiveOpportunity(t *testing.T) {
	f := newInvestFixture(t)
	ctx := context.Background()

	opp, err := f.opportunities.GetByID(ctx, f.opportunityID)
	require.NoError(t, err)
	opp.Status = domain.OpportunityStatusClosed
	require.NoError(t, f.opportunities.Create(ctx, opp))

	_, err = f.svc.Create(ctx, service.CreateInvestmentInput{
		UserID:        testUserID,
		OpportunityID: f.opportunityID,
		Bonds:         5,
	})
	require.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCreateInvestmentUnknownOpportunity(t *testing.T) {
	f := newInvestFixture(t)

	_, err := f.svc.Create(context.Background(), service.CreateInvestmentInput{
		UserID:        testUserID,
		OpportunityID: uuid.New().String(),
		Bonds:         5,
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
