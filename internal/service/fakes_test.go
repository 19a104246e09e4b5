package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// In-memory store fakes. All of them are safe for concurrent use so the
// concurrency tests can hammer them under -race.
// ---------------------------------------------------------------------------

type fakeInvestmentStore struct {
	mu          sync.Mutex
	investments map[string]domain.Investment
}

func newFakeInvestmentStore() *fakeInvestmentStore {
	return &fakeInvestmentStore{investments: make(map[string]domain.Investment)}
}

func (s *fakeInvestmentStore) Create(_ context.Context, inv domain.Investment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.investments[inv.ID] = inv
	return nil
}

func (s *fakeInvestmentStore) GetByID(_ context.Context, id string) (domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investments[id]
	if !ok {
		return domain.Investment{}, domain.ErrNotFound
	}
	return inv, nil
}

func (s *fakeInvestmentStore) UpdateStatus(_ context.Context, id string, status domain.InvestmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investments[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = status
	s.investments[id] = inv
	return nil
}

func (s *fakeInvestmentStore) SetMintReference(_ context.Context, id, txHash, wallet string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investments[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.MintTxHash = txHash
	inv.WalletAddress = wallet
	s.investments[id] = inv
	return nil
}

func (s *fakeInvestmentStore) ListByUser(_ context.Context, userID string, _ domain.ListOpts) ([]domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Investment
	for _, inv := range s.investments {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvestmentStore) ListByOpportunity(_ context.Context, opportunityID string, _ domain.ListOpts) ([]domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Investment
	for _, inv := range s.investments {
		if inv.OpportunityID == opportunityID {
			out = append(out, inv)
		}
	}
	return out, nil
}

type fakeTransactionStore struct {
	mu           sync.Mutex
	transactions map[string]domain.Transaction
}

func newFakeTransactionStore() *fakeTransactionStore {
	return &fakeTransactionStore{transactions: make(map[string]domain.Transaction)}
}

func (s *fakeTransactionStore) Create(_ context.Context, tx domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = tx
	return nil
}

func (s *fakeTransactionStore) GetByID(_ context.Context, id string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return tx, nil
}

func (s *fakeTransactionStore) FindByInvestmentID(_ context.Context, investmentID string) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.transactions {
		if tx.InvestmentID != nil && *tx.InvestmentID == investmentID {
			return tx, nil
		}
	}
	return domain.Transaction{}, domain.ErrNotFound
}

func (s *fakeTransactionStore) FindLatestByUserAndAmount(_ context.Context, userID string, amount decimal.Decimal) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		best  domain.Transaction
		found bool
	)
	for _, tx := range s.transactions {
		if tx.UserID != userID || tx.Type != domain.TransactionTypeInvestment || !tx.Amount.Equal(amount) {
			continue
		}
		if !found || tx.Date.After(best.Date) {
			best = tx
			found = true
		}
	}
	if !found {
		return domain.Transaction{}, domain.ErrNotFound
	}
	return best, nil
}

func (s *fakeTransactionStore) UpdateStatus(_ context.Context, id string, status domain.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return domain.ErrNotFound
	}
	tx.Status = status
	s.transactions[id] = tx
	return nil
}

func (s *fakeTransactionStore) ListByUser(_ context.Context, userID string, _ domain.ListOpts) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// fakeOpportunityStore mirrors the guarded single-statement funding update:
// increment, investor bump, and conditional close happen under one lock so
// concurrent confirmations cannot lose an increment.
type fakeOpportunityStore struct {
	mu            sync.Mutex
	opportunities map[string]domain.Opportunity
	applyErr      error
}

func newFakeOpportunityStore() *fakeOpportunityStore {
	return &fakeOpportunityStore{opportunities: make(map[string]domain.Opportunity)}
}

func (s *fakeOpportunityStore) Create(_ context.Context, opp domain.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opportunities[opp.ID] = opp
	return nil
}

func (s *fakeOpportunityStore) GetByID(_ context.Context, id string) (domain.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opp, ok := s.opportunities[id]
	if !ok {
		return domain.Opportunity{}, domain.ErrNotFound
	}
	return opp, nil
}

func (s *fakeOpportunityStore) ApplyFunding(_ context.Context, id string, amount decimal.Decimal) (domain.FundingUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return domain.FundingUpdate{}, s.applyErr
	}
	opp, ok := s.opportunities[id]
	if !ok {
		return domain.FundingUpdate{}, domain.ErrNotFound
	}
	if opp.Status != domain.OpportunityStatusActive {
		return domain.FundingUpdate{}, domain.ErrInvalidState
	}
	opp.CurrentFunding = opp.CurrentFunding.Add(amount)
	opp.InvestorsCount++
	if opp.CurrentFunding.GreaterThanOrEqual(opp.TotalFundingTarget) {
		opp.Status = domain.OpportunityStatusClosed
	}
	s.opportunities[id] = opp
	return domain.FundingUpdate{
		CurrentFunding: opp.CurrentFunding,
		InvestorsCount: opp.InvestorsCount,
		Status:         opp.Status,
	}, nil
}

func (s *fakeOpportunityStore) SetContract(_ context.Context, id, contractAddress, deployTx string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	opp, ok := s.opportunities[id]
	if !ok {
		return domain.ErrNotFound
	}
	opp.ContractAddress = &contractAddress
	opp.ContractDeployTx = &deployTx
	s.opportunities[id] = opp
	return nil
}

func (s *fakeOpportunityStore) ListByStatus(_ context.Context, status domain.OpportunityStatus, _ domain.ListOpts) ([]domain.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Opportunity
	for _, opp := range s.opportunities {
		if opp.Status == status {
			out = append(out, opp)
		}
	}
	return out, nil
}

type fakeAssetStore struct {
	mu     sync.Mutex
	assets []domain.Asset
}

func (s *fakeAssetStore) Create(_ context.Context, asset domain.Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = append(s.assets, asset)
	return nil
}

func (s *fakeAssetStore) ListByUser(_ context.Context, userID string, _ domain.ListOpts) ([]domain.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Asset
	for _, a := range s.assets {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAssetStore) all() []domain.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Asset(nil), s.assets...)
}

type fakeUserStore struct {
	users map[string]domain.User
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

type fakeProfileStore struct {
	wallets map[string]string
}

func (s *fakeProfileStore) GetWalletAddress(_ context.Context, userID string) (string, error) {
	w, ok := s.wallets[userID]
	if !ok || w == "" {
		return "", domain.ErrNotFound
	}
	return w, nil
}

// ---------------------------------------------------------------------------
// Cache and adapter fakes.
// ---------------------------------------------------------------------------

// fakeLockManager hands out per-key locks with the same semantics as the
// Redis implementation: a second acquirer gets ErrLockHeld instead of
// blocking.
type fakeLockManager struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLockManager() *fakeLockManager {
	return &fakeLockManager{held: make(map[string]bool)}
}

func (m *fakeLockManager) Acquire(_ context.Context, key string, _ time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] {
		return nil, domain.ErrLockHeld
	}
	m.held[key] = true
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.held, key)
	}, nil
}

type fakeRateLimiter struct {
	allowed bool
	err     error
}

func (l *fakeRateLimiter) Allow(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	return l.allowed, l.err
}

type fakeEventBus struct {
	mu        sync.Mutex
	published [][]byte
	err       error
}

func (b *fakeEventBus) Publish(_ context.Context, _ string, payload []byte) error {
	if b.err != nil {
		return b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, payload)
	return nil
}

func (b *fakeEventBus) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, fmt.Errorf("not implemented")
}

func (b *fakeEventBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

type mintCall struct {
	contract string
	wallet   string
	bonds    int64
}

type fakeMinter struct {
	mu     sync.Mutex
	txHash string
	err    error
	calls  []mintCall
}

func (m *fakeMinter) Mint(_ context.Context, contractAddress, toWallet string, bondCount int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, mintCall{contract: contractAddress, wallet: toWallet, bonds: bondCount})
	if m.err != nil {
		return "", m.err
	}
	return m.txHash, nil
}

type fakeMailer struct {
	mu            sync.Mutex
	confirmations []domain.InvestmentDetails
	cancellations []domain.InvestmentDetails
	err           error
}

func (m *fakeMailer) SendConfirmation(_ context.Context, _, _ string, details domain.InvestmentDetails) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, details)
	return nil
}

func (m *fakeMailer) SendCancellation(_ context.Context, _, _ string, details domain.InvestmentDetails) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancellations = append(m.cancellations, details)
	return nil
}
