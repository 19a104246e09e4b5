package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// TransactionStore implements domain.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *pgxpool.Pool
}

// NewTransactionStore creates a new TransactionStore backed by the given
// connection pool.
func NewTransactionStore(pool *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

const transactionSelectCols = `id, user_id, date, type, amount, currency,
	status, reference, investment_id, payment_method, created_at, updated_at`

func scanTransactionRow(row pgx.Row) (domain.Transaction, error) {
	var tx domain.Transaction
	var txType, status, paymentMethod string

	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.Date,
		&txType, &tx.Amount, &tx.Currency,
		&status, &tx.Reference, &tx.InvestmentID, &paymentMethod,
		&tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.Type = domain.TransactionType(txType)
	tx.Status = domain.TransactionStatus(status)
	tx.PaymentMethod = domain.PaymentMethod(paymentMethod)
	return tx, nil
}

// Create inserts a new transaction.
func (s *TransactionStore) Create(ctx context.Context, tx domain.Transaction) error {
	const query = `
		INSERT INTO transactions (
			id, user_id, date, type, amount, currency,
			status, reference, investment_id, payment_method,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			NOW(), NOW()
		)`

	_, err := s.pool.Exec(ctx, query,
		tx.ID, tx.UserID, tx.Date,
		string(tx.Type), tx.Amount, tx.Currency,
		string(tx.Status), tx.Reference, tx.InvestmentID, string(tx.PaymentMethod),
	)
	if err != nil {
		return fmt.Errorf("postgres: create transaction %s: %w", tx.ID, err)
	}
	return nil
}

// GetByID retrieves a single transaction by its ID.
func (s *TransactionStore) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+transactionSelectCols+` FROM transactions WHERE id = $1`, id)

	tx, err := scanTransactionRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Transaction{}, domain.ErrNotFound
		}
		return domain.Transaction{}, fmt.Errorf("postgres: get transaction %s: %w", id, err)
	}
	return tx, nil
}

// FindByInvestmentID returns the transaction referencing the given
// investment.
func (s *TransactionStore) FindByInvestmentID(ctx context.Context, investmentID string) (domain.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+transactionSelectCols+` FROM transactions
		 WHERE investment_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`, investmentID)

	tx, err := scanTransactionRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Transaction{}, domain.ErrNotFound
		}
		return domain.Transaction{}, fmt.Errorf("postgres: find transaction for investment %s: %w", investmentID, err)
	}
	return tx, nil
}

// FindLatestByUserAndAmount matches legacy investment transactions that lack
// an investment reference: most recent investment-type row for the user with
// the given amount.
func (s *TransactionStore) FindLatestByUserAndAmount(ctx context.Context, userID string, amount decimal.Decimal) (domain.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+transactionSelectCols+` FROM transactions
		 WHERE user_id = $1 AND type = $2 AND amount = $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		userID, string(domain.TransactionTypeInvestment), amount)

	tx, err := scanTransactionRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Transaction{}, domain.ErrNotFound
		}
		return domain.Transaction{}, fmt.Errorf("postgres: find transaction for user %s: %w", userID, err)
	}
	return tx, nil
}

// UpdateStatus sets the transaction status.
func (s *TransactionStore) UpdateStatus(ctx context.Context, id string, status domain.TransactionStatus) error {
	const query = `
		UPDATE transactions SET
			status     = $2,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("postgres: update transaction status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByUser returns transactions for the given user, newest first.
func (s *TransactionStore) ListByUser(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+transactionSelectCols+` FROM transactions
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, listLimit(opts), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list transactions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		tx, err := scanTransactionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan transactions: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
