package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skysparko/trust-ledger-backend/internal/domain"
)

// AssetStore implements domain.AssetStore using PostgreSQL.
type AssetStore struct {
	pool *pgxpool.Pool
}

// NewAssetStore creates a new AssetStore backed by the given connection pool.
func NewAssetStore(pool *pgxpool.Pool) *AssetStore {
	return &AssetStore{pool: pool}
}

// Create inserts a new asset record.
func (s *AssetStore) Create(ctx context.Context, asset domain.Asset) error {
	const query = `
		INSERT INTO assets (
			id, user_id, opportunity_id, name, type,
			quantity, value, date_acquired, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`

	_, err := s.pool.Exec(ctx, query,
		asset.ID, asset.UserID, asset.OpportunityID, asset.Name, string(asset.Type),
		asset.Quantity, asset.Value, asset.DateAcquired,
	)
	if err != nil {
		return fmt.Errorf("postgres: create asset %s: %w", asset.ID, err)
	}
	return nil
}

// ListByUser returns the user's assets, newest first.
func (s *AssetStore) ListByUser(ctx context.Context, userID string, opts domain.ListOpts) ([]domain.Asset, error) {
	const query = `
		SELECT id, user_id, opportunity_id, name, type,
		       quantity, value, date_acquired, created_at
		FROM assets
		WHERE user_id = $1
		ORDER BY date_acquired DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, userID, listLimit(opts), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list assets for %s: %w", userID, err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		var typ string
		err := rows.Scan(
			&a.ID, &a.UserID, &a.OpportunityID, &a.Name, &typ,
			&a.Quantity, &a.Value, &a.DateAcquired, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan assets: %w", err)
		}
		a.Type = domain.AssetType(typ)
		assets = append(assets, a)
	}
	return assets, rows.Err()
}
