package app

import (
	"context"
	"fmt"
	"log/slog"

	s3blob "github.com/Skysparko/trust-ledger-backend/internal/blob/s3"
	"github.com/Skysparko/trust-ledger-backend/internal/cache/redis"
	"github.com/Skysparko/trust-ledger-backend/internal/chain"
	"github.com/Skysparko/trust-ledger-backend/internal/config"
	"github.com/Skysparko/trust-ledger-backend/internal/domain"
	"github.com/Skysparko/trust-ledger-backend/internal/notify"
	"github.com/Skysparko/trust-ledger-backend/internal/store/postgres"
)

// Dependencies bundles every domain-level dependency the application needs.
// It is constructed by Wire and torn down by the returned cleanup function.
type Dependencies struct {
	// Stores
	InvestmentStore  domain.InvestmentStore
	TransactionStore domain.TransactionStore
	OpportunityStore domain.OpportunityStore
	AssetStore       domain.AssetStore
	UserStore        domain.UserStore
	ProfileStore     domain.ProfileStore
	DocumentStore    domain.DocumentStore
	StatsStore       domain.StatsStore

	// Coordination
	LockManager domain.LockManager
	RateLimiter domain.RateLimiter
	EventBus    domain.EventBus

	// Optional adapters; nil when the corresponding config section is not
	// enabled.
	Minter     domain.Minter
	Mailer     domain.Mailer
	BlobWriter domain.BlobWriter
	BlobReader domain.BlobReader
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function to call on
// shutdown.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
		MaxConns: cfg.Database.PoolMaxConns,
		MinConns: cfg.Database.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Database.RunMigrations {
		if err := pgClient.RunMigrations(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	deps.InvestmentStore = postgres.NewInvestmentStore(pool)
	deps.TransactionStore = postgres.NewTransactionStore(pool)
	deps.OpportunityStore = postgres.NewOpportunityStore(pool)
	deps.AssetStore = postgres.NewAssetStore(pool)
	deps.UserStore = postgres.NewUserStore(pool)
	deps.ProfileStore = postgres.NewProfileStore(pool)
	deps.DocumentStore = postgres.NewDocumentStore(pool)
	deps.StatsStore = postgres.NewStatsStore(pool)

	// --- Redis ---
	redisClient, err := redis.New(ctx, redis.ClientConfig{
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		PoolSize:   cfg.Redis.PoolSize,
		MaxRetries: cfg.Redis.MaxRetries,
		TLSEnabled: cfg.Redis.TLSEnabled,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: redis: %w", err)
	}
	closers = append(closers, func() { _ = redisClient.Close() })

	deps.LockManager = redis.NewLockManager(redisClient)
	deps.RateLimiter = redis.NewRateLimiter(redisClient)
	deps.EventBus = redis.NewEventBus(redisClient)

	// --- Chain (optional) ---
	if cfg.Chain.Enabled() {
		chainClient, err := chain.NewClient(ctx, chain.ClientConfig{
			RPCURL:           cfg.Chain.RPCURL,
			ChainID:          cfg.Chain.ChainID,
			OperatorKey:      cfg.Chain.OperatorKey,
			EncryptedKeyPath: cfg.Chain.EncryptedKeyPath,
			KeyPassword:      cfg.Chain.KeyPassword,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: chain: %w", err)
		}
		closers = append(closers, chainClient.Close)

		minter, err := chain.NewMinter(chainClient, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: minter: %w", err)
		}
		deps.Minter = minter

		logger.InfoContext(ctx, "wire: minting enabled",
			slog.String("operator", chainClient.Operator().Hex()),
		)
	} else {
		logger.InfoContext(ctx, "wire: minting disabled, no chain configured")
	}

	// --- SMTP (optional) ---
	if cfg.SMTP.Enabled() {
		mailer, err := notify.NewSMTPMailer(notify.MailerConfig{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			User:        cfg.SMTP.User,
			Password:    cfg.SMTP.Password,
			FromName:    cfg.SMTP.FromName,
			FromEmail:   cfg.SMTP.FromEmail,
			FrontendURL: cfg.SMTP.FrontendURL,
		}, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: mailer: %w", err)
		}
		deps.Mailer = mailer
	} else {
		logger.InfoContext(ctx, "wire: email disabled, no smtp configured")
	}

	// --- S3 (optional) ---
	if cfg.S3.Enabled() {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.BlobWriter = s3blob.NewWriter(s3Client)
		deps.BlobReader = s3blob.NewReader(s3Client)
	} else {
		logger.InfoContext(ctx, "wire: document storage disabled, no s3 configured")
	}

	return deps, cleanup, nil
}
