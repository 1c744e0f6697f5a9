package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ice-A-Slice/league-coupon-sub003/internal/config"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/infrastructure/email"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/infrastructure/repository/postgres"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/interfaces/httpapi"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/cache"
	idgen "github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/id"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/logging"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/platform/resilience"
	"github.com/Ice-A-Slice/league-coupon-sub003/internal/usecase"
)

// OpenDatabase connects to postgres with otel instrumentation on every
// query. The caller owns closing the pool.
func OpenDatabase(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// NewHTTPServer wires repositories, services, and the router into a
// ready-to-run server.
func NewHTTPServer(cfg config.Config, db *sqlx.DB, logger *logging.Logger) (*http.Server, error) {
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	fixtureRepo := postgres.NewFixtureRepository(db)
	roundRepo := postgres.NewRoundRepository(db)
	betRepo := postgres.NewBetRepository(db)
	seasonRepo := postgres.NewSeasonRepository(db)
	standingsRepo := postgres.NewStandingsRepository(db)
	winnerRepo := postgres.NewWinnerRepository(db)
	cupRepo := postgres.NewCupRepository(db)
	cupAuditRepo := postgres.NewCupAuditRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	var cacheStore *cache.Store
	if cfg.CacheEnabled {
		cacheStore = cache.NewStore(cfg.CacheTTL)
	}

	standingsSvc := usecase.NewStandingsService(standingsRepo, profileRepo, logger)
	scoringSvc := usecase.NewScoringService(roundRepo, fixtureRepo, betRepo, seasonRepo, logger)
	roundCompletionSvc := usecase.NewRoundCompletionService(roundRepo, logger)
	seasonCompletionSvc := usecase.NewSeasonCompletionService(seasonRepo, logger)
	winnerSvc := usecase.NewWinnerService(seasonRepo, winnerRepo, standingsSvc, logger)
	cupWinnerSvc := usecase.NewCupWinnerService(seasonRepo, cupRepo, winnerRepo, logger)
	cupActivationSvc := usecase.NewCupActivationService(
		seasonRepo,
		fixtureRepo,
		cupAuditRepo,
		cacheStore,
		idgen.NewRandomGenerator(),
		logger,
	)

	var mailer usecase.SummaryMailer = usecase.NopSummaryMailer{}
	if cfg.EmailEnabled {
		mailer = email.NewClient(email.ClientConfig{
			BaseURL:     cfg.EmailBaseURL,
			APIKey:      cfg.EmailAPIKey,
			FromAddress: cfg.EmailFromAddress,
			Timeout:     cfg.EmailTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.EmailCircuitEnabled,
				FailureThreshold: cfg.EmailCircuitFailureCount,
				OpenTimeout:      cfg.EmailCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.EmailCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	pipelineSvc := usecase.NewCronPipelineService(
		roundCompletionSvc,
		scoringSvc,
		seasonCompletionSvc,
		winnerSvc,
		cupWinnerSvc,
		mailer,
		cacheStore,
		logger,
	)

	handler := &httpapi.Handler{
		Standings:            standingsSvc,
		Winners:              winnerSvc,
		CupWinners:           cupWinnerSvc,
		CupActivation:        cupActivationSvc,
		Pipeline:             pipelineSvc,
		CupActivationPercent: cfg.CupActivationPercent,
		CacheStore:           cacheStore,
		Logger:               logger,
	}

	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		CronSecret:         cfg.CronSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
