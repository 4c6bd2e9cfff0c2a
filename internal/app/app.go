// Package app wires configuration, storage, services and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/reviewengine/internal/adapter/memory"
	"github.com/heartmarshall/reviewengine/internal/adapter/postgres"
	"github.com/heartmarshall/reviewengine/internal/adapter/postgres/content"
	"github.com/heartmarshall/reviewengine/internal/adapter/postgres/reviewevent"
	"github.com/heartmarshall/reviewengine/internal/adapter/postgres/reviewstate"
	studymoderepo "github.com/heartmarshall/reviewengine/internal/adapter/postgres/studymode"
	"github.com/heartmarshall/reviewengine/internal/adapter/redis"
	redisprogress "github.com/heartmarshall/reviewengine/internal/adapter/redis/progress"
	"github.com/heartmarshall/reviewengine/internal/auth"
	"github.com/heartmarshall/reviewengine/internal/config"
	"github.com/heartmarshall/reviewengine/internal/domain"
	"github.com/heartmarshall/reviewengine/internal/service/preview"
	"github.com/heartmarshall/reviewengine/internal/service/review"
	"github.com/heartmarshall/reviewengine/internal/service/review/srs"
	"github.com/heartmarshall/reviewengine/internal/service/session"
	"github.com/heartmarshall/reviewengine/internal/service/studymode"
	"github.com/heartmarshall/reviewengine/internal/transport/middleware"
	"github.com/heartmarshall/reviewengine/internal/transport/rest"
)

// Run loads configuration, connects to the stores, and serves HTTP until
// ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	checks := []rest.Check{{Name: "database", Ping: pool.Ping}}

	progress, rdb, err := newProgressStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck
		checks = append(checks, rest.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	handler, err := newHandler(cfg, logger, pool, progress, checks)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down http server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("application stopped")
	return nil
}

type progressStore interface {
	Save(ctx context.Context, p *domain.SessionProgress) error
	Load(ctx context.Context, sessionID uuid.UUID) (*domain.SessionProgress, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// newProgressStore returns the Redis store when enabled, else an in-process
// one. The client is nil for the in-process store.
func newProgressStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (progressStore, *goredis.Client, error) {
	if !cfg.Redis.Enabled {
		logger.Info("session progress kept in memory")
		return memory.NewProgressStore(cfg.Session.MaxSessions, cfg.Session.ProgressTTL), nil, nil
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("session progress kept in redis", slog.String("addr", cfg.Redis.Addr))

	return redisprogress.New(rdb, cfg.Redis.KeyPrefix, cfg.Session.ProgressTTL), rdb, nil
}

// newHandler builds the services and the HTTP handler tree.
func newHandler(
	cfg *config.Config,
	logger *slog.Logger,
	pool *pgxpool.Pool,
	progress progressStore,
	checks []rest.Check,
) (http.Handler, error) {
	txm := postgres.NewTxManager(pool)
	states := reviewstate.New(pool)
	events := reviewevent.New(pool)
	contentRepo := content.New(pool)
	checker := content.NewChecker(contentRepo, content.DefaultWait)

	policy, err := srs.NewPolicy(srs.DefaultParameters())
	if err != nil {
		return nil, err
	}
	calc := srs.NewCalculator(policy)

	modes := studymode.NewService(logger, studymoderepo.New(pool), studymode.Config{
		DefaultMode: domain.StudyMode(cfg.SRS.DefaultMode),
		CacheTTL:    cfg.StudyMode.CacheTTL,
		CacheSize:   cfg.StudyMode.CacheSize,
	})

	reviews, err := review.NewService(logger, states, events, checker, modes, txm, calc, review.Config{
		RetirementThreshold: cfg.SRS.RetirementThreshold,
		RecentEventsWindow:  cfg.SRS.RecentEventsWindow,
	})
	if err != nil {
		return nil, err
	}

	previews := preview.NewService(logger, states, modes, calc)

	sessions := session.NewService(logger, contentRepo, progress, session.Config{
		Window: session.WindowConfig{
			BatchSize:        cfg.Session.BatchSize,
			MaxCachedBatches: cfg.Session.MaxCachedBatches,
			PrefetchNext:     cfg.Session.PrefetchNext,
			PrefetchTimeout:  cfg.Session.PrefetchTimeout,
		},
		SessionTTL:  cfg.Session.TTL,
		MaxSessions: cfg.Session.MaxSessions,
	})

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	router := rest.NewRouter(rest.Handlers{
		Health:    rest.NewHealthHandler(BuildVersion(), checks...),
		Review:    rest.NewReviewHandler(reviews, previews, logger),
		StudyMode: rest.NewStudyModeHandler(modes, logger),
		Session:   rest.NewSessionHandler(sessions, logger),
	}, middleware.Chain(
		middleware.Auth(verifier),
		limiter.Limit(),
	))

	return middleware.Chain(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
	)(router), nil
}
