package app

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	pb "github.com/godilite/competency-dashboard/api/v1"
	"github.com/godilite/competency-dashboard/internal/catalog"
	"github.com/godilite/competency-dashboard/internal/config"
	handler "github.com/godilite/competency-dashboard/internal/grpc"
	"github.com/godilite/competency-dashboard/internal/httpapi"
	"github.com/godilite/competency-dashboard/internal/repository"
	"github.com/godilite/competency-dashboard/internal/service"
	"github.com/godilite/competency-dashboard/pkg/cache"
	dbbuilder "github.com/godilite/competency-dashboard/pkg/database"
	grpcsrv "github.com/godilite/competency-dashboard/pkg/grpc/server"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *httpapi.Server
}

// OpenRepository connects to the configured database and makes sure the schema exists.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, *repository.CompetencyScoreRepository, error) {
	dbPool, dialect, err := dbbuilder.New(ctx,
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized",
		zap.String("driver", cfg.DBDriver),
		zap.String("dialect", string(dialect)))

	repo := repository.NewCompetencyScoreRepository(dbPool, dialect)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = dbPool.Close()
		return nil, nil, fmt.Errorf("schema init failed: %w", err)
	}
	return dbPool, repo, nil
}

// NewService builds the dashboard service over repo. A nil cache client keeps the catalog in
// process, refreshed per request.
func NewService(repo *repository.CompetencyScoreRepository, cacheClient *cache.Cache, cfg *config.Config, logger *zap.Logger) *service.DashboardService {
	var store catalog.Store
	if cacheClient != nil {
		store = cacheClient
	}
	cat := catalog.New(repo, store, cfg.CatalogTTL, logger)
	return service.NewDashboardService(repo, cat, logger.Named("dashboard"))
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	dbPool, repo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var cacheClient *cache.Cache
	if cfg.CacheEnabled {
		cacheClient, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
		)
		if err != nil {
			_ = dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Warn("Cache disabled, views are computed per request")
	}

	dashboard := NewService(repo, cacheClient, cfg, logger)

	var cacher handler.Cacher
	if cacheClient != nil {
		cacher = cacheClient
	}
	grpcHandlers := handler.NewGRPCHandlers(dashboard, cacher, logger, cfg.CacheTTL)

	grpcServer, err := grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
		grpcsrv.WithLogging(cfg.GRPCLoggingEnabled),
	)
	if err != nil {
		closeAll(logger, cacheClient, dbPool)
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterDashboardServiceServer(s, grpcHandlers)
	})

	router := httpapi.NewRouter(dashboard, logger, cfg.CORSAllowedOrigins)
	httpServer, err := httpapi.NewServer(cfg.HTTPAddr, router, logger)
	if err != nil {
		_ = grpcServer.Shutdown(ctx)
		closeAll(logger, cacheClient, dbPool)
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}

	return &App{
		logger:     logger,
		dbPool:     dbPool,
		cache:      cacheClient,
		grpcServer: grpcServer,
		httpServer: httpServer,
	}, nil
}

// Run starts the application and blocks until ctx is done or a shutdown signal is received.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("application starting")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.grpcServer.Start()
	a.httpServer.Start()

	<-ctx.Done()

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP shutdown error", zap.Error(err))
	}
	if err := a.grpcServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("gRPC shutdown error", zap.Error(err))
	}
	closeAll(a.logger, a.cache, a.dbPool)

	if shutdownCtx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else {
		a.logger.Info("graceful shutdown completed successfully")
	}

	_ = a.logger.Sync()
	return nil
}

func closeAll(logger *zap.Logger, cacheClient *cache.Cache, dbPool *sql.DB) {
	if cacheClient != nil {
		if err := cacheClient.Close(); err != nil {
			logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := dbPool.Close(); err != nil {
		logger.Error("database shutdown error", zap.Error(err))
	}
}
