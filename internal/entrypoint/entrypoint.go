package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/logging"
	"github.com/mrlokans/bookshelf/internal/metadata"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the wired service. Router is ready to serve once Build returns.
type App struct {
	Router    *gin.Engine
	DB        *database.Database
	Tasks     *tasks.Client
	Scheduler *scheduler.EnrichSyncScheduler

	logger     *zap.Logger
	cancelBg   context.CancelFunc
	background context.Context
}

// Build opens the database and wires repositories, services, the task
// queue and the router. Background workers are not started until Start.
func Build(cfg *config.Config, version string, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := database.NewDatabase(cfg.Database.Path, database.Options{
		LogLevel: cfg.Database.LogLevel,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bookRepo := books.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)

	authService := auth.NewService(userRepo, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService, logger)

	app := &App{DB: db, logger: logger}
	app.background, app.cancelBg = context.WithCancel(context.Background())

	var enrichQueue http_controllers.EnrichQueue
	if cfg.Tasks.Enabled {
		enricher := metadata.NewEnricher(metadata.NewOpenLibraryClient(cfg.Metadata.BaseURL), bookRepo)

		app.Tasks, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks), logger)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.Tasks.Register(
			tasks.NewEnrichBookQueue(enricher, logger),
			tasks.NewEnrichMissingQueue(enricher, logger),
		)
		enrichQueue = app.Tasks

		if cfg.Metadata.Enabled {
			app.Scheduler = scheduler.NewEnrichSyncScheduler(app.Tasks, cfg.Metadata.Schedule, logger)
		}
	} else if cfg.Metadata.Enabled {
		logger.Warn("metadata enrichment requires the task queue; scheduled sweeps disabled")
	}

	if count, err := userRepo.CountUsers(context.Background()); err == nil && count == 0 {
		logger.Warn("no users found; create an administrator with the create-user command")
	}

	app.Router = http_controllers.NewRouter(http_controllers.RouterConfig{
		Books:              bookRepo,
		Ratings:            catalog.NewRatingService(db.DB, bookRepo),
		Notes:              catalog.NewNotesService(db.DB, bookRepo),
		ReadingList:        catalog.NewReadingListService(db.DB, bookRepo),
		Accounts:           catalog.NewAccountService(db.DB),
		AuthService:        authService,
		AuthMiddleware:     authMiddleware,
		LoginThrottle:      auth.NewLoginThrottle(auth.DefaultThrottleConfig()),
		Database:           db,
		Version:            version,
		EnrichQueue:        enrichQueue,
		MaxConflictRetries: cfg.Rating.MaxConflictRetries,
		Logger:             logger,
	})

	return app, nil
}

// Start launches the task workers and the enrichment schedule.
func (a *App) Start() error {
	if a.Tasks != nil {
		a.Tasks.Start(a.background)
	}
	if a.Scheduler != nil {
		if err := a.Scheduler.Start(a.background); err != nil {
			return fmt.Errorf("failed to start enrichment scheduler: %w", err)
		}
		if next := a.Scheduler.GetNextRunTime(); next != nil {
			a.logger.Info("enrichment sweep scheduled", zap.Time("next_run", *next))
		}
	}
	return nil
}

// Shutdown stops background work and closes the databases.
func (a *App) Shutdown(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Tasks != nil {
		if !a.Tasks.Stop(ctx) {
			a.logger.Warn("task workers did not stop before the shutdown deadline")
		}
	}
	a.cancelBg()

	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			a.logger.Error("error closing task client", zap.Error(err))
		}
	}
	if err := a.DB.Close(); err != nil {
		a.logger.Error("error closing database", zap.Error(err))
	}
}

func Serve(router *gin.Engine, cfg *config.Config, logger *zap.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server", zap.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before tearing down what handlers depend on.
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	logger.Info("server exiting")
}

func Run(cfg *config.Config, version string) {
	logger, err := logging.New(cfg.Log, cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting bookshelf", zap.String("version", version), zap.String("env", cfg.Global.Environment))

	app, err := Build(cfg, version, logger)
	if err != nil {
		logger.Fatal("startup failed", zap.Error(err))
	}
	if err := app.Start(); err != nil {
		app.Shutdown(context.Background())
		logger.Fatal("startup failed", zap.Error(err))
	}

	Serve(app.Router, cfg, logger, app.Shutdown)
}
