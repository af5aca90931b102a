package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskBoard/internal/auth"
	"taskBoard/internal/config"
	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"
	"taskBoard/internal/repository/inmemory"
	"taskBoard/internal/repository/postgres"
	"taskBoard/internal/service"
	"taskBoard/internal/worker"

	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	server    *http.Server
	sweeper   *worker.Sweeper
	shutdowns []func() // run in reverse order on shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	tasks, users, err := a.initRepositories(ctx)
	if err != nil {
		a.shutdown()
		return err
	}

	verifier, err := auth.NewGoogleVerifier(ctx, a.config.Auth.GoogleClientID)
	if err != nil {
		a.shutdown()
		return err
	}
	tokens := auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL)

	a.sweeper = worker.NewSweeper(&a.config.Worker.SweepInterval)

	revoker, err := a.initRevoker()
	if err != nil {
		a.shutdown()
		return err
	}

	var limiter *middleware.RateLimiter
	if a.config.Server.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(a.config.Server.RateLimit)
		a.sweeper.Add("rate_limit", limiter)
	}

	router := NewRouter(Deps{
		Config:      a.config,
		Tasks:       service.NewTaskService(tasks, users),
		Auth:        service.NewAuthService(users, verifier, tokens, revoker),
		Tokens:      tokens,
		Revoker:     revoker,
		RateLimiter: limiter,
	})

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	logger.Info("App: initialized",
		zap.String("env", a.config.App.Env),
		zap.String("repository", a.config.Repository.Type),
		zap.Bool("redis", a.config.Redis.Enabled))
	return nil
}

func (a *App) initRepositories(ctx context.Context) (service.TaskRepository, service.UserRepository, error) {
	switch a.config.Repository.Type {
	case config.RepoPostgres:
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect storage: %w", err)
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: closing storage")
			storage.Close()
		})
		return storage, storage.Users(), nil
	case config.RepoInMemory:
		logger.Warn("App: using in-memory storage, data is lost on restart")
		return inmemory.NewTaskStorage(), inmemory.NewUserStorage(), nil
	default:
		return nil, nil, fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}
}

func (a *App) initRevoker() (auth.Revoker, error) {
	if a.config.Redis.Enabled {
		client, err := auth.NewRedisClient(a.config.Redis.Addr)
		if err != nil {
			return nil, err
		}
		a.shutdowns = append(a.shutdowns, func() {
			logger.Info("App: closing redis")
			client.Close()
		})
		return auth.NewRedisRevoker(client, a.config.Redis.KeyPrefix), nil
	}

	revoker := auth.NewMemoryRevoker()
	a.sweeper.Add("revocations", revoker)
	return revoker, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.sweeper.Start(workerCtx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case err := <-serverErr:
		runErr = fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logger.Info("App: shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: server shutdown", err)
		if runErr == nil {
			runErr = err
		}
	}

	cancelWorker()
	<-workerDone
	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
