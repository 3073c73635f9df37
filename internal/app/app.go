package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"weekTracker/internal/auth"
	"weekTracker/internal/cache"
	"weekTracker/internal/config"
	"weekTracker/internal/handlers"
	"weekTracker/internal/logger"
	"weekTracker/internal/migrations"
	"weekTracker/internal/repository/inmemory"
	"weekTracker/internal/repository/postgres"
	"weekTracker/internal/service"
	"weekTracker/internal/week"
	"weekTracker/internal/worker"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     http.Handler
	repository service.Repository // интерфейс!
	cache      cache.Cache
	handler    *handlers.Handler
	tasks      *service.TaskService
	worker     *worker.RecurringWorker
	shutdowns  []func() error // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func() error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.OutputPaths...); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() error {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("проверка конфигурации: %w", err)
	}

	if err := a.initRepository(ctx); err != nil {
		return err
	}
	if err := a.initCache(ctx); err != nil {
		return err
	}
	if err := a.initServices(); err != nil {
		return err
	}
	a.initHTTP()

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("cache", a.config.Cache.Type),
		zap.String("addr", a.config.GetServerAddr()))
	return nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		db := a.config.Database
		if db.MigrateOnStart {
			if err := a.retry(ctx, "migrations", func() error { return migrations.Up(db.URL) }); err != nil {
				return fmt.Errorf("применение миграций: %w", err)
			}
		}

		var storage *postgres.Storage
		err := a.retry(ctx, "postgres", func() error {
			var err error
			storage, err = postgres.New(ctx, db.URL, postgres.PoolConfig{
				MaxConns:        db.MaxConnections,
				MinConns:        db.MinConnections,
				MaxConnIdleTime: db.IdleTimeout,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("подключение к PostgreSQL: %w", err)
		}
		a.repository = storage
	default:
		a.repository = inmemory.New()
	}

	a.shutdowns = append(a.shutdowns, func() error {
		a.repository.Close()
		return nil
	})
	return nil
}

// retry повторяет подключение с экспоненциальной задержкой в пределах database.connect_timeout
func (a *App) retry(ctx context.Context, what string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = a.config.Database.ConnectTimeout

	return backoff.RetryNotify(op, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		logger.Warn("App: Повторная попытка подключения",
			zap.String("target", what),
			zap.Error(err),
			zap.Duration("next_in", next))
	})
}

func (a *App) initCache(ctx context.Context) error {
	switch a.config.Cache.Type {
	case config.CacheRedis:
		rc := a.config.Cache.Redis
		redis, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:      rc.Addr,
			Password:  rc.Password,
			DB:        rc.DB,
			PoolSize:  rc.PoolSize,
			KeyPrefix: rc.KeyPrefix,
		})
		if err != nil {
			return fmt.Errorf("подключение к Redis: %w", err)
		}
		a.cache = redis
	default:
		a.cache = cache.NewMemory()
	}

	a.shutdowns = append(a.shutdowns, a.cache.Close)
	return nil
}

func (a *App) initServices() error {
	tokens, err := auth.NewManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL, a.config.Auth.Issuer)
	if err != nil {
		return fmt.Errorf("менеджер токенов: %w", err)
	}

	clock := week.SystemClock{}
	dash := service.NewDashboardCache(a.cache, a.config.Cache.DashboardTTL)
	repo := a.repository

	a.tasks = service.NewTaskService(repo, repo, clock, dash)
	a.handler = &handlers.Handler{
		Tasks:    a.tasks,
		Logs:     service.NewLogService(repo, repo, clock, dash),
		Stats:    service.NewStatsService(repo, repo, repo, clock, dash),
		Groups:   service.NewGroupService(repo, repo, repo, clock, a.config.Scoring),
		Profiles: service.NewProfileService(repo, clock),
		Auth:     service.NewAuthService(repo, repo, tokens, a.cache, clock),
		Health: service.NewHealthService(map[string]service.HealthChecker{
			"repository": service.HealthCheckFunc(repo.HealthCheck),
			"cache":      service.HealthCheckFunc(a.cache.Ping),
		}),
	}

	if a.config.Worker.Enabled {
		a.worker = worker.NewRecurringWorker(a.tasks,
			worker.WithSchedule(a.config.Worker.RolloverSchedule),
			worker.WithBatchSize(a.config.Worker.RolloverBatch),
			worker.WithRunOnStart(a.config.Worker.RunOnStart))
	}
	return nil
}

func (a *App) initHTTP() {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a.router = handlers.NewRouter(a.handler, handlers.RouterOptions{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		RateLimitRPM:   a.config.Server.RateLimitRPM,
		RequestTimeout: a.config.Server.RequestTimeout,
		Registry:       registry,
	})

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
}

// Run обслуживает запросы и фоновые задачи до отмены ctx, затем корректно останавливается
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("App: HTTP сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP сервер: %w", err)
		}
		return nil
	})

	if a.worker != nil {
		g.Go(func() error {
			return a.worker.Start(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("App: Остановка HTTP сервера...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("остановка HTTP сервера: %w", err)
		}
		return nil
	})

	runErr := g.Wait()
	return multierr.Append(runErr, a.Shutdown())
}

// Shutdown освобождает ресурсы в порядке, обратном инициализации
func (a *App) Shutdown() error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}

func (a *App) Handler() http.Handler {
	return a.router
}
