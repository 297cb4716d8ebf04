package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskDesk/internal/config"
	"taskDesk/internal/handlers"
	"taskDesk/internal/logger"
	"taskDesk/internal/notifier"
	"taskDesk/internal/push"
	"taskDesk/internal/repository"
	"taskDesk/internal/repository/inmemory"
	"taskDesk/internal/repository/mongodb"
	"taskDesk/internal/repository/postgres"
	"taskDesk/internal/seed"
	"taskDesk/internal/service"
	"taskDesk/internal/worker"

	"go.uber.org/zap"
)

type App struct {
	config    *config.Config
	store     repository.Store
	scheduler *worker.Scheduler
	handler   http.Handler
	server    *http.Server
	shutdowns []func(context.Context) error // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(context.Context) error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func(context.Context) error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	if a.config.Auth.JWTSecret == "" {
		return errors.New("конфиг: auth.jwt_secret обязателен")
	}

	store, err := openStore(ctx, a.config)
	if err != nil {
		return err
	}
	a.store = store
	a.shutdowns = append(a.shutdowns, store.Close)

	if err := a.loadSeed(ctx); err != nil {
		return err
	}

	sender, err := newSender(ctx, a.config.Push)
	if err != nil {
		return err
	}

	loc := a.config.Location()
	n := notifier.New(store.Notifications, store.Users, sender)
	completion := worker.NewCompletionTrigger(store.Tasks, nil)

	a.scheduler = worker.NewScheduler(loc, a.config.Scheduler.JobTimeout)
	jobs := []struct {
		spec string
		job  worker.Job
	}{
		{a.config.Scheduler.DailyReportCron, worker.NewDailyReporter(store.Tasks, store.Reports, store.Users, loc, nil)},
		{a.config.Scheduler.DeadlineCron, worker.NewDeadlineScanner(store.Tasks, n, nil)},
		{a.config.Scheduler.OverdueCron, worker.NewOverdueScanner(store.Tasks, n, nil)},
	}
	for _, j := range jobs {
		if err := a.scheduler.Register(j.spec, j.job); err != nil {
			return err
		}
	}

	taskService := service.NewTaskService(store.Tasks, store.Users, n, completion)
	a.handler = handlers.NewRouter(
		handlers.RouterConfig{
			JWTSecret:      []byte(a.config.Auth.JWTSecret),
			AllowedOrigins: a.config.Auth.AllowedOrigins,
			RateLimitRPM:   a.config.RateLimit.RPM,
		},
		handlers.NewTaskHandler(taskService),
		handlers.NewNotificationHandler(service.NewNotificationService(store.Notifications)),
		handlers.NewReportHandler(service.NewReportService(store.Reports), a.scheduler),
	)

	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.handler,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	logger.Info("App: Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("timezone", loc.String()),
		zap.Strings("jobs", a.scheduler.Jobs()))
	return nil
}

func (a *App) Handler() http.Handler {
	return a.handler
}

func (a *App) Scheduler() *worker.Scheduler {
	return a.scheduler
}

// Run блокируется до отмены ctx или ошибки сервера
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	schedulerDone := make(chan struct{})
	if a.config.Scheduler.Enabled {
		go func() {
			defer close(schedulerDone)
			a.scheduler.Start(ctx)
		}()
	} else {
		close(schedulerDone)
		logger.Info("App: Планировщик отключён конфигом")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("App: HTTP сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err, ok := <-serverErr:
		if ok {
			runErr = fmt.Errorf("http сервер: %w", err)
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки HTTP сервера", err)
	}

	cancel()
	<-schedulerDone

	return errors.Join(runErr, a.Shutdown(shutdownCtx))
}

func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		if err := a.shutdowns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdowns = nil
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.Repository.Type {
	case "mongo":
		return mongodb.Open(ctx, cfg.Mongo)
	case "postgres":
		return postgres.Open(ctx, cfg.Postgres)
	default:
		store, _ := inmemory.NewStore()
		return store, nil
	}
}

func (a *App) loadSeed(ctx context.Context) error {
	if a.config.Repository.SeedFile == "" {
		return nil
	}

	users, ok := a.store.Users.(seed.UserWriter)
	if !ok {
		return fmt.Errorf("хранилище %s не поддерживает загрузку пользователей", a.config.Repository.Type)
	}

	fixtures, err := seed.Load(a.config.Repository.SeedFile)
	if err != nil {
		return err
	}
	return seed.Apply(ctx, fixtures, users, a.store.Tasks, time.Now())
}

func newSender(ctx context.Context, cfg config.PushConfig) (push.Sender, error) {
	if !cfg.Enabled {
		logger.Info("App: Push отключён, уведомления только в хранилище")
		return push.NoopSender{}, nil
	}

	sender, err := push.NewFCMSender(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("инициализация FCM: %w", err)
	}
	return sender, nil
}
