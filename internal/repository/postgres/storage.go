package postgres

import (
	"context"
	"fmt"
	"time"

	"taskDesk/internal/config"
	"taskDesk/internal/logger"
	"taskDesk/internal/migrations"
	repo "taskDesk/internal/repository"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slowQuery = 100 * time.Millisecond

// Storage держит пул соединений и реализует TaskRepository.
// Остальные хранилища делят тот же пул.
type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = cfg.MinConnections
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	// база может подниматься дольше приложения
	r := retrier.New(retrier.ExponentialBackoff(5, 200*time.Millisecond), nil)
	err = r.Run(func() error {
		return pool.Ping(ctx)
	})
	if err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

// Open применяет миграции и собирает repository.Store поверх пула
func Open(ctx context.Context, cfg config.PostgresConfig) (repo.Store, error) {
	if err := migrations.Up(cfg.URL); err != nil {
		return repo.Store{}, err
	}

	s, err := New(ctx, cfg)
	if err != nil {
		return repo.Store{}, err
	}

	return repo.Store{
		Tasks:         s,
		Notifications: s.Notifications(),
		Reports:       s.Reports(),
		Users:         s.Users(),
		Close: func(context.Context) error {
			s.Close()
			return nil
		},
	}, nil
}

func (s *Storage) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Notifications() *NotificationStorage {
	return &NotificationStorage{pool: s.pool}
}

func (s *Storage) Reports() *ReportStorage {
	return &ReportStorage{pool: s.pool}
}

func (s *Storage) Users() *UserStorage {
	return &UserStorage{pool: s.pool}
}

func warnIfSlow(start time.Time, op string) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос", zapOp(op), zapMs(start))
	}
}
