package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/config"
	"taskDesk/internal/logger"
	repo "taskDesk/internal/repository"

	"github.com/eapache/go-resiliency/retrier"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	tasksCollection         = "tasks"
	notificationsCollection = "notifications"
	reportsCollection       = "dailyReports"
	usersCollection         = "users"
)

// Storage - общее подключение к MongoDB для всех коллекций
type Storage struct {
	client  *mongo.Client
	db      *mongo.Database
	tracer  trace.Tracer
	timeout time.Duration
}

func New(ctx context.Context, cfg config.MongoConfig) (*Storage, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("Repository: Ошибка подключения к MongoDB", err)
		return nil, fmt.Errorf("подключение к mongo: %w", err)
	}

	r := retrier.New(retrier.ExponentialBackoff(5, 200*time.Millisecond), nil)
	err = r.Run(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return client.Ping(pingCtx, readpref.Primary())
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к MongoDB", zap.String("database", cfg.Database))
	return &Storage{
		client:  client,
		db:      client.Database(cfg.Database),
		tracer:  otel.Tracer("taskDesk/repository/mongodb"),
		timeout: timeout,
	}, nil
}

// Open подключается, создаёт индексы и собирает repository.Store
func Open(ctx context.Context, cfg config.MongoConfig) (repo.Store, error) {
	s, err := New(ctx, cfg)
	if err != nil {
		return repo.Store{}, err
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		_ = s.Close(ctx)
		return repo.Store{}, err
	}

	return repo.Store{
		Tasks:         s.Tasks(),
		Notifications: s.Notifications(),
		Reports:       s.Reports(),
		Users:         s.Users(),
		Close:         s.Close,
	}, nil
}

func (s *Storage) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("отключение от mongo: %w", err)
	}
	logger.Info("Repository: Закрытие соединения MongoDB")
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

// EnsureIndexes создаёт индексы под запросы сканеров и списков
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		tasksCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "assignedEmployeeId", Value: 1}, {Key: "deadline", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "taskId", Value: 1}, {Key: "type", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		reportsCollection: {
			{Keys: bson.D{{Key: "date", Value: -1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("создание индексов %s: %w", coll, err)
		}
	}
	return nil
}

func (s *Storage) Tasks() *TaskStorage {
	return &TaskStorage{Storage: s, coll: s.db.Collection(tasksCollection)}
}

func (s *Storage) Notifications() *NotificationStorage {
	return &NotificationStorage{Storage: s, coll: s.db.Collection(notificationsCollection)}
}

func (s *Storage) Reports() *ReportStorage {
	return &ReportStorage{Storage: s, coll: s.db.Collection(reportsCollection)}
}

func (s *Storage) Users() *UserStorage {
	return &UserStorage{Storage: s, coll: s.db.Collection(usersCollection)}
}

// start открывает span и ограничивает операцию по времени
func (s *Storage) start(ctx context.Context, name string) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, name)
	ctx, cancel := context.WithTimeout(ctx, s.timeout)

	return ctx, func(err error) {
		cancel()
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
