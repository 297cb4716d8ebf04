package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/notification"
	repo "taskDesk/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationStorage struct {
	pool *pgxpool.Pool
}

const notificationColumns = `uuid, user_id, title, message, kind, task_id, read, created_at`

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	n := &notification.Notification{}
	err := row.Scan(&n.UUID, &n.UserID, &n.Title, &n.Message, &n.Kind, &n.TaskID, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationStorage) Create(ctx context.Context, n *notification.Notification) error {
	start := time.Now()

	query := `INSERT INTO notifications (` + notificationColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query, n.UUID, n.UserID, n.Title, n.Message, n.Kind, n.TaskID, n.Read, n.CreatedAt)
	if err != nil {
		logger.Error("Repository: Не удалось добавить уведомление", err, zapMs(start))
		return fmt.Errorf("добавление уведомления: %w", err)
	}

	warnIfSlow(start, "create_notification")
	return nil
}

func (s *NotificationStorage) ExistsSince(ctx context.Context, userID string, taskID uuid.UUID, kind notification.Kind, since time.Time) (bool, error) {
	start := time.Now()

	query := `SELECT EXISTS(
				SELECT 1 FROM notifications
				WHERE user_id = $1 AND task_id = $2 AND kind = $3 AND created_at > $4)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, userID, taskID, kind, since).Scan(&exists); err != nil {
		logger.Error("Repository: Не удалось проверить уведомления", err, zapMs(start))
		return false, fmt.Errorf("проверка уведомлений: %w", err)
	}

	warnIfSlow(start, "exists_since")
	return exists, nil
}

func (s *NotificationStorage) ListByUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	start := time.Now()

	query := `SELECT ` + notificationColumns + `
				FROM notifications
				WHERE user_id = $1
				ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		logger.Error("Repository: Не удалось получить уведомления", err, zapMs(start))
		return nil, fmt.Errorf("получение уведомлений: %w", err)
	}
	defer rows.Close()

	res := []*notification.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("сканирование уведомления: %w", err)
		}
		res = append(res, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, "list_notifications")
	return res, nil
}

func (s *NotificationStorage) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE uuid = $1`

	n, err := scanNotification(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("получение уведомления: %w", err)
	}
	return n, nil
}

func (s *NotificationStorage) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE uuid = $1`, id)
	if err != nil {
		return fmt.Errorf("отметка уведомления: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}
