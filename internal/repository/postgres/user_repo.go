package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/models/user"
	repo "taskDesk/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserStorage struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, display_name, role, fcm_token, created_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Role, &u.FCMToken, &u.CreatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserStorage) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *UserStorage) ListByRole(ctx context.Context, role user.Role) ([]*user.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE role = $1 ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	res := []*user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("сканирование пользователя: %w", err)
		}
		res = append(res, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}
	return res, nil
}

// Put добавляет или обновляет пользователя (сиды и тесты)
func (s *UserStorage) Put(ctx context.Context, u *user.User) error {
	query := `INSERT INTO users (` + userColumns + `)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE
				SET email = EXCLUDED.email,
					display_name = EXCLUDED.display_name,
					role = EXCLUDED.role,
					fcm_token = EXCLUDED.fcm_token`

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if _, err := s.pool.Exec(ctx, query, u.ID, u.Email, u.DisplayName, u.Role, u.FCMToken, createdAt); err != nil {
		return fmt.Errorf("сохранение пользователя: %w", err)
	}
	return nil
}
