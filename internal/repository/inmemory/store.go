package inmemory

import (
	"context"

	repo "taskDesk/internal/repository"
)

// NewStore собирает все in-memory хранилища в один repository.Store.
// Users возвращается отдельно: заполнять пользователей можно только здесь.
func NewStore() (repo.Store, *UserStorage) {
	users := NewUserStorage()
	return repo.Store{
		Tasks:         NewTaskStorage(),
		Notifications: NewNotificationStorage(),
		Reports:       NewReportStorage(),
		Users:         users,
		Close:         func(context.Context) error { return nil },
	}, users
}
