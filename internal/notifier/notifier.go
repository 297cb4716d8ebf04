package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/notification"
	"taskDesk/internal/push"
	"taskDesk/internal/repository"

	"go.uber.org/zap"
)

// Notifier создаёт запись уведомления и затем пытается доставить push.
// Запись обязательна, push - нет.
type Notifier struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	sender        push.Sender
}

func New(notifications repository.NotificationRepository, users repository.UserRepository, sender push.Sender) *Notifier {
	if sender == nil {
		sender = push.NoopSender{}
	}
	return &Notifier{
		notifications: notifications,
		users:         users,
		sender:        sender,
	}
}

// Notify сохраняет уведомление и отправляет push владельцу
func (n *Notifier) Notify(ctx context.Context, note *notification.Notification) error {
	if err := n.notifications.Create(ctx, note); err != nil {
		return fmt.Errorf("создание уведомления: %w", err)
	}

	n.deliver(ctx, note)
	return nil
}

// ErrLookup - ошибка чтения при проверке дублей; по ней прогон задачи прерывается
var ErrLookup = errors.New("notifier: проверка существующих уведомлений")

// NotifyOnce создаёт уведомление, только если такого же вида по той же паре
// (пользователь, задача) не было за последний час. Проверка не атомарна:
// два параллельных прогона могут создать два уведомления.
func (n *Notifier) NotifyOnce(ctx context.Context, now time.Time, note *notification.Notification) (bool, error) {
	if note.TaskID == nil {
		return false, fmt.Errorf("уведомление %s без задачи", note.Kind)
	}

	exists, err := n.notifications.ExistsSince(ctx, note.UserID, *note.TaskID, note.Kind, now.Add(-notification.DedupWindow))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	if exists {
		return false, nil
	}

	if err := n.Notify(ctx, note); err != nil {
		return false, err
	}
	return true, nil
}

func (n *Notifier) deliver(ctx context.Context, note *notification.Notification) {
	u, err := n.users.GetByID(ctx, note.UserID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warn("Notifier: не удалось получить пользователя для push",
				zap.String("user_id", note.UserID),
				zap.Error(err))
		}
		return
	}
	if u.FCMToken == "" {
		return
	}

	msg := push.Message{
		Title: note.Title,
		Body:  note.Message,
		Data: map[string]string{
			"notification_id": note.UUID.String(),
			"type":            string(note.Kind),
		},
	}
	if note.TaskID != nil {
		msg.Data["task_id"] = note.TaskID.String()
	}

	if err := n.sender.Send(ctx, u.FCMToken, msg); err != nil {
		logger.Warn("Notifier: push не доставлен",
			zap.String("user_id", note.UserID),
			zap.String("kind", string(note.Kind)),
			zap.Error(err))
	}
}
