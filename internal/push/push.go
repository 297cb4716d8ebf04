package push

import (
	"context"
	"errors"

	"taskDesk/internal/logger"

	"go.uber.org/zap"
)

var ErrNoToken = errors.New("push: пустой токен устройства")

type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

type Sender interface {
	Send(ctx context.Context, token string, msg Message) error
}

// NoopSender используется, когда push выключен в конфиге
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, token string, msg Message) error {
	logger.Logger.Debug("Push: отправка отключена", zap.String("title", msg.Title))
	return nil
}
