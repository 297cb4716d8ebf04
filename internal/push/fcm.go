package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"taskDesk/internal/config"
	"taskDesk/internal/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/fcm/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type FCMSender struct {
	svc    *fcm.Service
	parent string
	cb     *gobreaker.CircuitBreaker[*fcm.Message]
}

// NewFCMSender создаёт отправителя Firebase Cloud Messaging.
// Без credentials_file берутся Application Default Credentials.
func NewFCMSender(ctx context.Context, cfg config.PushConfig) (*FCMSender, error) {
	ts, err := tokenSource(ctx, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	return NewFCMSenderWithOptions(ctx, cfg, opts...)
}

func NewFCMSenderWithOptions(ctx context.Context, cfg config.PushConfig, opts ...option.ClientOption) (*FCMSender, error) {
	svc, err := fcm.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("создание клиента FCM: %w", err)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[*fcm.Message](gobreaker.Settings{
		Name:        "FCMSender",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: isBackendHealthy,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Push: смена состояния circuit breaker",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &FCMSender{
		svc:    svc,
		parent: "projects/" + cfg.ProjectID,
		cb:     cb,
	}, nil
}

func (s *FCMSender) Send(ctx context.Context, token string, msg Message) error {
	if token == "" {
		return ErrNoToken
	}

	req := &fcm.SendMessageRequest{
		Message: &fcm.Message{
			Token: token,
			Notification: &fcm.Notification{
				Title: msg.Title,
				Body:  msg.Body,
			},
			Data: msg.Data,
		},
	}

	sent, err := s.cb.Execute(func() (*fcm.Message, error) {
		return s.svc.Projects.Messages.Send(s.parent, req).Context(ctx).Do()
	})
	if err != nil {
		return fmt.Errorf("отправка push: %w", err)
	}

	logger.Info("Push: сообщение отправлено", zap.String("message", sent.Name))
	return nil
}

// ошибки токена (не зарегистрирован, неверный) не говорят о падении FCM
// и не должны размыкать breaker
func isBackendHealthy(err error) bool {
	if err == nil {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusBadRequest || apiErr.Code == http.StatusNotFound
	}
	return errors.Is(err, context.Canceled)
}

func tokenSource(ctx context.Context, credentialsFile string) (oauth2.TokenSource, error) {
	if credentialsFile == "" {
		ts, err := google.DefaultTokenSource(ctx, fcm.CloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("получение учётных данных по умолчанию: %w", err)
		}
		return ts, nil
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("чтение файла учётных данных %s: %w", credentialsFile, err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, fcm.CloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("разбор учётных данных: %w", err)
	}
	return creds.TokenSource, nil
}
