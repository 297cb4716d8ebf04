package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/notification"
	repo "taskDesk/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationStorage struct {
	*Storage
	coll *mongo.Collection
}

func (s *NotificationStorage) Create(ctx context.Context, n *notification.Notification) (err error) {
	ctx, end := s.start(ctx, "NotificationRepository.Create")
	defer func() { end(err) }()

	if _, err = s.coll.InsertOne(ctx, fromNotification(n)); err != nil {
		logger.Error("Repository: Не удалось добавить уведомление", err)
		return fmt.Errorf("добавление уведомления: %w", err)
	}
	return nil
}

func (s *NotificationStorage) ExistsSince(ctx context.Context, userID string, taskID uuid.UUID, kind notification.Kind, since time.Time) (_ bool, err error) {
	ctx, end := s.start(ctx, "NotificationRepository.ExistsSince")
	defer func() { end(err) }()

	filter := bson.M{
		"userId":    userID,
		"taskId":    taskID.String(),
		"type":      string(kind),
		"createdAt": bson.M{"$gt": since},
	}

	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		logger.Error("Repository: Не удалось проверить уведомления", err)
		return false, fmt.Errorf("проверка уведомлений: %w", err)
	}
	return n > 0, nil
}

func (s *NotificationStorage) ListByUser(ctx context.Context, userID string) (_ []*notification.Notification, err error) {
	ctx, end := s.start(ctx, "NotificationRepository.ListByUser")
	defer func() { end(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		logger.Error("Repository: Не удалось получить уведомления", err)
		return nil, fmt.Errorf("получение уведомлений: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []notificationDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("чтение уведомлений: %w", err)
	}

	out := make([]*notification.Notification, 0, len(docs))
	for _, doc := range docs {
		n, convErr := doc.toNotification()
		if convErr != nil {
			err = fmt.Errorf("разбор уведомления %s: %w", doc.ID, convErr)
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *NotificationStorage) GetByID(ctx context.Context, id uuid.UUID) (_ *notification.Notification, err error) {
	ctx, end := s.start(ctx, "NotificationRepository.GetByID")
	defer func() { end(err) }()

	var doc notificationDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = repo.ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("получение уведомления: %w", err)
	}
	return doc.toNotification()
}

func (s *NotificationStorage) MarkRead(ctx context.Context, id uuid.UUID) (err error) {
	ctx, end := s.start(ctx, "NotificationRepository.MarkRead")
	defer func() { end(err) }()

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		logger.Error("Repository: Не удалось отметить уведомление", err)
		return fmt.Errorf("отметка уведомления: %w", err)
	}
	if res.MatchedCount == 0 {
		err = repo.ErrNotFound
		return err
	}
	return nil
}
