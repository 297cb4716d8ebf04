package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/task"
	repo "taskDesk/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type TaskStorage struct {
	*Storage
	coll *mongo.Collection
}

func (s *TaskStorage) Create(ctx context.Context, t *task.Task) (err error) {
	ctx, end := s.start(ctx, "TaskRepository.Create")
	defer func() { end(err) }()

	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	t.Version = 1

	if _, err = s.coll.InsertOne(ctx, fromTask(t)); err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err)
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, t *task.Task) (err error) {
	ctx, end := s.start(ctx, "TaskRepository.Update")
	defer func() { end(err) }()

	now := time.Now()
	filter := bson.M{"_id": t.UUID.String(), "version": t.Version}
	update := bson.M{
		"$set": bson.M{
			"clientName":           t.ClientName,
			"title":                t.Title,
			"description":          t.Description,
			"assignedEmployeeId":   t.AssignedEmployeeID,
			"assignedEmployeeName": t.AssignedEmployeeName,
			"deadline":             t.Deadline,
			"priority":             string(t.Priority),
			"status":               string(t.Status),
			"estimatedDuration":    t.EstimatedDuration,
			"netInvoiceAmount":     t.NetInvoiceAmount,
			"progressNotes":        t.ProgressNotes,
			"taskType":             t.TaskType,
			"taskCategory":         t.TaskCategory,
			"updatedAt":            now,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}
	if res.MatchedCount == 0 {
		err = s.missingOrConflict(ctx, t)
		return err
	}

	t.UpdatedAt = &now
	t.Version++
	return nil
}

func (s *TaskStorage) missingOrConflict(ctx context.Context, t *task.Task) error {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": t.UUID.String()}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("проверка существования задачи: %w", err)
	}
	if n == 0 {
		return repo.ErrNotFound
	}

	logger.Warn("Конфликт версий при обновлении задачи",
		zap.String("task_id", t.UUID.String()),
		zap.Int("expected_version", t.Version))
	return repo.ErrVersionConflict
}

func (s *TaskStorage) UpdateCompletion(ctx context.Context, id uuid.UUID, daysTaken int, completedAt time.Time) (_ int, err error) {
	ctx, end := s.start(ctx, "TaskRepository.UpdateCompletion")
	defer func() { end(err) }()

	update := bson.M{
		"$set": bson.M{"daysTaken": daysTaken, "completedAt": completedAt},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"version": 1})

	var updated struct {
		Version int `bson:"version"`
	}
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id.String()}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = repo.ErrNotFound
			return 0, err
		}
		logger.Error("Repository: Не удалось записать завершение задачи", err)
		return 0, fmt.Errorf("запись завершения задачи: %w", err)
	}
	return updated.Version, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) (err error) {
	ctx, end := s.start(ctx, "TaskRepository.Delete")
	defer func() { end(err) }()

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err)
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if res.DeletedCount == 0 {
		err = repo.ErrNotFound
		return err
	}
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (_ *task.Task, err error) {
	ctx, end := s.start(ctx, "TaskRepository.GetByID")
	defer func() { end(err) }()

	var doc taskDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = repo.ErrNotFound
			return nil, err
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return doc.toTask()
}

func (s *TaskStorage) ListAll(ctx context.Context) ([]*task.Task, error) {
	return s.list(ctx, "TaskRepository.ListAll", bson.M{}, bson.D{{Key: "createdAt", Value: -1}})
}

func (s *TaskStorage) ListByAssignee(ctx context.Context, employeeID string) ([]*task.Task, error) {
	return s.list(ctx, "TaskRepository.ListByAssignee",
		bson.M{"assignedEmployeeId": employeeID},
		bson.D{{Key: "deadline", Value: 1}})
}

func (s *TaskStorage) ListNotCompleted(ctx context.Context) ([]*task.Task, error) {
	return s.list(ctx, "TaskRepository.ListNotCompleted",
		bson.M{"status": bson.M{"$ne": string(task.StatusCompleted)}},
		bson.D{{Key: "deadline", Value: 1}})
}

func (s *TaskStorage) list(ctx context.Context, op string, filter bson.M, sort bson.D) (_ []*task.Task, err error) {
	ctx, end := s.start(ctx, op)
	defer func() { end(err) }()

	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.String("operation", op))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("чтение задач: %w", err)
	}

	tasks := make([]*task.Task, 0, len(docs))
	for _, doc := range docs {
		t, convErr := doc.toTask()
		if convErr != nil {
			err = fmt.Errorf("разбор задачи %s: %w", doc.ID, convErr)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
