package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskDesk/internal/models/user"
	repo "taskDesk/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserStorage struct {
	*Storage
	coll *mongo.Collection
}

func (s *UserStorage) GetByID(ctx context.Context, id string) (_ *user.User, err error) {
	ctx, end := s.start(ctx, "UserRepository.GetByID")
	defer func() { end(err) }()

	var doc userDoc
	err = s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			err = repo.ErrNotFound
			return nil, err
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return doc.toUser(), nil
}

func (s *UserStorage) ListByRole(ctx context.Context, role user.Role) (_ []*user.User, err error) {
	ctx, end := s.start(ctx, "UserRepository.ListByRole")
	defer func() { end(err) }()

	cursor, err := s.coll.Find(ctx, bson.M{"role": string(role)}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("чтение пользователей: %w", err)
	}

	out := make([]*user.User, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toUser())
	}
	return out, nil
}

// Put создаёт или заменяет пользователя
func (s *UserStorage) Put(ctx context.Context, u *user.User) (err error) {
	ctx, end := s.start(ctx, "UserRepository.Put")
	defer func() { end(err) }()

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, fromUser(u), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("сохранение пользователя: %w", err)
	}
	return nil
}
