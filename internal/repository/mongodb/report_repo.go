package mongodb

import (
	"context"
	"fmt"

	"taskDesk/internal/logger"
	"taskDesk/internal/models/report"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportStorage struct {
	*Storage
	coll *mongo.Collection
}

func (s *ReportStorage) Append(ctx context.Context, r *report.DailyReport) (err error) {
	ctx, end := s.start(ctx, "ReportRepository.Append")
	defer func() { end(err) }()

	if _, err = s.coll.InsertOne(ctx, fromReport(r)); err != nil {
		logger.Error("Repository: Не удалось сохранить отчёт", err)
		return fmt.Errorf("сохранение отчёта: %w", err)
	}
	return nil
}

func (s *ReportStorage) List(ctx context.Context) (_ []*report.DailyReport, err error) {
	ctx, end := s.start(ctx, "ReportRepository.List")
	defer func() { end(err) }()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "generatedAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		logger.Error("Repository: Не удалось получить отчёты", err)
		return nil, fmt.Errorf("получение отчётов: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDoc
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("чтение отчётов: %w", err)
	}

	out := make([]*report.DailyReport, 0, len(docs))
	for _, doc := range docs {
		r, convErr := doc.toReport()
		if convErr != nil {
			err = fmt.Errorf("разбор отчёта %s: %w", doc.ID, convErr)
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
