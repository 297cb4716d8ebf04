package service

import (
	"context"
	"fmt"

	"taskDesk/internal/models/report"
	"taskDesk/internal/repository"
)

type ReportService struct {
	repo repository.ReportRepository
}

func NewReportService(repo repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) ListReports(ctx context.Context) ([]*report.DailyReport, error) {
	reports, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение отчётов: %w", err)
	}
	return reports, nil
}
