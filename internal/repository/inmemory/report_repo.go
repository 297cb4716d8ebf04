package inmemory

import (
	"context"
	"sort"
	"sync"

	"taskDesk/internal/models/report"

	"github.com/google/uuid"
)

type ReportStorage struct {
	reports []*report.DailyReport
	mtx     *sync.RWMutex
}

func NewReportStorage() *ReportStorage {
	return &ReportStorage{
		reports: []*report.DailyReport{},
		mtx:     &sync.RWMutex{},
	}
}

func (s *ReportStorage) Append(ctx context.Context, r *report.DailyReport) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	copied := *r
	copied.TaskDetails = append([]report.TaskDetail(nil), r.TaskDetails...)
	s.reports = append(s.reports, &copied)
	return nil
}

func (s *ReportStorage) List(ctx context.Context) ([]*report.DailyReport, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*report.DailyReport, 0, len(s.reports))
	for _, r := range s.reports {
		copied := *r
		res = append(res, &copied)
	}
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Date.After(res[j].Date)
	})
	return res, nil
}
