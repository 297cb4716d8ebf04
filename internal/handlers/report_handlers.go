package handlers

import (
	"errors"
	"net/http"
	"time"

	"taskDesk/internal/handlers/dto"
	"taskDesk/internal/logger"
	"taskDesk/internal/middleware"
	"taskDesk/internal/worker"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReportHandler struct {
	ReportService ReportService
	Jobs          JobRunner
}

func NewReportHandler(reports ReportService, jobs JobRunner) *ReportHandler {
	return &ReportHandler{ReportService: reports, Jobs: jobs}
}

func (h *ReportHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.ReportService.ListReports(r.Context())
	if err != nil {
		handleServiceError(w, r, err, "list_reports")
		return
	}
	writeJSON(w, http.StatusOK, dto.FromReports(reports))
}

func (h *ReportHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, toPayload("jobs", h.Jobs.Jobs()))
}

// RunJob синхронно выполняет задачу планировщика по имени
func (h *ReportHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")
	id, _ := middleware.IdentityFrom(r.Context())

	logger.HttpRequestInfo(r, "HTTP: Ручной запуск задачи",
		zap.String("job", name),
		zap.String("user_id", id.UserID))

	res, err := h.Jobs.RunNow(r.Context(), name)
	if err != nil {
		if errors.Is(err, worker.ErrUnknownJob) {
			responseWithJSON(w, http.StatusNotFound,
				toPayload("error", "NOT_FOUND"),
				toPayload("message", "неизвестная задача: "+name))
			return
		}
		handleServiceError(w, r, err, "run_job")
		return
	}

	logger.Info("HTTP_OUT: Задача выполнена",
		zap.String("job", name),
		zap.Duration("ms", time.Since(start)))
	writeJSON(w, http.StatusOK, dto.FromResult(res))
}
