package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"taskDesk/internal/handlers/dto"
	"taskDesk/internal/logger"
	"taskDesk/internal/middleware"
	"taskDesk/internal/models/user"
	"taskDesk/internal/service"

	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
	now         func() time.Time
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		now:         time.Now,
	}
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Сервис нездоров", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("error", err.Error()))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "ok"))
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !requireJSON(w, r) {
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	id, _ := middleware.IdentityFrom(r.Context())

	created, err := h.TaskService.CreateTask(r.Context(), id.UserID, request.ToTask())
	if err != nil {
		handleServiceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.UUID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	writeJSON(w, http.StatusCreated, dto.FromTask(created, h.now()))
}

// GetTasks: без права tasks.view_all или с ?mine=true - только свои задачи
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	assignee := ""
	if r.URL.Query().Get("mine") == "true" || !id.Role.Can(user.PermTasksViewAll) {
		assignee = id.UserID
	}

	tasks, err := h.TaskService.ListTasks(r.Context(), assignee)
	if err != nil {
		handleServiceError(w, r, err, "list_tasks")
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTaskList(tasks, h.now()))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.GetTaskByID(r.Context(), taskID)
	if err != nil {
		handleServiceError(w, r, err, "get_task")
		return
	}

	id, _ := middleware.IdentityFrom(r.Context())
	if t.AssignedEmployeeID != id.UserID && !id.Role.Can(user.PermTasksViewAll) {
		handleBusinessError(w, service.NewForbidden("просмотр чужой задачи"))
		return
	}

	writeJSON(w, http.StatusOK, dto.FromTask(t, h.now()))
}

func (h *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	taskID, ok := pathID(w, r)
	if !ok {
		return
	}
	if !requireJSON(w, r) {
		return
	}

	var request dto.UpdateTaskRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	// без tasks.view_all можно менять только статус и заметки своей задачи
	id, _ := middleware.IdentityFrom(r.Context())
	if !id.Role.Can(user.PermTasksViewAll) {
		current, err := h.TaskService.GetTaskByID(r.Context(), taskID)
		if err != nil {
			handleServiceError(w, r, err, "update_task")
			return
		}
		if current.AssignedEmployeeID != id.UserID {
			handleBusinessError(w, service.NewForbidden("изменение чужой задачи"))
			return
		}
		if !request.ProgressOnly() {
			handleBusinessError(w, service.NewForbidden("изменение полей кроме статуса и заметок"))
			return
		}
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), taskID, request.Version, request.Options()...)
	if err != nil {
		handleServiceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", updated.UUID.String()),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	writeJSON(w, http.StatusOK, dto.FromTask(updated, h.now()))
}

func (h *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), taskID); err != nil {
		handleServiceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", taskID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}
