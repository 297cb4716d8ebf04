package handlers

import (
	"net/http"

	"taskDesk/internal/handlers/dto"
	"taskDesk/internal/middleware"
)

type NotificationHandler struct {
	NotificationService NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{NotificationService: svc}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFrom(r.Context())

	notes, err := h.NotificationService.ListForUser(r.Context(), id.UserID)
	if err != nil {
		handleServiceError(w, r, err, "list_notifications")
		return
	}
	writeJSON(w, http.StatusOK, dto.FromNotifications(notes))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	noteID, ok := pathID(w, r)
	if !ok {
		return
	}

	id, _ := middleware.IdentityFrom(r.Context())
	if err := h.NotificationService.MarkRead(r.Context(), id.UserID, noteID); err != nil {
		handleServiceError(w, r, err, "mark_read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
