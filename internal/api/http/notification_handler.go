package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	notes, err := h.svc.Notifications.List(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, "ListNotifications", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": notes, "total": len(notes)})
}

func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Notifications.UnreadCount(r.Context(), actor)
	if err != nil {
		writeServiceError(w, r, "UnreadCount", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	if err := h.svc.Notifications.MarkRead(r.Context(), actor, mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, "MarkNotificationRead", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
