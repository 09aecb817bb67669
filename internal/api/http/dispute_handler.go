package http

import (
	"net/http"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"

	"github.com/gorilla/mux"
)

type openDisputeRequest struct {
	OrderID     string `json:"order_id" validate:"required"`
	CustomerID  string `json:"customer_id"`
	Reason      string `json:"reason" validate:"required"`
	Description string `json:"description" validate:"required,max=2000"`
}

func (h *Handler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req openDisputeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	dispute, err := h.svc.Disputes.OpenDispute(r.Context(), actor, &domain.Dispute{
		OrderID:     req.OrderID,
		CustomerID:  req.CustomerID,
		Reason:      domain.DisputeReason(req.Reason),
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, r, "OpenDispute", err)
		return
	}
	writeJSON(w, http.StatusCreated, dispute)
}

func (h *Handler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := repository.DisputeFilter{
		CustomerID: q.Get("customer_id"),
		CenterID:   q.Get("center_id"),
		OrderID:    q.Get("order_id"),
	}
	if s := q.Get("status"); s != "" {
		status, err := domain.ParseDisputeStatus(s)
		if err != nil {
			writeServiceError(w, r, "ListDisputes", err)
			return
		}
		filter.Status = status
	}

	disputes, err := h.svc.Disputes.ListDisputes(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, "ListDisputes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"disputes": disputes, "total": len(disputes)})
}

func (h *Handler) UpdateDisputeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	status, err := domain.ParseDisputeStatus(req.Status)
	if err != nil {
		writeServiceError(w, r, "UpdateDisputeStatus", err)
		return
	}
	dispute, err := h.svc.Disputes.UpdateDisputeStatus(r.Context(), actor, mux.Vars(r)["id"], status)
	if err != nil {
		writeServiceError(w, r, "UpdateDisputeStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, dispute)
}
