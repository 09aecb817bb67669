package http

import (
	"net/http"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"

	"github.com/gorilla/mux"
)

type bookTrialRequest struct {
	CustomerID    string    `json:"customer_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	ProductID     string    `json:"product_id" validate:"required"`
	ProductName   string    `json:"product_name"`
	CenterID      string    `json:"center_id" validate:"required"`
	CenterName    string    `json:"center_name"`
	TrialDate     time.Time `json:"trial_date" validate:"required"`
}

type walkInRequest struct {
	CustomerName  string     `json:"customer_name" validate:"required"`
	CustomerPhone string     `json:"customer_phone"`
	ProductID     string     `json:"product_id" validate:"required"`
	ProductName   string     `json:"product_name"`
	CenterID      string     `json:"center_id"`
	CenterName    string     `json:"center_name"`
	TrialDate     *time.Time `json:"trial_date"`
}

func (h *Handler) BookTrial(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req bookTrialRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	trial, err := h.svc.Trials.BookTrial(r.Context(), actor, &domain.TrialBooking{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ProductID:     req.ProductID,
		ProductName:   req.ProductName,
		CenterID:      req.CenterID,
		CenterName:    req.CenterName,
		TrialDate:     req.TrialDate.UTC(),
	})
	if err != nil {
		writeServiceError(w, r, "BookTrial", err)
		return
	}
	writeJSON(w, http.StatusCreated, trial)
}

func (h *Handler) BookWalkIn(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req walkInRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	booking := &domain.TrialBooking{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ProductID:     req.ProductID,
		ProductName:   req.ProductName,
		CenterID:      req.CenterID,
		CenterName:    req.CenterName,
	}
	if req.TrialDate != nil {
		booking.TrialDate = req.TrialDate.UTC()
	}
	trial, err := h.svc.Trials.BookWalkIn(r.Context(), actor, booking)
	if err != nil {
		writeServiceError(w, r, "BookWalkIn", err)
		return
	}
	writeJSON(w, http.StatusCreated, trial)
}

func (h *Handler) ListTrials(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := repository.TrialFilter{
		CustomerID: q.Get("customer_id"),
		CenterID:   q.Get("center_id"),
		ProductID:  q.Get("product_id"),
	}
	if s := q.Get("status"); s != "" {
		status, err := domain.ParseTrialStatus(s)
		if err != nil {
			writeServiceError(w, r, "ListTrials", err)
			return
		}
		filter.Status = status
	}
	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation failed: "+name+" must be an RFC 3339 timestamp")
			return
		}
		t = t.UTC()
		*dst = &t
	}

	trials, err := h.svc.Trials.ListTrials(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, "ListTrials", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trials": trials, "total": len(trials)})
}

func (h *Handler) UpdateTrialStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	status, err := domain.ParseTrialStatus(req.Status)
	if err != nil {
		writeServiceError(w, r, "UpdateTrialStatus", err)
		return
	}
	trial, err := h.svc.Trials.UpdateTrialStatus(r.Context(), actor, mux.Vars(r)["id"], status)
	if err != nil {
		writeServiceError(w, r, "UpdateTrialStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, trial)
}
