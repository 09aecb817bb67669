package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/storage"

	"github.com/gorilla/mux"
)

type sanitizationRequest struct {
	OrderID        string `json:"order_id" validate:"required"`
	CleaningType   string `json:"cleaning_type" validate:"required"`
	ChemicalUsed   string `json:"chemical_used"`
	StaffName      string `json:"staff_name" validate:"required"`
	BeforeImageURL string `json:"before_image_url" validate:"omitempty,url"`
	AfterImageURL  string `json:"after_image_url" validate:"omitempty,url"`
	Status         string `json:"status" validate:"required,oneof=approved recleanRequired"`
}

func (h *Handler) RecordSanitization(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req sanitizationRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	record, err := h.svc.Sanitization.RecordSanitization(r.Context(), actor, &domain.SanitizationRecord{
		OrderID:        req.OrderID,
		CleaningType:   domain.CleaningType(req.CleaningType),
		ChemicalUsed:   req.ChemicalUsed,
		StaffName:      req.StaffName,
		BeforeImageURL: req.BeforeImageURL,
		AfterImageURL:  req.AfterImageURL,
		Status:         domain.SanitizationStatus(req.Status),
	})
	if err != nil {
		writeServiceError(w, r, "RecordSanitization", err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// ListSanitization returns the audit trail of one order when order_id is
// given, otherwise the most recent records the caller may see.
func (h *Handler) ListSanitization(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	var (
		records []domain.SanitizationRecord
		err     error
	)
	if orderID := q.Get("order_id"); orderID != "" {
		records, err = h.svc.Sanitization.ForOrder(r.Context(), actor, orderID)
	} else {
		limit := 50
		if l := q.Get("limit"); l != "" {
			n, convErr := strconv.Atoi(l)
			if convErr != nil || n <= 0 || n > 500 {
				writeError(w, http.StatusBadRequest, "validation failed: limit must be between 1 and 500")
				return
			}
			limit = n
		}
		records, err = h.svc.Sanitization.ListRecent(r.Context(), actor, limit)
	}
	if err != nil {
		writeServiceError(w, r, "ListSanitization", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records, "total": len(records)})
}

// UploadImage stores a before/after photo sent as the raw request body.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	orderID := q.Get("order_id")
	stage := q.Get("stage")
	if orderID == "" || stage == "" {
		writeError(w, http.StatusBadRequest, "missing order_id or stage parameter")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" && contentType != "image/webp" {
		writeError(w, http.StatusBadRequest, "invalid content type")
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	url, err := h.svc.Sanitization.UploadImage(r.Context(), actor, orderID, stage, contentType, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "image exceeds upload limit")
			return
		}
		writeServiceError(w, r, "UploadImage", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	file, err := h.svc.Sanitization.OpenImage(r.Context(), key)
	if err != nil {
		writeServiceError(w, r, "GetImage", err)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", storage.ContentType(key))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Failed to stream image", "key", key, "error", err)
	}
}
