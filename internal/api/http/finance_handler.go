package http

import (
	"net/http"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"

	"github.com/gorilla/mux"
)

func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	settlement, err := h.svc.Finance.OrderSettlement(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, "GetSettlement", err)
		return
	}
	writeJSON(w, http.StatusOK, settlement)
}

func (h *Handler) VendorEarnings(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	summary, err := h.svc.Finance.VendorEarnings(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, "VendorEarnings", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) CustomerWallet(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	wallet, err := h.svc.Finance.CustomerWallet(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, "CustomerWallet", err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (h *Handler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := repository.PayoutFilter{VendorID: q.Get("vendor_id")}
	if s := q.Get("status"); s != "" {
		status, err := domain.ParsePayoutStatus(s)
		if err != nil {
			writeServiceError(w, r, "ListPayouts", err)
			return
		}
		filter.Status = status
	}

	payouts, err := h.svc.Finance.ListPayouts(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, "ListPayouts", err)
		return
	}
	var pending int64
	for _, p := range payouts {
		if p.Status == domain.PayoutStatusPending {
			pending += p.Net
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"payouts": payouts, "total": len(payouts), "pending_total": pending})
}

func (h *Handler) UpdatePayoutStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	status, err := domain.ParsePayoutStatus(req.Status)
	if err != nil {
		writeServiceError(w, r, "UpdatePayoutStatus", err)
		return
	}
	payout, err := h.svc.Finance.UpdatePayoutStatus(r.Context(), actor, mux.Vars(r)["id"], status)
	if err != nil {
		writeServiceError(w, r, "UpdatePayoutStatus", err)
		return
	}
	writeJSON(w, http.StatusOK, payout)
}
