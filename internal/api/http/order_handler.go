package http

import (
	"context"
	"net/http"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/service"

	"github.com/gorilla/mux"
)

type createOrderRequest struct {
	CustomerID    string     `json:"customer_id"`
	VendorID      string     `json:"vendor_id"`
	ProductID     string     `json:"product_id" validate:"required"`
	ProductName   string     `json:"product_name"`
	ProductImage  string     `json:"product_image"`
	CenterID      string     `json:"center_id"`
	CenterName    string     `json:"center_name"`
	RentalPrice   int64      `json:"rental_price" validate:"gt=0"`
	DepositAmount int64      `json:"deposit_amount" validate:"gte=0"`
	RentalStart   *time.Time `json:"rental_start"`
	RentalEnd     *time.Time `json:"rental_end"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

type handoverRequest struct {
	VerificationCode string `json:"verification_code" validate:"required"`
}

type returnRequest struct {
	Condition    string `json:"condition" validate:"required,oneof=good minor major"`
	DamageCharge int64  `json:"damage_charge" validate:"gte=0"`
	Notes        string `json:"notes"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req createOrderRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.RentalStart != nil && req.RentalEnd != nil && req.RentalEnd.Before(*req.RentalStart) {
		writeError(w, http.StatusBadRequest, "validation failed: rental_end is before rental_start")
		return
	}

	order, err := h.svc.Orders.CreateOrder(r.Context(), actor, &domain.Order{
		CustomerID:    req.CustomerID,
		VendorID:      req.VendorID,
		ProductID:     req.ProductID,
		ProductName:   req.ProductName,
		ProductImage:  req.ProductImage,
		CenterID:      req.CenterID,
		CenterName:    req.CenterName,
		RentalPrice:   req.RentalPrice,
		DepositAmount: req.DepositAmount,
		RentalStart:   req.RentalStart,
		RentalEnd:     req.RentalEnd,
		Status:        domain.OrderStatus(req.Status),
		Notes:         req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, "CreateOrder", err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := repository.OrderFilter{
		CustomerID: q.Get("customer_id"),
		VendorID:   q.Get("vendor_id"),
		CenterID:   q.Get("center_id"),
	}
	if s := q.Get("status"); s != "" {
		status, err := domain.ParseOrderStatus(s)
		if err != nil {
			writeServiceError(w, r, "ListOrders", err)
			return
		}
		filter.Status = status
	}

	orders, err := h.svc.Orders.ListOrders(r.Context(), actor, filter)
	if err != nil {
		writeServiceError(w, r, "ListOrders", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "total": len(orders)})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	order, err := h.svc.Orders.GetOrder(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, "GetOrder", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) AdvanceOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.changeOrderStatus(w, r, "AdvanceOrderStatus", h.svc.Orders.AdvanceStatus)
}

func (h *Handler) ForceOrderStatus(w http.ResponseWriter, r *http.Request) {
	h.changeOrderStatus(w, r, "ForceOrderStatus", h.svc.Orders.ForceStatus)
}

type orderStatusFunc func(ctx context.Context, actor domain.Principal, id string, to domain.OrderStatus, notes string) (*domain.Order, error)

func (h *Handler) changeOrderStatus(w http.ResponseWriter, r *http.Request, op string, change orderStatusFunc) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	order, err := change(r.Context(), actor, mux.Vars(r)["id"], domain.OrderStatus(req.Status), req.Notes)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) ConfirmHandover(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req handoverRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	order, err := h.svc.Orders.ConfirmHandover(r.Context(), actor, mux.Vars(r)["id"], req.VerificationCode)
	if err != nil {
		writeServiceError(w, r, "ConfirmHandover", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) RecordReturn(w http.ResponseWriter, r *http.Request) {
	actor, ok := principal(w, r)
	if !ok {
		return
	}
	var req returnRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	order, err := h.svc.Orders.RecordReturn(r.Context(), actor, mux.Vars(r)["id"], service.ReturnInput{
		Condition:    domain.ReturnCondition(req.Condition),
		DamageCharge: req.DamageCharge,
		Notes:        req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, "RecordReturn", err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
