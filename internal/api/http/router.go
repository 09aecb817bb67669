package http

import (
	"net/http"
	"reflect"
	"strings"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/security"
	"rentwear-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const defaultMaxUploadBytes = 10 << 20

// Services are the workflow services the API exposes.
type Services struct {
	Orders        service.OrderService
	Trials        service.TrialService
	Sanitization  service.SanitizationService
	Disputes      service.DisputeService
	Notifications service.NotificationService
	Finance       service.FinanceService
}

// Handler serves the JSON API.
type Handler struct {
	svc            Services
	validate       *validator.Validate
	maxUploadBytes int64
}

func NewHandler(svc Services, maxUploadMB int64) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	maxBytes := int64(defaultMaxUploadBytes)
	if maxUploadMB > 0 {
		maxBytes = maxUploadMB << 20
	}
	return &Handler{
		svc:            svc,
		validate:       v,
		maxUploadBytes: maxBytes,
	}
}

// NewRouter registers every API route. Route names are the keys of
// config.EndpointSecurityConfig.
func NewRouter(h *Handler, tm security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(recoveryMiddleware, loggingMiddleware)

	router.HandleFunc("/healthz", h.Healthz).Methods(http.MethodGet).Name("Healthz")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(NewAuthMiddleware(tm).Middleware)

	api.HandleFunc("/orders", h.CreateOrder).Methods(http.MethodPost).Name("CreateOrder")
	api.HandleFunc("/orders", h.ListOrders).Methods(http.MethodGet).Name("ListOrders")
	api.HandleFunc("/orders/{id}", h.GetOrder).Methods(http.MethodGet).Name("GetOrder")
	api.HandleFunc("/orders/{id}/advance", h.AdvanceOrderStatus).Methods(http.MethodPost).Name("AdvanceOrderStatus")
	api.HandleFunc("/orders/{id}/force", h.ForceOrderStatus).Methods(http.MethodPost).Name("ForceOrderStatus")
	api.HandleFunc("/orders/{id}/handover", h.ConfirmHandover).Methods(http.MethodPost).Name("ConfirmHandover")
	api.HandleFunc("/orders/{id}/return", h.RecordReturn).Methods(http.MethodPost).Name("RecordReturn")
	api.HandleFunc("/orders/{id}/settlement", h.GetSettlement).Methods(http.MethodGet).Name("GetSettlement")

	api.HandleFunc("/trials", h.BookTrial).Methods(http.MethodPost).Name("BookTrial")
	api.HandleFunc("/trials/walk-in", h.BookWalkIn).Methods(http.MethodPost).Name("BookWalkIn")
	api.HandleFunc("/trials", h.ListTrials).Methods(http.MethodGet).Name("ListTrials")
	api.HandleFunc("/trials/{id}/status", h.UpdateTrialStatus).Methods(http.MethodPost).Name("UpdateTrialStatus")

	api.HandleFunc("/sanitization", h.RecordSanitization).Methods(http.MethodPost).Name("RecordSanitization")
	api.HandleFunc("/sanitization", h.ListSanitization).Methods(http.MethodGet).Name("ListSanitization")
	api.HandleFunc("/sanitization/images", h.UploadImage).Methods(http.MethodPut).Name("UploadImage")
	api.HandleFunc("/images/{key:.+}", h.GetImage).Methods(http.MethodGet).Name("GetImage")

	api.HandleFunc("/disputes", h.OpenDispute).Methods(http.MethodPost).Name("OpenDispute")
	api.HandleFunc("/disputes", h.ListDisputes).Methods(http.MethodGet).Name("ListDisputes")
	api.HandleFunc("/disputes/{id}/status", h.UpdateDisputeStatus).Methods(http.MethodPost).Name("UpdateDisputeStatus")

	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet).Name("ListNotifications")
	api.HandleFunc("/notifications/unread-count", h.UnreadCount).Methods(http.MethodGet).Name("UnreadCount")
	api.HandleFunc("/notifications/{id}/read", h.MarkNotificationRead).Methods(http.MethodPost).Name("MarkNotificationRead")

	api.HandleFunc("/vendors/{id}/earnings", h.VendorEarnings).Methods(http.MethodGet).Name("VendorEarnings")
	api.HandleFunc("/customers/{id}/wallet", h.CustomerWallet).Methods(http.MethodGet).Name("CustomerWallet")
	api.HandleFunc("/payouts", h.ListPayouts).Methods(http.MethodGet).Name("ListPayouts")
	api.HandleFunc("/payouts/{id}/status", h.UpdatePayoutStatus).Methods(http.MethodPost).Name("UpdatePayoutStatus")

	return router
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// principal returns the authenticated caller, writing a 401 when the auth
// middleware did not run.
func principal(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
	}
	return p, ok
}
