package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ordersvc/internal/catalog"
	"ordersvc/internal/logger"
	"ordersvc/internal/order"
	"ordersvc/internal/payment"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the order orchestrator over JSON/HTTP.
type Handler struct {
	svc order.Service
}

func NewHandler(svc order.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	items := make([]order.CreateItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.CreateItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	created, session, err := h.svc.Create(r.Context(), items)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateOrderResponse{
		Order:          mapOrderToResponse(created),
		PaymentSession: mapSessionToResponse(session),
	})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page := parseInt32(r.URL.Query().Get("page"), 1)
	limit := parseInt32(r.URL.Query().Get("limit"), 10)

	var status *order.Status
	if s := r.URL.Query().Get("status"); s != "" {
		st := order.Status(s)
		if !st.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_status", s)
			return
		}
		status = &st
	}

	result, err := h.svc.List(r.Context(), page, limit, status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	data := make([]OrderResponse, 0, len(result.Data))
	for _, o := range result.Data {
		data = append(data, mapOrderToResponse(o))
	}

	writeJSON(w, http.StatusOK, ListOrdersResponse{
		Data: data,
		Meta: PaginationMeta{
			Page:     result.Meta.Page,
			Limit:    result.Meta.Limit,
			LastPage: result.Meta.LastPage,
			Total:    result.Meta.Total,
		},
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ChangeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	o, err := h.svc.ChangeStatus(r.Context(), id, order.Status(req.Status))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError translates the error taxonomy into transport status
// codes. This is the only place errors become HTTP concerns.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromCtx(r.Context())

	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, catalog.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "product_not_found", err.Error())
	case errors.Is(err, payment.ErrSessionFailed):
		log.Error("payment session error", zap.Error(err))
		writeError(w, http.StatusBadGateway, "payment_session_error", err.Error())
	case errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrInvalidItem),
		errors.Is(err, order.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func parseInt32(s string, fallback int32) int32 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v < 1 {
		return fallback
	}
	return int32(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
