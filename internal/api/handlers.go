// Package api exposes the order workflow over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/example/redshop/internal/api/middleware"
	"github.com/example/redshop/internal/catalog"
	"github.com/example/redshop/internal/domain"
	"github.com/example/redshop/internal/order"
)

const defaultPerPage = 20

// OrderService is the workflow surface the handlers need.
type OrderService interface {
	Create(ctx context.Context, userID, userEmail string, items []order.CreateItem) (*domain.Order, error)
	Cancel(ctx context.Context, orderID int64, userID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, newStatus string) (*domain.Order, error)
	GetForUser(ctx context.Context, orderID int64, userID string) (*domain.Order, error)
	List(ctx context.Context, userID string, page, perPage int) ([]domain.Order, int, error)
}

// Handlers serves the order endpoints.
type Handlers struct {
	orders OrderService
	log    *logrus.Entry
}

// NewHandlers creates the handler set.
func NewHandlers(orders OrderService, log *logrus.Entry) *Handlers {
	return &Handlers{orders: orders, log: log}
}

// Health reports service liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "order-service",
	})
}

// ListOrders returns one page of the caller's orders, newest first.
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "User ID not provided")
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", defaultPerPage)

	orders, total, err := h.orders.List(r.Context(), userID, page, perPage)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	pages := total / perPage
	if total%perPage != 0 {
		pages++
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"orders":   orders,
		"total":    total,
		"page":     page,
		"per_page": perPage,
		"pages":    pages,
	})
}

// GetOrder returns one order owned by the caller.
func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "User ID not provided")
		return
	}

	orderID, err := orderIDParam(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	o, err := h.orders.GetForUser(r.Context(), orderID, userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}

// CreateOrder validates and prices a new order for the caller.
func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	userEmail := middleware.UserEmail(r.Context())
	if userID == "" || userEmail == "" {
		respondError(w, http.StatusUnauthorized, "User information not provided")
		return
	}

	var req struct {
		Items []order.CreateItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.orders.Create(r.Context(), userID, userEmail, req.Items)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Order created successfully",
		"order":   o,
	})
}

// CancelOrder cancels one of the caller's orders if it has not shipped.
func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserID(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "User ID not provided")
		return
	}

	orderID, err := orderIDParam(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	o, err := h.orders.Cancel(r.Context(), orderID, userID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order cancelled successfully",
		"order":   o,
	})
}

// UpdateOrderStatus sets any recognized status (admin path, no identity
// headers required, reached only through the gateway's admin routes).
func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := orderIDParam(r)
	if err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Order status updated successfully",
		"order":   o,
	})
}

// respondServiceError maps workflow errors onto the spec'd status codes.
func (h *Handlers) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, catalog.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrUnavailable):
		respondError(w, http.StatusInternalServerError, "Failed to verify product")
	default:
		h.log.WithError(err).Error("request failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func orderIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 1 {
		return fallback
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
