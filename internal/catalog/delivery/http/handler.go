package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fieldops/cmms-inventory/internal/catalog/domain"
	"github.com/fieldops/cmms-inventory/internal/catalog/usecase/command"
	"github.com/fieldops/cmms-inventory/internal/catalog/usecase/query"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
	"github.com/fieldops/cmms-inventory/pkg/logger"
)

// ItemHandler handles HTTP requests for the item catalog
type ItemHandler struct {
	createHandler *command.CreateItemHandler
	updateHandler *command.UpdateItemHandler
	deleteHandler *command.DeleteItemHandler

	getItemHandler   *query.GetItemHandler
	listItemsHandler *query.ListItemsHandler

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewItemHandler creates a new catalog handler
func NewItemHandler(
	createHandler *command.CreateItemHandler,
	updateHandler *command.UpdateItemHandler,
	deleteHandler *command.DeleteItemHandler,
	getItemHandler *query.GetItemHandler,
	listItemsHandler *query.ListItemsHandler,
) *ItemHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Total number of requests to the item catalog",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Duration of item catalog requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &ItemHandler{
		createHandler:    createHandler,
		updateHandler:    updateHandler,
		deleteHandler:    deleteHandler,
		getItemHandler:   getItemHandler,
		listItemsHandler: listItemsHandler,
		requestCounter:   requestCounter,
		requestLatency:   requestLatency,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *ListMeta   `json:"meta,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ListMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// CreateItem handles POST /api/items
func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	var req struct {
		Code          string `json:"code"`
		Name          string `json:"name"`
		Category      string `json:"category"`
		Unit          string `json:"unit"`
		UnitCostCents int64  `json:"unit_cost_cents"`
		MinStock      int64  `json:"min_stock"`
		MaxStock      *int64 `json:"max_stock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	item, err := h.createHandler.Handle(r.Context(), command.CreateItemCommand{
		Actor:         actor,
		Code:          req.Code,
		Name:          req.Name,
		Category:      req.Category,
		Unit:          req.Unit,
		UnitCostCents: req.UnitCostCents,
		MinStock:      req.MinStock,
		MaxStock:      req.MaxStock,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to create item")
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Item created successfully",
		Data:    item,
	})
}

// UpdateItem handles PATCH /api/items/{id}
func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Name          *string `json:"name"`
		Category      *string `json:"category"`
		Unit          *string `json:"unit"`
		UnitCostCents *int64  `json:"unit_cost_cents"`
		MinStock      *int64  `json:"min_stock"`
		MaxStock      *int64  `json:"max_stock"`
		Active        *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	item, err := h.updateHandler.Handle(r.Context(), command.UpdateItemCommand{
		Actor:  actor,
		ItemID: itemID,
		Update: domain.ItemUpdate{
			Name:          req.Name,
			Category:      req.Category,
			Unit:          req.Unit,
			UnitCostCents: req.UnitCostCents,
			MinStock:      req.MinStock,
			MaxStock:      req.MaxStock,
			Active:        req.Active,
		},
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to update item")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Item updated successfully",
		Data:    item,
	})
}

// DeleteItem handles DELETE /api/items/{id}
func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deleteHandler.Handle(r.Context(), command.DeleteItemCommand{Actor: actor, ItemID: itemID}); err != nil {
		h.respondFailure(w, r, err, "Failed to delete item")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Item deleted successfully",
	})
}

// GetItem handles GET /api/items/{id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	item, err := h.getItemHandler.Handle(r.Context(), query.GetItemQuery{ItemID: itemID})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to get item")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: item})
}

// ListItems handles GET /api/items
func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	page, limit := pagination(params.Get("page"), params.Get("limit"))

	filter := domain.ItemFilter{
		Search:   params.Get("search"),
		Category: params.Get("category"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	if actor, ok := auth.ActorFromContext(r.Context()); ok {
		filter.CompanyID = actor.CompanyID
	}
	if v := params.Get("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}

	items, total, err := h.listItemsHandler.Handle(r.Context(), query.ListItemsQuery{Filter: filter})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to list items")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    items,
		Meta:    &ListMeta{Total: total, Page: page, Limit: limit},
	})
}

func (h *ItemHandler) respondFailure(w http.ResponseWriter, r *http.Request, err error, generic string) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg(generic)
		message = generic
	}
	respondJSON(w, status, Response{Success: false, Error: message})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *ItemHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// RegisterRoutes registers all catalog routes
func (h *ItemHandler) RegisterRoutes(router *mux.Router) {
	router.Handle("/api/items",
		auth.Middleware(h.metricsMiddleware("/api/items", h.CreateItem))).Methods("POST")
	router.Handle("/api/items/{id}",
		auth.Middleware(h.metricsMiddleware("/api/items/{id}", h.UpdateItem))).Methods("PATCH")
	router.Handle("/api/items/{id}",
		auth.Middleware(h.metricsMiddleware("/api/items/{id}", h.DeleteItem))).Methods("DELETE")
	router.HandleFunc("/api/items/{id}", h.metricsMiddleware("/api/items/{id}", h.GetItem)).Methods("GET")
	router.HandleFunc("/api/items", h.metricsMiddleware("/api/items", h.ListItems)).Methods("GET")
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid item ID"})
		return 0, false
	}
	return uint(id), true
}

func pagination(pageParam, limitParam string) (int, int) {
	page, _ := strconv.Atoi(pageParam)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitParam)
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
