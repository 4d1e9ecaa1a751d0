package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
	"github.com/fieldops/cmms-inventory/internal/ledger/usecase/command"
	"github.com/fieldops/cmms-inventory/internal/ledger/usecase/query"
	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
	"github.com/fieldops/cmms-inventory/pkg/logger"
)

// StockHandler handles HTTP requests for the stock ledger
type StockHandler struct {
	adjustHandler   *command.AdjustStockHandler
	transferHandler *command.TransferStockHandler
	receiveHandler  *command.ReceiveStockHandler

	getStockHandler      *query.GetStockHandler
	listMovementsHandler *query.ListMovementsHandler

	requestCounter  *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	movementCounter *prometheus.CounterVec
}

// NewStockHandler creates a new stock ledger handler
func NewStockHandler(
	adjustHandler *command.AdjustStockHandler,
	transferHandler *command.TransferStockHandler,
	receiveHandler *command.ReceiveStockHandler,
	getStockHandler *query.GetStockHandler,
	listMovementsHandler *query.ListMovementsHandler,
) *StockHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_requests_total",
			Help: "Total number of requests to the stock ledger",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_request_duration_seconds",
			Help:    "Duration of stock ledger requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	movementCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_movements_recorded_total",
			Help: "Total number of movements written to the ledger",
		},
		[]string{"type"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(movementCounter)

	return &StockHandler{
		adjustHandler:        adjustHandler,
		transferHandler:      transferHandler,
		receiveHandler:       receiveHandler,
		getStockHandler:      getStockHandler,
		listMovementsHandler: listMovementsHandler,
		requestCounter:       requestCounter,
		requestLatency:       requestLatency,
		movementCounter:      movementCounter,
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

type locationPayload struct {
	LocationType string `json:"location_type"`
	LocationID   uint   `json:"location_id"`
}

func (p locationPayload) ref() locdomain.LocationRef {
	return locdomain.LocationRef{Type: locdomain.LocationType(p.LocationType), ID: p.LocationID}
}

// AdjustStock handles POST /api/stock/adjust
func (h *StockHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	var req struct {
		ItemID      uint            `json:"item_id"`
		Location    locationPayload `json:"location"`
		NewQuantity int64           `json:"new_quantity"`
		Reason      string          `json:"reason"`
		Notes       string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	record, movement, err := h.adjustHandler.Handle(r.Context(), command.AdjustStockCommand{
		Actor:       actor,
		ItemID:      req.ItemID,
		Location:    req.Location.ref(),
		NewQuantity: req.NewQuantity,
		Reason:      req.Reason,
		Notes:       req.Notes,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to adjust stock")
		return
	}

	h.movementCounter.WithLabelValues(movement.Type).Inc()
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock adjusted successfully",
		Data: map[string]interface{}{
			"stock":    record,
			"movement": movement,
		},
	})
}

// TransferStock handles POST /api/stock/transfer
func (h *StockHandler) TransferStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	var req struct {
		ItemID   uint            `json:"item_id"`
		From     locationPayload `json:"from"`
		To       locationPayload `json:"to"`
		Quantity int64           `json:"quantity"`
		Reason   string          `json:"reason"`
		Notes    string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	movement, err := h.transferHandler.Handle(r.Context(), command.TransferStockCommand{
		Actor:    actor,
		ItemID:   req.ItemID,
		From:     req.From.ref(),
		To:       req.To.ref(),
		Quantity: req.Quantity,
		Reason:   req.Reason,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to transfer stock")
		return
	}

	h.movementCounter.WithLabelValues(movement.Type).Inc()
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Stock transferred successfully",
		Data:    movement,
	})
}

// ReceiveStock handles POST /api/stock/receive
func (h *StockHandler) ReceiveStock(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	var req struct {
		ItemID   uint            `json:"item_id"`
		Location locationPayload `json:"location"`
		Quantity int64           `json:"quantity"`
		Reason   string          `json:"reason"`
		Notes    string          `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	movement, err := h.receiveHandler.Handle(r.Context(), command.ReceiveStockCommand{
		Actor:    actor,
		ItemID:   req.ItemID,
		Location: req.Location.ref(),
		Quantity: req.Quantity,
		Reason:   req.Reason,
		Notes:    req.Notes,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to receive stock")
		return
	}

	h.movementCounter.WithLabelValues(movement.Type).Inc()
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Stock received successfully",
		Data:    movement,
	})
}

// GetStock handles GET /api/stock/{item_id}
func (h *StockHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	itemID, err := strconv.ParseUint(vars["item_id"], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid item ID"})
		return
	}

	q := query.GetStockQuery{ItemID: uint(itemID)}
	if lt := r.URL.Query().Get("location_type"); lt != "" {
		locID, _ := strconv.ParseUint(r.URL.Query().Get("location_id"), 10, 32)
		q.Location = &locdomain.LocationRef{Type: locdomain.LocationType(lt), ID: uint(locID)}
	}

	records, err := h.getStockHandler.Handle(r.Context(), q)
	if err != nil {
		h.respondFailure(w, r, err, "Failed to read stock")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: records})
}

// ListMovements handles GET /api/movements
func (h *StockHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	page, limit := pagination(params.Get("page"), params.Get("limit"))

	filter := domain.MovementFilter{
		Type:   params.Get("type"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if v := params.Get("item_id"); v != "" {
		itemID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid item ID"})
			return
		}
		filter.ItemID = uint(itemID)
	}
	if lt := params.Get("location_type"); lt != "" {
		locID, _ := strconv.ParseUint(params.Get("location_id"), 10, 32)
		filter.Location = &locdomain.LocationRef{Type: locdomain.LocationType(lt), ID: uint(locID)}
	}
	if v := params.Get("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.From = &t
		}
	}
	if v := params.Get("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.To = &t
		}
	}

	movements, total, err := h.listMovementsHandler.Handle(r.Context(), query.ListMovementsQuery{Filter: filter})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to list movements")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    movements,
		Meta:    &ListMeta{Total: total, Page: page, Limit: limit},
	})
}

// respondFailure maps business failures to their status and reports storage
// errors generically
func (h *StockHandler) respondFailure(w http.ResponseWriter, r *http.Request, err error, generic string) {
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
func (h *StockHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// RegisterRoutes registers all stock ledger routes. Mutations go through the
// auth middleware; reads are open to any caller behind the gateway.
func (h *StockHandler) RegisterRoutes(router *mux.Router) {
	router.Handle("/api/stock/adjust",
		auth.Middleware(h.metricsMiddleware("/api/stock/adjust", h.AdjustStock))).Methods("POST")
	router.Handle("/api/stock/transfer",
		auth.Middleware(h.metricsMiddleware("/api/stock/transfer", h.TransferStock))).Methods("POST")
	router.Handle("/api/stock/receive",
		auth.Middleware(h.metricsMiddleware("/api/stock/receive", h.ReceiveStock))).Methods("POST")
	router.HandleFunc("/api/stock/{item_id}", h.metricsMiddleware("/api/stock/{item_id}", h.GetStock)).Methods("GET")
	router.HandleFunc("/api/movements", h.metricsMiddleware("/api/movements", h.ListMovements)).Methods("GET")
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
