package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/internal/request/usecase/command"
	"github.com/fieldops/cmms-inventory/internal/request/usecase/query"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
	"github.com/fieldops/cmms-inventory/pkg/logger"
)

// RequestHandler handles HTTP requests for the inventory request workflow
type RequestHandler struct {
	createHandler  *command.CreateRequestHandler
	approveHandler *command.ApproveRequestHandler
	rejectHandler  *command.RejectRequestHandler
	deliverHandler *command.DeliverRequestHandler
	receiptHandler *command.ConfirmReceiptHandler
	cancelHandler  *command.CancelRequestHandler

	getRequestHandler   *query.GetRequestHandler
	listRequestsHandler *query.ListRequestsHandler

	requestCounter    *prometheus.CounterVec
	requestLatency    *prometheus.HistogramVec
	transitionCounter *prometheus.CounterVec
}

// NewRequestHandler creates a new request workflow handler
func NewRequestHandler(
	createHandler *command.CreateRequestHandler,
	approveHandler *command.ApproveRequestHandler,
	rejectHandler *command.RejectRequestHandler,
	deliverHandler *command.DeliverRequestHandler,
	receiptHandler *command.ConfirmReceiptHandler,
	cancelHandler *command.CancelRequestHandler,
	getRequestHandler *query.GetRequestHandler,
	listRequestsHandler *query.ListRequestsHandler,
) *RequestHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_requests_total",
			Help: "Total number of requests to the request workflow",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workflow_request_duration_seconds",
			Help:    "Duration of request workflow requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	transitionCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_transitions_total",
			Help: "Total number of request state transitions",
		},
		[]string{"to_status"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(transitionCounter)

	return &RequestHandler{
		createHandler:       createHandler,
		approveHandler:      approveHandler,
		rejectHandler:       rejectHandler,
		deliverHandler:      deliverHandler,
		receiptHandler:      receiptHandler,
		cancelHandler:       cancelHandler,
		getRequestHandler:   getRequestHandler,
		listRequestsHandler: listRequestsHandler,
		requestCounter:      requestCounter,
		requestLatency:      requestLatency,
		transitionCounter:   transitionCounter,
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

// CreateRequest handles POST /api/requests
func (h *RequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	var req struct {
		WorkOrderID string `json:"work_order_id"`
		ItemID      uint   `json:"item_id"`
		Quantity    int64  `json:"quantity"`
		Urgency     string `json:"urgency"`
		Notes       string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	request, err := h.createHandler.Handle(r.Context(), command.CreateRequestCommand{
		Actor:       actor,
		WorkOrderID: req.WorkOrderID,
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		Urgency:     req.Urgency,
		Notes:       req.Notes,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to create request")
		return
	}

	h.transitionCounter.WithLabelValues(request.Status).Inc()
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Request created successfully",
		Data:    request,
	})
}

// ApproveRequest handles POST /api/requests/{id}/approve
func (h *RequestHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	requestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		ApprovedQuantity int64  `json:"approved_quantity"`
		SourceType       string `json:"source_type"`
		SourceID         uint   `json:"source_id"`
		Notes            string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return
	}

	request, err := h.approveHandler.Handle(r.Context(), command.ApproveRequestCommand{
		Actor:            actor,
		RequestID:        requestID,
		ApprovedQuantity: req.ApprovedQuantity,
		Source:           locdomain.LocationRef{Type: locdomain.LocationType(req.SourceType), ID: req.SourceID},
		Notes:            req.Notes,
	})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to approve request")
		return
	}

	h.transitionCounter.WithLabelValues(request.Status).Inc()
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Request approved successfully",
		Data:    request,
	})
}

// RejectRequest handles POST /api/requests/{id}/reject
func (h *RequestHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Request rejected successfully", "Failed to reject request",
		func(ctx *transitionContext) (*domain.InventoryRequest, error) {
			return h.rejectHandler.Handle(ctx.r.Context(), command.RejectRequestCommand{
				Actor:     ctx.actor,
				RequestID: ctx.requestID,
				Notes:     ctx.notes,
			})
		})
}

// DeliverRequest handles POST /api/requests/{id}/deliver
func (h *RequestHandler) DeliverRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Request delivered successfully", "Failed to deliver request",
		func(ctx *transitionContext) (*domain.InventoryRequest, error) {
			return h.deliverHandler.Handle(ctx.r.Context(), command.DeliverRequestCommand{
				Actor:     ctx.actor,
				RequestID: ctx.requestID,
				Notes:     ctx.notes,
			})
		})
}

// ConfirmReceipt handles POST /api/requests/{id}/receive
func (h *RequestHandler) ConfirmReceipt(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Receipt confirmed successfully", "Failed to confirm receipt",
		func(ctx *transitionContext) (*domain.InventoryRequest, error) {
			return h.receiptHandler.Handle(ctx.r.Context(), command.ConfirmReceiptCommand{
				Actor:     ctx.actor,
				RequestID: ctx.requestID,
				Notes:     ctx.notes,
			})
		})
}

// CancelRequest handles POST /api/requests/{id}/cancel
func (h *RequestHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "Request cancelled successfully", "Failed to cancel request",
		func(ctx *transitionContext) (*domain.InventoryRequest, error) {
			return h.cancelHandler.Handle(ctx.r.Context(), command.CancelRequestCommand{
				Actor:     ctx.actor,
				RequestID: ctx.requestID,
				Notes:     ctx.notes,
			})
		})
}

// transitionContext carries the common inputs of the notes-only transitions
type transitionContext struct {
	r         *http.Request
	actor     auth.Actor
	requestID uint
	notes     string
}

// transition factors the shared shape of reject, deliver, receive and cancel:
// authenticate, parse the id and notes, run the command, report the result
func (h *RequestHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	successMessage, genericError string,
	run func(*transitionContext) (*domain.InventoryRequest, error),
) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, Response{Success: false, Error: "Authentication required"})
		return
	}

	requestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
			return
		}
	}

	request, err := run(&transitionContext{r: r, actor: actor, requestID: requestID, notes: req.Notes})
	if err != nil {
		h.respondFailure(w, r, err, genericError)
		return
	}

	h.transitionCounter.WithLabelValues(request.Status).Inc()
	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: successMessage,
		Data:    request,
	})
}

// GetRequest handles GET /api/requests/{id}
func (h *RequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	request, err := h.getRequestHandler.Handle(r.Context(), query.GetRequestQuery{RequestID: requestID})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to get request")
		return
	}

	respondJSON(w, http.StatusOK, Response{Success: true, Data: request})
}

// ListRequests handles GET /api/requests
func (h *RequestHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	page, limit := pagination(params.Get("page"), params.Get("limit"))

	filter := domain.RequestFilter{
		WorkOrderID: params.Get("work_order_id"),
		Status:      params.Get("status"),
		Urgency:     params.Get("urgency"),
		Limit:       limit,
		Offset:      (page - 1) * limit,
	}
	if v := params.Get("item_id"); v != "" {
		itemID, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid item ID"})
			return
		}
		filter.ItemID = uint(itemID)
	}

	requests, total, err := h.listRequestsHandler.Handle(r.Context(), query.ListRequestsQuery{Filter: filter})
	if err != nil {
		h.respondFailure(w, r, err, "Failed to list requests")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    requests,
		Meta:    &ListMeta{Total: total, Page: page, Limit: limit},
	})
}

func (h *RequestHandler) respondFailure(w http.ResponseWriter, r *http.Request, err error, generic string) {
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
func (h *RequestHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// RegisterRoutes registers all request workflow routes
func (h *RequestHandler) RegisterRoutes(router *mux.Router) {
	router.Handle("/api/requests",
		auth.Middleware(h.metricsMiddleware("/api/requests", h.CreateRequest))).Methods("POST")
	router.Handle("/api/requests/{id}/approve",
		auth.Middleware(h.metricsMiddleware("/api/requests/{id}/approve", h.ApproveRequest))).Methods("POST")
	router.Handle("/api/requests/{id}/reject",
		auth.Middleware(h.metricsMiddleware("/api/requests/{id}/reject", h.RejectRequest))).Methods("POST")
	router.Handle("/api/requests/{id}/deliver",
		auth.Middleware(h.metricsMiddleware("/api/requests/{id}/deliver", h.DeliverRequest))).Methods("POST")
	router.Handle("/api/requests/{id}/receive",
		auth.Middleware(h.metricsMiddleware("/api/requests/{id}/receive", h.ConfirmReceipt))).Methods("POST")
	router.Handle("/api/requests/{id}/cancel",
		auth.Middleware(h.metricsMiddleware("/api/requests/{id}/cancel", h.CancelRequest))).Methods("POST")
	router.HandleFunc("/api/requests/{id}", h.metricsMiddleware("/api/requests/{id}", h.GetRequest)).Methods("GET")
	router.HandleFunc("/api/requests", h.metricsMiddleware("/api/requests", h.ListRequests)).Methods("GET")
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 32)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request ID"})
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
