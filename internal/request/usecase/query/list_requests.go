package query

import (
	"context"
	"fmt"

	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

// ListRequestsQuery pages through requests, newest first
type ListRequestsQuery struct {
	Filter domain.RequestFilter
}

// ListRequestsHandler handles the list requests query
type ListRequestsHandler struct {
	requests domain.RequestRepository
}

func NewListRequestsHandler(requests domain.RequestRepository) *ListRequestsHandler {
	return &ListRequestsHandler{requests: requests}
}

// Handle executes the list requests query
func (h *ListRequestsHandler) Handle(ctx context.Context, q ListRequestsQuery) ([]domain.InventoryRequest, int64, error) {
	if q.Filter.Status != "" {
		switch q.Filter.Status {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected,
			domain.StatusDelivered, domain.StatusReceived, domain.StatusCancelled:
		default:
			return nil, 0, apperr.Validationf("unknown status %q", q.Filter.Status)
		}
	}
	if q.Filter.Urgency != "" {
		urgency, ok := domain.NormalizeUrgency(q.Filter.Urgency)
		if !ok {
			return nil, 0, apperr.Validationf("unknown urgency %q", q.Filter.Urgency)
		}
		q.Filter.Urgency = urgency
	}

	if q.Filter.Limit <= 0 {
		q.Filter.Limit = 20
	}
	if q.Filter.Limit > 100 {
		q.Filter.Limit = 100
	}
	if q.Filter.Offset < 0 {
		q.Filter.Offset = 0
	}

	requests, total, err := h.requests.FindAll(ctx, q.Filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, total, nil
}
