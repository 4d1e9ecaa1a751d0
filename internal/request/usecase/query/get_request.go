package query

import (
	"context"

	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
)

// GetRequestQuery reads one request by id
type GetRequestQuery struct {
	RequestID uint
}

// GetRequestHandler handles the get request query
type GetRequestHandler struct {
	requests domain.RequestRepository
}

func NewGetRequestHandler(requests domain.RequestRepository) *GetRequestHandler {
	return &GetRequestHandler{requests: requests}
}

// Handle executes the get request query
func (h *GetRequestHandler) Handle(ctx context.Context, q GetRequestQuery) (*domain.InventoryRequest, error) {
	if q.RequestID == 0 {
		return nil, apperr.Validationf("request_id is required")
	}
	return h.requests.FindByID(ctx, q.RequestID)
}
