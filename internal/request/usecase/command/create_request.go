package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	catalogdomain "github.com/fieldops/cmms-inventory/internal/catalog/domain"
	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
	"github.com/fieldops/cmms-inventory/pkg/logger"
)

// CreateRequestCommand opens a parts request against a work order
type CreateRequestCommand struct {
	Actor       auth.Actor
	WorkOrderID string
	ItemID      uint
	Quantity    int64
	Urgency     string
	Notes       string
}

// CreateRequestHandler handles the create request command
type CreateRequestHandler struct {
	requests domain.RequestRepository
	items    catalogdomain.ItemRepository
	authz    auth.Authorizer
	events   EventPublisher
}

func NewCreateRequestHandler(
	requests domain.RequestRepository,
	items catalogdomain.ItemRepository,
	authz auth.Authorizer,
	events EventPublisher,
) *CreateRequestHandler {
	return &CreateRequestHandler{requests: requests, items: items, authz: authz, events: events}
}

// Handle executes the create request command
func (h *CreateRequestHandler) Handle(ctx context.Context, cmd CreateRequestCommand) (*domain.InventoryRequest, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermCreateRequest) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermCreateRequest)
	}

	if cmd.WorkOrderID == "" {
		return nil, apperr.Validationf("work_order_id is required")
	}
	if cmd.Quantity <= 0 {
		return nil, apperr.Validationf("requested quantity must be greater than 0, got %d", cmd.Quantity)
	}
	urgency, ok := domain.NormalizeUrgency(cmd.Urgency)
	if !ok {
		return nil, apperr.Validationf("unknown urgency %q", cmd.Urgency)
	}

	item, err := h.items.FindByID(ctx, cmd.ItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("item %d", cmd.ItemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item: %w", err)
	}
	if cmd.Actor.CompanyID != 0 && item.CompanyID != cmd.Actor.CompanyID {
		return nil, apperr.NotFoundf("item %d", cmd.ItemID)
	}
	if !item.Active {
		return nil, apperr.Validationf("item %s is inactive", item.Code)
	}

	request := &domain.InventoryRequest{
		RequestNumber:     fmt.Sprintf("REQ-%s", uuid.New().String()[:8]),
		WorkOrderID:       cmd.WorkOrderID,
		ItemID:            cmd.ItemID,
		QuantityRequested: cmd.Quantity,
		Urgency:           urgency,
		Status:            domain.StatusPending,
		ReviewNotes:       cmd.Notes,
		RequestedBy:       cmd.Actor.Username,
		RequestedAt:       time.Now(),
	}

	if err := h.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	publishTransition(ctx, h.events, EventRequestCreated, request)
	return request, nil
}

func publishTransition(ctx context.Context, events EventPublisher, event string, request *domain.InventoryRequest) {
	if events == nil {
		return
	}
	if err := events.PublishRequestTransition(ctx, event, request); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("event", event).
			Str("request_number", request.RequestNumber).
			Msg("Failed to publish request event")
	}
}
