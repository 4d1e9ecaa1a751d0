package command

import (
	"context"
	"fmt"

	locdomain "github.com/fieldops/cmms-inventory/internal/location/domain"
	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// ApproveRequestCommand approves a pending request, naming the source location
// the stock leaves from
type ApproveRequestCommand struct {
	Actor            auth.Actor
	RequestID        uint
	ApprovedQuantity int64
	Source           locdomain.LocationRef
	Notes            string
}

// ApproveRequestHandler handles the approve request command
type ApproveRequestHandler struct {
	requests  domain.RequestRepository
	locations locdomain.Resolver
	authz     auth.Authorizer
	events    EventPublisher
}

func NewApproveRequestHandler(
	requests domain.RequestRepository,
	locations locdomain.Resolver,
	authz auth.Authorizer,
	events EventPublisher,
) *ApproveRequestHandler {
	return &ApproveRequestHandler{requests: requests, locations: locations, authz: authz, events: events}
}

// Handle executes the approval. The stock withdrawal and the status flip
// commit together; InsufficientStock leaves the request PENDING with no
// movement written.
func (h *ApproveRequestHandler) Handle(ctx context.Context, cmd ApproveRequestCommand) (*domain.InventoryRequest, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermApproveRequest) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermApproveRequest)
	}

	if cmd.ApprovedQuantity <= 0 {
		return nil, apperr.Validationf("approved quantity must be greater than 0, got %d", cmd.ApprovedQuantity)
	}
	if !cmd.Source.Type.Valid() {
		return nil, apperr.Validationf("unknown location type %q", cmd.Source.Type)
	}

	request, err := h.requests.FindByID(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if cmd.ApprovedQuantity > request.QuantityRequested {
		return nil, apperr.Validationf("approved quantity %d exceeds requested quantity %d",
			cmd.ApprovedQuantity, request.QuantityRequested)
	}

	exists, err := h.locations.Exists(ctx, cmd.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source location: %w", err)
	}
	if !exists {
		return nil, apperr.NotFoundf("location %s/%d", cmd.Source.Type, cmd.Source.ID)
	}

	approved, err := h.requests.Approve(ctx, cmd.RequestID, cmd.ApprovedQuantity, cmd.Source, cmd.Notes, cmd.Actor.Username)
	if err != nil {
		if apperr.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}

	publishTransition(ctx, h.events, EventRequestApproved, approved)
	return approved, nil
}
