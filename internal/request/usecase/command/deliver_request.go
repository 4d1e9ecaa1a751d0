package command

import (
	"context"
	"fmt"

	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// DeliverRequestCommand hands custody of an approved request to the requester
type DeliverRequestCommand struct {
	Actor     auth.Actor
	RequestID uint
	Notes     string
}

// DeliverRequestHandler handles the deliver request command
type DeliverRequestHandler struct {
	requests domain.RequestRepository
	authz    auth.Authorizer
	events   EventPublisher
}

func NewDeliverRequestHandler(requests domain.RequestRepository, authz auth.Authorizer, events EventPublisher) *DeliverRequestHandler {
	return &DeliverRequestHandler{requests: requests, authz: authz, events: events}
}

// Handle executes the deliver request command. The stock already moved at
// approval; this records custody only.
func (h *DeliverRequestHandler) Handle(ctx context.Context, cmd DeliverRequestCommand) (*domain.InventoryRequest, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermDeliverRequest) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermDeliverRequest)
	}

	delivered, err := h.requests.Deliver(ctx, cmd.RequestID, cmd.Notes, cmd.Actor.Username)
	if err != nil {
		if apperr.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to deliver request: %w", err)
	}

	publishTransition(ctx, h.events, EventRequestDelivered, delivered)
	return delivered, nil
}
