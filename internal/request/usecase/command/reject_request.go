package command

import (
	"context"
	"fmt"

	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// RejectRequestCommand rejects a pending request; rejection notes are
// mandatory so the requester learns why
type RejectRequestCommand struct {
	Actor     auth.Actor
	RequestID uint
	Notes     string
}

// RejectRequestHandler handles the reject request command
type RejectRequestHandler struct {
	requests domain.RequestRepository
	authz    auth.Authorizer
	events   EventPublisher
}

func NewRejectRequestHandler(requests domain.RequestRepository, authz auth.Authorizer, events EventPublisher) *RejectRequestHandler {
	return &RejectRequestHandler{requests: requests, authz: authz, events: events}
}

// Handle executes the reject request command. No stock effect.
func (h *RejectRequestHandler) Handle(ctx context.Context, cmd RejectRequestCommand) (*domain.InventoryRequest, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermRejectRequest) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermRejectRequest)
	}

	if cmd.Notes == "" {
		return nil, apperr.Validationf("rejection notes are required")
	}

	rejected, err := h.requests.Reject(ctx, cmd.RequestID, cmd.Notes, cmd.Actor.Username)
	if err != nil {
		if apperr.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}

	publishTransition(ctx, h.events, EventRequestRejected, rejected)
	return rejected, nil
}
