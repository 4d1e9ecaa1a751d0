package command

import (
	"context"
	"fmt"

	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// CancelRequestCommand abandons a pending or approved request. Cancelling an
// approved request returns the withdrawn stock to its source location.
type CancelRequestCommand struct {
	Actor     auth.Actor
	RequestID uint
	Notes     string
}

// CancelRequestHandler handles the cancel request command
type CancelRequestHandler struct {
	requests domain.RequestRepository
	authz    auth.Authorizer
	events   EventPublisher
}

func NewCancelRequestHandler(requests domain.RequestRepository, authz auth.Authorizer, events EventPublisher) *CancelRequestHandler {
	return &CancelRequestHandler{requests: requests, authz: authz, events: events}
}

// Handle executes the cancel request command
func (h *CancelRequestHandler) Handle(ctx context.Context, cmd CancelRequestCommand) (*domain.InventoryRequest, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermCancelRequest) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermCancelRequest)
	}

	if cmd.Notes == "" {
		return nil, apperr.Validationf("cancellation notes are required")
	}

	cancelled, err := h.requests.Cancel(ctx, cmd.RequestID, cmd.Notes, cmd.Actor.Username)
	if err != nil {
		if apperr.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cancel request: %w", err)
	}

	publishTransition(ctx, h.events, EventRequestCancelled, cancelled)
	return cancelled, nil
}
