package command

import (
	"context"
	"fmt"

	"github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/apperr"
	"github.com/fieldops/cmms-inventory/pkg/auth"
)

// ConfirmReceiptCommand acknowledges receipt of a delivered request
type ConfirmReceiptCommand struct {
	Actor     auth.Actor
	RequestID uint
	Notes     string
}

// ConfirmReceiptHandler handles the confirm receipt command
type ConfirmReceiptHandler struct {
	requests domain.RequestRepository
	authz    auth.Authorizer
	events   EventPublisher
}

func NewConfirmReceiptHandler(requests domain.RequestRepository, authz auth.Authorizer, events EventPublisher) *ConfirmReceiptHandler {
	return &ConfirmReceiptHandler{requests: requests, authz: authz, events: events}
}

// Handle executes the confirm receipt command. Confirming an already RECEIVED
// request fails the status guard.
func (h *ConfirmReceiptHandler) Handle(ctx context.Context, cmd ConfirmReceiptCommand) (*domain.InventoryRequest, error) {
	if !h.authz.CanPerform(cmd.Actor, auth.PermConfirmReceipt) {
		return nil, apperr.PermissionDeniedf("capability %s required", auth.PermConfirmReceipt)
	}

	received, err := h.requests.ConfirmReceipt(ctx, cmd.RequestID, cmd.Notes, cmd.Actor.Username)
	if err != nil {
		if apperr.IsBusiness(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to confirm receipt: %w", err)
	}

	publishTransition(ctx, h.events, EventRequestReceived, received)
	return received, nil
}
