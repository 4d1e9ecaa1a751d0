package command

import (
	"context"

	"github.com/fieldops/cmms-inventory/internal/request/domain"
)

// Request lifecycle event names, published after a committed transition
const (
	EventRequestCreated   = "request.created"
	EventRequestApproved  = "request.approved"
	EventRequestRejected  = "request.rejected"
	EventRequestDelivered = "request.delivered"
	EventRequestReceived  = "request.received"
	EventRequestCancelled = "request.cancelled"
)

// EventPublisher emits a request lifecycle event. Publishing failures never
// fail the transition; handlers log and move on.
type EventPublisher interface {
	PublishRequestTransition(ctx context.Context, event string, request *domain.InventoryRequest) error
}
