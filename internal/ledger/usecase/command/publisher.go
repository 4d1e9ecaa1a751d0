package command

import (
	"context"

	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
)

// EventPublisher emits a ledger event after a committed mutation. Publishing
// failures never fail the mutation; handlers log and move on.
type EventPublisher interface {
	PublishMovementRecorded(ctx context.Context, movement *domain.Movement) error
}
