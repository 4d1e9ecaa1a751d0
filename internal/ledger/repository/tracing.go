package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/fieldops/cmms-inventory/internal/ledger/domain"
)

var tracer = otel.Tracer("ledger-repository")

// GormStockRepositoryWithTracing wraps GormStockRepository with tracing on the
// mutating operations
type GormStockRepositoryWithTracing struct {
	*GormStockRepository
}

func NewGormStockRepositoryWithTracing(db *gorm.DB) *GormStockRepositoryWithTracing {
	return &GormStockRepositoryWithTracing{
		GormStockRepository: NewGormStockRepository(db),
	}
}

func (r *GormStockRepositoryWithTracing) Adjust(ctx context.Context, p domain.AdjustParams) (*domain.StockRecord, *domain.Movement, error) {
	ctx, span := tracer.Start(ctx, "repository.Adjust",
		trace.WithAttributes(
			attribute.Int("stock.item_id", int(p.ItemID)),
			attribute.String("stock.location_type", string(p.Location.Type)),
			attribute.Int("stock.location_id", int(p.Location.ID)),
			attribute.Int64("stock.new_quantity", p.NewQuantity),
		),
	)
	defer span.End()

	record, movement, err := r.GormStockRepository.Adjust(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}

	span.SetAttributes(attribute.Int64("movement.delta", movement.Quantity))
	return record, movement, nil
}

func (r *GormStockRepositoryWithTracing) Transfer(ctx context.Context, p domain.TransferParams) (*domain.Movement, error) {
	ctx, span := tracer.Start(ctx, "repository.Transfer",
		trace.WithAttributes(
			attribute.Int("stock.item_id", int(p.ItemID)),
			attribute.String("transfer.from_type", string(p.From.Type)),
			attribute.Int("transfer.from_id", int(p.From.ID)),
			attribute.String("transfer.to_type", string(p.To.Type)),
			attribute.Int("transfer.to_id", int(p.To.ID)),
			attribute.Int64("transfer.quantity", p.Quantity),
		),
	)
	defer span.End()

	movement, err := r.GormStockRepository.Transfer(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("movement.reference", movement.Reference))
	return movement, nil
}

func (r *GormStockRepositoryWithTracing) Receive(ctx context.Context, p domain.ReceiveParams) (*domain.Movement, error) {
	ctx, span := tracer.Start(ctx, "repository.Receive",
		trace.WithAttributes(
			attribute.Int("stock.item_id", int(p.ItemID)),
			attribute.String("stock.location_type", string(p.Location.Type)),
			attribute.Int("stock.location_id", int(p.Location.ID)),
			attribute.Int64("stock.quantity", p.Quantity),
		),
	)
	defer span.End()

	movement, err := r.GormStockRepository.Receive(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("movement.reference", movement.Reference))
	return movement, nil
}
