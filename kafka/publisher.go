package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	ledgerdomain "github.com/fieldops/cmms-inventory/internal/ledger/domain"
	requestdomain "github.com/fieldops/cmms-inventory/internal/request/domain"
	"github.com/fieldops/cmms-inventory/pkg/logger"
)

// Publisher wraps Kafka producer. It implements the EventPublisher contracts
// of the ledger and request usecases.
type Publisher struct {
	producer sarama.SyncProducer
	brokers  []string
}

// NewPublisher creates a new Kafka publisher
func NewPublisher(brokers []string) (*Publisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Retry.Max = 3
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.MaxMessageBytes = 1000000

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Logger.Info().
		Strs("brokers", brokers).
		Msg("Kafka publisher initialized")

	return &Publisher{
		producer: producer,
		brokers:  brokers,
	}, nil
}

// PublishMovementRecorded publishes a committed ledger movement with tracing
func (p *Publisher) PublishMovementRecorded(ctx context.Context, movement *ledgerdomain.Movement) error {
	event := StockMovementEvent{
		EventID:      fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		EventType:    EventTypeMovementRecorded,
		Reference:    movement.Reference,
		MovementType: movement.Type,
		ItemID:       movement.ItemID,
		Quantity:     movement.Quantity,
		LocationType: string(movement.LocationType),
		LocationID:   movement.LocationID,
		Reason:       movement.Reason,
		RequestID:    movement.RequestID,
		Actor:        movement.Actor,
		Timestamp:    time.Now(),
	}
	if movement.ToLocationType != nil {
		event.ToLocationType = string(*movement.ToLocationType)
	}
	if movement.ToLocationID != nil {
		event.ToLocationID = *movement.ToLocationID
	}

	key := fmt.Sprintf("item_%d", movement.ItemID)
	return p.publish(ctx, TopicStockMovements, EventTypeMovementRecorded, event.EventID, key, event,
		attribute.Int64("item.id", int64(movement.ItemID)),
		attribute.String("movement.type", movement.Type),
		attribute.String("movement.reference", movement.Reference),
	)
}

// PublishRequestTransition publishes a committed request state transition
func (p *Publisher) PublishRequestTransition(ctx context.Context, eventType string, request *requestdomain.InventoryRequest) error {
	event := RequestTransitionEvent{
		EventID:       fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		EventType:     eventType,
		RequestID:     request.ID,
		RequestNumber: request.RequestNumber,
		WorkOrderID:   request.WorkOrderID,
		ItemID:        request.ItemID,
		Status:        request.Status,
		Urgency:       request.Urgency,
		Timestamp:     time.Now(),
	}

	key := fmt.Sprintf("request_%d", request.ID)
	return p.publish(ctx, TopicRequestLifecycle, eventType, event.EventID, key, event,
		attribute.Int64("request.id", int64(request.ID)),
		attribute.String("request.number", request.RequestNumber),
		attribute.String("request.status", request.Status),
	)
}

// publish marshals the event, injects the trace context into the message
// headers and sends it through the sync producer
func (p *Publisher) publish(
	ctx context.Context,
	topic, eventType, eventID, key string,
	event interface{},
	attrs ...attribute.KeyValue,
) error {
	tracer := otel.Tracer("kafka-publisher")
	spanAttrs := append([]attribute.KeyValue{
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", topic),
		attribute.String("messaging.destination_kind", "topic"),
		attribute.String("event.type", eventType),
		attribute.String("event.id", eventID),
	}, attrs...)

	ctx, span := tracer.Start(ctx, "kafka.publish."+eventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(spanAttrs...),
	)
	defer span.End()

	eventBytes, err := json.Marshal(event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to marshal event")
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Inject trace context into Kafka headers
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(eventType)},
		{Key: []byte("event_id"), Value: []byte(eventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte(k),
			Value: []byte(v),
		})
	}

	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(eventBytes),
		Headers: headers,
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to send message")
		logger.Logger.Error().
			Err(err).
			Str("topic", topic).
			Str("event_type", eventType).
			Str("trace_id", span.SpanContext().TraceID().String()).
			Msg("Failed to publish event")
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	span.SetStatus(codes.Ok, "Event published successfully")

	logger.Logger.Info().
		Str("event_id", eventID).
		Str("event_type", eventType).
		Str("topic", topic).
		Int32("partition", partition).
		Int64("offset", offset).
		Str("trace_id", span.SpanContext().TraceID().String()).
		Msg("Event published")

	return nil
}

// Close closes the Kafka producer
func (p *Publisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
