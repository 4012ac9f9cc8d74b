// Package kafka publica los eventos del motor de stock en Kafka (segmentio/kafka-go).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appinv "github.com/jhoicas/stock-engine/internal/application/inventory"
)

// EventMovementCompleted tipo del evento publicado tras el commit de un movimiento.
const EventMovementCompleted = "stock.movement.completed"

var _ appinv.EventPublisher = (*MovementPublisher)(nil)

// Producer mínimo que necesita el publicador (*kafka.Writer lo cumple).
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MovementPublisher serializa MovementEvent a JSON y lo escribe con key = item|ubicación|lote,
// de modo que los eventos de un mismo saldo conservan el orden dentro de la partición.
type MovementPublisher struct {
	producer Producer
	topic    string
	tracer   trace.Tracer
}

// NewWriter construye el writer de kafka-go con la configuración de baja latencia.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		BatchSize:              100,
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewMovementPublisher construye el publicador sobre un Producer.
func NewMovementPublisher(producer Producer, topic string) *MovementPublisher {
	return &MovementPublisher{
		producer: producer,
		topic:    topic,
		tracer:   otel.Tracer("github.com/jhoicas/stock-engine/internal/infrastructure/kafka"),
	}
}

// PublishMovementCompleted escribe el evento; el contexto de traza viaja en los headers.
func (p *MovementPublisher) PublishMovementCompleted(ctx context.Context, evt appinv.MovementEvent) error {
	ctx, span := p.tracer.Start(ctx, "kafka.publish "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystemKafka,
			semconv.MessagingDestinationName(p.topic),
			attribute.String("movement.id", evt.Movement.ID),
		),
	)
	defer span.End()

	payload, err := json.Marshal(NewMovementMessage(evt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("serializar evento %s: %w", evt.Movement.ID, err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []kafka.Header{{Key: "event_type", Value: []byte(EventMovementCompleted)}}
	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	msg := kafka.Message{
		Key:     []byte(evt.Stock.Key().String()),
		Value:   payload,
		Headers: headers,
		Time:    evt.OccurredAt,
	}
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("publicar evento %s: %w", evt.Movement.ID, err)
	}
	return nil
}

// Close libera el producer.
func (p *MovementPublisher) Close() error {
	return p.producer.Close()
}
