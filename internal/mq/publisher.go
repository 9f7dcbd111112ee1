package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Custodian/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeCycleStarted MessageType = "maintenance.cycle.started"
	MessageTypeCycleResult  MessageType = "maintenance.cycle.result"
)

// Publisher публикует события циклов обслуживания в RabbitMQ.
//
// Односторонний канал: демон никогда не читает ответы, ошибки
// публикации логируются вызывающим и на планирование не влияют.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// CycleStartedPayload — payload события начала цикла.
type CycleStartedPayload struct {
	NodeID     uuid.UUID `json:"node_id"`
	Statements int       `json:"statements"`
}

// CycleResultPayload — payload итога цикла.
type CycleResultPayload struct {
	NodeID          uuid.UUID          `json:"node_id"`
	CycleID         uuid.UUID          `json:"cycle_id"`
	Status          domain.CycleStatus `json:"status"`
	Executed        int                `json:"executed"`
	FailedStatement string             `json:"failed_statement,omitempty"`
	Error           string             `json:"error,omitempty"`
	DurationMs      int64              `json:"duration_ms"`
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// PublishCycleStarted публикует событие начала цикла обслуживания.
func (p *Publisher) PublishCycleStarted(ctx context.Context, nodeID uuid.UUID, statements int) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeCycleStarted,
		Payload:   CycleStartedPayload{NodeID: nodeID, Statements: statements},
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeMaintenance, RoutingKeyCycle, msg)
}

// PublishCycleResult публикует итог цикла обслуживания
// (успех, ошибка с именем упавшего statement, или пропуск не-лидером).
func (p *Publisher) PublishCycleResult(ctx context.Context, nodeID uuid.UUID, result *domain.CycleResult) error {
	payload := CycleResultPayload{
		NodeID:          nodeID,
		CycleID:         result.ID,
		Status:          result.Status,
		Executed:        result.Executed,
		FailedStatement: result.FailedStatement,
		DurationMs:      result.Duration.Milliseconds(),
	}
	if result.Err != nil {
		payload.Error = result.Err.Error()
	}

	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeCycleResult,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	return p.Publish(ctx, ExchangeMaintenance, RoutingKeyCycle, msg)
}
