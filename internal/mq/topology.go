package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeMaintenance Exchange = "custodian.maintenance"
)

// Queues — имена очередей.
const (
	QueueCycles Queue = "maintenance.cycles"
)

// Routing keys.
const (
	RoutingKeyCycle RoutingKey = "cycle"
)

// SetupTopology декларирует обменник и очередь событий циклов.
//
// Потребителей у демона нет: очередь существует для внешних систем
// (алерты, аудит), которым интересны итоги обслуживания.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeMaintenance), // name
			"direct",                    // type
			true,                        // durable
			false,                       // auto-deleted
			false,                       // internal
			false,                       // no-wait
			nil,                         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeMaintenance, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueCycles), // name
			true,                // durable
			false,               // delete when unused
			false,               // exclusive
			false,               // no-wait
			nil,                 // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueCycles, err)
		}

		err = ch.QueueBind(
			string(QueueCycles),         // queue name
			string(RoutingKeyCycle),     // routing key
			string(ExchangeMaintenance), // exchange
			false,                       // no-wait
			nil,                         // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueCycles, ExchangeMaintenance, err)
		}

		return nil
	})
}
