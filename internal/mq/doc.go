// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, queue, binding
//   - publisher.go  — публикация событий циклов обслуживания
//
// Типы сообщений:
//   - maintenance.cycle.started — цикл обслуживания начался
//   - maintenance.cycle.result  — итог цикла (успех/ошибка/пропуск)
//
// Exchanges:
//   - custodian.maintenance — события обслуживания
//
// Публикация — fire-and-forget: демон не потребляет сообщения,
// ошибки публикации не влияют на корректность планировщика.
// Без RabbitMQ демон работает в режиме metrics/logs-only.
package mq
