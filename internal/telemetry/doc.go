// Package telemetry обеспечивает наблюдаемость демона.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики циклов обслуживания
//
// Метрики экспортируются на /metrics endpoint демона.
// Ошибки телеметрии никогда не влияют на корректность планировщика:
// метрики и логи — односторонний канал.
package telemetry
