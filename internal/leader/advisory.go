package leader

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Таймаут одного запроса к БД. IsLeader не имеет права зависать:
// медленный ответ эквивалентен «не лидер».
const queryTimeout = 5 * time.Second

// AdvisoryElector — выборы лидера через Postgres advisory lock.
//
// pg_try_advisory_lock — session-level: блокировка живёт, пока жива
// сессия, которая её взяла. Поэтому AdvisoryElector закрепляет за собой
// отдельное соединение из пула и держит его всё время лидерства —
// переиспользование соединения пулом молча потеряло бы блокировку.
//
// Потеря соединения (ping не прошёл) трактуется как потеря лидерства:
// соединение возвращается в пул, следующий IsLeader попытается взять
// блокировку заново.
type AdvisoryElector struct {
	pool   *pgxpool.Pool
	key    int64
	logger *slog.Logger

	mu   sync.Mutex
	conn *pgxpool.Conn
	held bool
}

// NewAdvisoryElector создаёт новый AdvisoryElector.
//
// key — общий для всех процессов кластера ключ advisory lock.
func NewAdvisoryElector(pool *pgxpool.Pool, key int64, logger *slog.Logger) *AdvisoryElector {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdvisoryElector{
		pool:   pool,
		key:    key,
		logger: logger,
	}
}

// IsLeader пытается стать лидером или подтвердить лидерство.
func (e *AdvisoryElector) IsLeader(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Уже лидер — проверяем, что сессия с блокировкой жива.
	if e.held {
		if err := e.conn.Ping(ctx); err != nil {
			e.logger.Warn("leader connection lost, resigning leadership", "error", err)
			e.releaseLocked()
			return false
		}
		return true
	}

	// Не лидер — пробуем взять блокировку на выделенном соединении.
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		e.logger.Warn("failed to acquire connection for leader election", "error", err)
		return false
	}

	var ok bool
	if err := conn.QueryRow(ctx, "select pg_try_advisory_lock($1)", e.key).Scan(&ok); err != nil {
		e.logger.Warn("advisory lock query failed", "error", err)
		conn.Release()
		return false
	}

	if !ok {
		// Лидер — другой процесс.
		conn.Release()
		return false
	}

	e.conn = conn
	e.held = true
	e.logger.Info("acquired leadership", "lock_key", e.key)
	return true
}

// Resign освобождает блокировку и выделенное соединение.
// Вызывается при graceful shutdown. Безопасен, если лидерства нет.
func (e *AdvisoryElector) Resign(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.held {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := e.conn.Exec(ctx, "select pg_advisory_unlock($1)", e.key); err != nil {
		e.logger.Warn("failed to release advisory lock", "error", err)
	}
	e.releaseLocked()
	e.logger.Info("resigned leadership", "lock_key", e.key)
}

// releaseLocked возвращает соединение в пул. Вызывается под e.mu.
func (e *AdvisoryElector) releaseLocked() {
	if e.conn != nil {
		e.conn.Release()
		e.conn = nil
	}
	e.held = false
}
