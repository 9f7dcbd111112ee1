package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MaintenanceRepo выполняет maintenance/DDL statements против живой БД.
//
// Statements приходят готовым текстом из планировщика (REINDEX, DO-блоки)
// и выполняются как есть. Отмена контекста прерывает statement на стороне
// сервера: pgx отправляет cancel request при истечении дедлайна.
type MaintenanceRepo struct {
	pool *pgxpool.Pool
}

// NewMaintenanceRepo создаёт новый MaintenanceRepo.
func NewMaintenanceRepo(pool *pgxpool.Pool) *MaintenanceRepo {
	return &MaintenanceRepo{pool: pool}
}

// RunStatement выполняет один statement.
//
// REINDEX CONCURRENTLY не может выполняться внутри транзакции,
// поэтому statement отправляется напрямую через pool.Exec
// (implicit single-statement mode, без явного BEGIN).
func (r *MaintenanceRepo) RunStatement(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("exec statement: %w", err)
	}
	return nil
}
