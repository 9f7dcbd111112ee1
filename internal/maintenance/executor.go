package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Custodian/internal/domain"
	"github.com/shaiso/Custodian/internal/telemetry"
)

// StatementRunner выполняет один SQL statement против БД.
//
// Реализация: repo.MaintenanceRepo. Отмена контекста обязана
// прерывать statement на стороне сервера.
type StatementRunner interface {
	RunStatement(ctx context.Context, sql string) error
}

// Executor выполняет план обслуживания.
//
// Statements выполняются строго в порядке плана, каждый под своим
// таймаутом. Первая ошибка (или таймаут) прерывает остаток плана:
// упавший cleanup не должен маскироваться продолжением в rebuilds,
// а ошибка одного REINDEX не должна тонуть в попытке следующего.
type Executor struct {
	runner  StatementRunner
	timeout time.Duration
	logger  *slog.Logger
}

// NewExecutor создаёт новый Executor.
//
// timeout — таймаут одного statement, строго положительный
// (проверяется при валидации конфигурации).
func NewExecutor(runner StatementRunner, timeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		runner:  runner,
		timeout: timeout,
		logger:  logger,
	}
}

// Execute выполняет план и возвращает результат цикла.
//
// Результат всегда корректен: при ошибке он называет упавший
// statement и количество успешно выполненных до него.
func (e *Executor) Execute(ctx context.Context, plan []domain.Statement) domain.CycleResult {
	result := domain.CycleResult{
		ID:        uuid.New(),
		Status:    domain.CycleStatusSucceeded,
		StartedAt: time.Now(),
	}

	logger := telemetry.WithCycleID(e.logger, result.ID.String())

	for _, st := range plan {
		start := time.Now()
		err := e.runStatement(ctx, st)
		elapsed := time.Since(start)

		if err != nil {
			if errors.Is(err, ErrStatementTimeout) {
				telemetry.ObserveStatement(telemetry.StatementResultTimeout)
			} else {
				telemetry.ObserveStatement(telemetry.StatementResultError)
			}

			logger.Error("maintenance statement failed, aborting cycle",
				"statement", st.Name,
				"elapsed", elapsed,
				"error", err,
			)

			result.Status = domain.CycleStatusFailed
			result.FailedStatement = st.Name
			result.Err = err
			break
		}

		telemetry.ObserveStatement(telemetry.StatementResultOK)
		result.Executed++

		logger.Debug("maintenance statement completed",
			"statement", st.Name,
			"elapsed", elapsed,
		)
	}

	result.Duration = time.Since(result.StartedAt)
	return result
}

// runStatement выполняет один statement под таймаутом.
func (e *Executor) runStatement(ctx context.Context, st domain.Statement) error {
	stCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	err := e.runner.RunStatement(stCtx, st.SQL)
	if err == nil {
		return nil
	}

	// Различаем таймаут и отказ БД: таймаут виден по дедлайну
	// контекста statement (pgx оборачивает ctx-ошибку по-разному
	// в зависимости от фазы выполнения).
	if stCtx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s: %v", ErrStatementTimeout, st.Name, e.timeout, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrStatementFailed, st.Name, err)
}
