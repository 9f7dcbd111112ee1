package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shaiso/Custodian/internal/domain"
)

// scriptedRunner выполняет statements по сценарию: имя → поведение.
type scriptedRunner struct {
	executed []string
	failOn   map[string]error
	blockOn  map[string]bool // блокироваться до отмены контекста
}

func (r *scriptedRunner) RunStatement(ctx context.Context, sql string) error {
	r.executed = append(r.executed, sql)

	for marker, block := range r.blockOn {
		if block && strings.Contains(sql, marker) {
			<-ctx.Done()
			return ctx.Err()
		}
	}
	for marker, err := range r.failOn {
		if strings.Contains(sql, marker) {
			return err
		}
	}
	return nil
}

func testPlan() []domain.Statement {
	cfg := domain.DefaultMaintenanceConfig()
	cfg.Indexes = []string{"a", "b"}
	return Plan(cfg)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecute_AllSucceed(t *testing.T) {
	runner := &scriptedRunner{}
	executor := NewExecutor(runner, time.Second, discardLogger())

	result := executor.Execute(context.Background(), testPlan())

	if result.Status != domain.CycleStatusSucceeded {
		t.Fatalf("expected SUCCEEDED, got %s (err: %v)", result.Status, result.Err)
	}
	if result.Executed != 3 {
		t.Errorf("expected 3 executed statements, got %d", result.Executed)
	}
	if result.FailedStatement != "" {
		t.Errorf("expected no failed statement, got %q", result.FailedStatement)
	}
	if len(runner.executed) != 3 {
		t.Errorf("expected 3 runner calls, got %d", len(runner.executed))
	}
}

func TestExecute_FirstFailureAborts(t *testing.T) {
	// Упавший rebuild индекса "a" останавливает план:
	// rebuild "b" не выполняется, ошибка атрибутирована "a".
	runner := &scriptedRunner{
		failOn: map[string]error{`"public"."a"`: errors.New("deadlock detected")},
	}
	executor := NewExecutor(runner, time.Second, discardLogger())

	result := executor.Execute(context.Background(), testPlan())

	if result.Status != domain.CycleStatusFailed {
		t.Fatalf("expected FAILED, got %s", result.Status)
	}
	if result.FailedStatement != "reindex_a" {
		t.Errorf("expected failure attributed to reindex_a, got %q", result.FailedStatement)
	}
	if result.Executed != 1 {
		t.Errorf("expected 1 executed statement before failure, got %d", result.Executed)
	}
	if !errors.Is(result.Err, ErrStatementFailed) {
		t.Errorf("expected ErrStatementFailed, got %v", result.Err)
	}
	// cleanup + упавший reindex_a; reindex_b не выполнялся
	if len(runner.executed) != 2 {
		t.Errorf("expected 2 runner calls, got %d", len(runner.executed))
	}
}

func TestExecute_FailedCleanupAbortsRebuilds(t *testing.T) {
	// Упавший cleanup не маскируется продолжением в rebuilds.
	runner := &scriptedRunner{
		failOn: map[string]error{"DO $$": errors.New("permission denied")},
	}
	executor := NewExecutor(runner, time.Second, discardLogger())

	result := executor.Execute(context.Background(), testPlan())

	if result.Status != domain.CycleStatusFailed {
		t.Fatalf("expected FAILED, got %s", result.Status)
	}
	if result.FailedStatement != "drop_invalid_indexes" {
		t.Errorf("expected failure attributed to cleanup, got %q", result.FailedStatement)
	}
	if len(runner.executed) != 1 {
		t.Errorf("expected only cleanup attempted, got %d calls", len(runner.executed))
	}
}

func TestExecute_Timeout(t *testing.T) {
	// Statement дольше таймаута — timeout-ошибка, остаток плана отменён.
	runner := &scriptedRunner{
		blockOn: map[string]bool{`"public"."a"`: true},
	}
	executor := NewExecutor(runner, 50*time.Millisecond, discardLogger())

	start := time.Now()
	result := executor.Execute(context.Background(), testPlan())
	elapsed := time.Since(start)

	if result.Status != domain.CycleStatusFailed {
		t.Fatalf("expected FAILED, got %s", result.Status)
	}
	if !errors.Is(result.Err, ErrStatementTimeout) {
		t.Errorf("expected ErrStatementTimeout, got %v", result.Err)
	}
	if result.FailedStatement != "reindex_a" {
		t.Errorf("expected failure attributed to reindex_a, got %q", result.FailedStatement)
	}
	if len(runner.executed) != 2 {
		t.Errorf("expected reindex_b not attempted, got %d calls", len(runner.executed))
	}
	// Таймаут сработал, а не завис
	if elapsed > time.Second {
		t.Errorf("expected timeout around 50ms, took %v", elapsed)
	}
}
