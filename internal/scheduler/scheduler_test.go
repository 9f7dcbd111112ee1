package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Custodian/internal/domain"
	"github.com/shaiso/Custodian/internal/maintenance"
)

// fakeElector — управляемый из теста Elector.
type fakeElector struct {
	mu      sync.Mutex
	answers []bool
	calls   int
}

func (e *fakeElector) IsLeader(_ context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	answer := e.answers[e.calls%len(e.answers)]
	e.calls++
	return answer
}

// fakeRunner записывает выполненные statements и следит,
// чтобы два statement не выполнялись одновременно.
type fakeRunner struct {
	mu       sync.Mutex
	executed []string
	inFlight int
	overlap  bool
}

func (r *fakeRunner) RunStatement(_ context.Context, sql string) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > 1 {
		r.overlap = true
	}
	r.executed = append(r.executed, sql)
	r.mu.Unlock()

	// Имитация работы — окно для обнаружения перекрытия циклов.
	time.Sleep(time.Millisecond)

	r.mu.Lock()
	r.inFlight--
	r.mu.Unlock()
	return nil
}

func (r *fakeRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.executed)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() domain.MaintenanceConfig {
	cfg := domain.DefaultMaintenanceConfig()
	cfg.Indexes = []string{"a", "b"}
	return cfg
}

func newTestScheduler(t *testing.T, elector *fakeElector, runner *fakeRunner) *Scheduler {
	t.Helper()

	cfg := testConfig()
	sched, err := New(Config{
		Maintenance: cfg,
		Elector:     elector,
		Executor:    maintenance.NewExecutor(runner, cfg.Timeout, testLogger()),
		NodeID:      uuid.New(),
		Logger:      testLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return sched
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.MaintenanceConfig)
		wantErr error
	}{
		{
			name:    "invalid cron",
			mutate:  func(c *domain.MaintenanceConfig) { c.CronExpr = "not a cron" },
			wantErr: ErrInvalidSchedule,
		},
		{
			name:    "unknown timezone",
			mutate:  func(c *domain.MaintenanceConfig) { c.Timezone = "Nowhere/Void" },
			wantErr: ErrInvalidTimezone,
		},
		{
			name:    "duplicate indexes",
			mutate:  func(c *domain.MaintenanceConfig) { c.Indexes = []string{"a", "a"} },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "empty index name",
			mutate:  func(c *domain.MaintenanceConfig) { c.Indexes = []string{"a", ""} },
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *domain.MaintenanceConfig) { c.Timeout = 0 },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			_, err := New(Config{
				Maintenance: cfg,
				Elector:     &fakeElector{answers: []bool{true}},
				Executor:    maintenance.NewExecutor(&fakeRunner{}, time.Second, testLogger()),
				NodeID:      uuid.New(),
				Logger:      testLogger(),
			})
			if err == nil {
				t.Fatal("expected configuration error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNew_StartsIdle(t *testing.T) {
	sched := newTestScheduler(t, &fakeElector{answers: []bool{true}}, &fakeRunner{})
	if got := sched.State(); got != StateIdle {
		t.Errorf("expected state %s before start, got %s", StateIdle, got)
	}
}

func TestRunCycle_NotLeader(t *testing.T) {
	// Не-лидер пропускает цикл целиком: statements не выполняются.
	runner := &fakeRunner{}
	sched := newTestScheduler(t, &fakeElector{answers: []bool{false}}, runner)

	sched.runCycle(context.Background())

	if runner.count() != 0 {
		t.Errorf("expected no statements executed, got %d", runner.count())
	}
}

func TestRunCycle_Leader(t *testing.T) {
	// Лидер выполняет весь план в порядке: cleanup, reindex a, reindex b.
	runner := &fakeRunner{}
	sched := newTestScheduler(t, &fakeElector{answers: []bool{true}}, runner)

	sched.runCycle(context.Background())

	if runner.count() != 3 {
		t.Fatalf("expected 3 statements, got %d", runner.count())
	}
	if !strings.Contains(runner.executed[0], "DO $$") {
		t.Errorf("expected cleanup statement first, got %q", runner.executed[0])
	}
	if !strings.Contains(runner.executed[1], `REINDEX INDEX CONCURRENTLY "public"."a"`) {
		t.Errorf("expected reindex of a second, got %q", runner.executed[1])
	}
	if !strings.Contains(runner.executed[2], `REINDEX INDEX CONCURRENTLY "public"."b"`) {
		t.Errorf("expected reindex of b third, got %q", runner.executed[2])
	}
}

func TestRunCycle_AlternatingLeadership(t *testing.T) {
	// 100 тиков с чередующимися ответами лидерства: циклы никогда
	// не перекрываются, каждый лидерский тик выполняет весь план.
	runner := &fakeRunner{}
	elector := &fakeElector{answers: []bool{true, false}}
	sched := newTestScheduler(t, elector, runner)

	for i := 0; i < 100; i++ {
		sched.runCycle(context.Background())
	}

	if elector.calls != 100 {
		t.Errorf("expected 100 leadership checks, got %d", elector.calls)
	}
	// 50 лидерских тиков по 3 statement
	if runner.count() != 150 {
		t.Errorf("expected 150 statements, got %d", runner.count())
	}
	if runner.overlap {
		t.Error("statements must never run concurrently")
	}
}

func TestStartStop(t *testing.T) {
	sched := newTestScheduler(t, &fakeElector{answers: []bool{false}}, &fakeRunner{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Loop взводит таймер асинхронно
	deadline := time.Now().Add(time.Second)
	for sched.State() != StateArmed {
		if time.Now().After(deadline) {
			t.Fatalf("expected state %s, got %s", StateArmed, sched.State())
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := sched.Start(ctx); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	sched.Stop()
	if got := sched.State(); got != StateStopped {
		t.Errorf("expected state %s after stop, got %s", StateStopped, got)
	}
}
