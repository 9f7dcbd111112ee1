package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/shaiso/Custodian/internal/domain"
	"github.com/shaiso/Custodian/internal/leader"
	"github.com/shaiso/Custodian/internal/maintenance"
	"github.com/shaiso/Custodian/internal/mq"
	"github.com/shaiso/Custodian/internal/telemetry"
)

// State — состояние loop планировщика.
//
// Жизненный цикл:
//
//	IDLE → ARMED → RUNNING → ARMED → ... → STOPPED
//
// STOPPED достижим из ARMED и RUNNING по внешнему сигналу остановки.
type State string

const (
	// StateIdle — создан, но не запущен.
	StateIdle State = "IDLE"

	// StateArmed — таймер взведён, ожидание следующего срабатывания.
	StateArmed State = "ARMED"

	// StateRunning — тик сработал, выполняется проверка лидерства
	// и цикл обслуживания.
	StateRunning State = "RUNNING"

	// StateStopped — остановлен, тиков больше не будет.
	StateStopped State = "STOPPED"
)

// Scheduler — долгоживущий loop обслуживания индексов.
//
// На каждом срабатывании расписания спрашивает Elector; если процесс —
// лидер, планирует и выполняет цикл обслуживания синхронно. Второй тик
// не может начаться, пока идёт текущий цикл: перевзвод таймера
// происходит только после завершения цикла, от текущего времени
// (не от прошлого запланированного). Медленный или упавший цикл
// никогда не приводит к пропуску перевзвода или падению loop.
//
// Состояние Scheduler принадлежит исключительно его loop и между
// процессами не разделяется: свежий процесс просто вычисляет следующее
// срабатывание от «сейчас».
type Scheduler struct {
	cfg      domain.MaintenanceConfig
	elector  leader.Elector
	executor *maintenance.Executor
	// publisher опционален: nil — события в MQ не публикуются.
	publisher *mq.Publisher
	logger    *slog.Logger
	nodeID    uuid.UUID

	schedule cron.Schedule
	location *time.Location

	mu      sync.RWMutex
	state   State
	started bool

	cancel context.CancelFunc
	done   chan struct{}
}

// Config — конфигурация Scheduler.
type Config struct {
	// Maintenance — конфигурация обслуживания (индексы, расписание,
	// таймаут, часовой пояс, схема).
	Maintenance domain.MaintenanceConfig

	// Elector — выборы лидера.
	Elector leader.Elector

	// Executor — исполнитель плана обслуживания.
	Executor *maintenance.Executor

	// Publisher — публикация событий циклов в MQ (опционально).
	Publisher *mq.Publisher

	// NodeID — идентификатор процесса в кластере.
	NodeID uuid.UUID

	// Logger
	Logger *slog.Logger
}

// New создаёт Scheduler и валидирует конфигурацию.
//
// Любая ошибка конфигурации (невалидный cron, неизвестный часовой
// пояс, нарушенные инварианты индексов/таймаута) фатальна: loop
// никогда не перейдёт в ARMED.
func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Maintenance.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	schedule, err := ParseSchedule(cfg.Maintenance.CronExpr)
	if err != nil {
		return nil, err
	}

	location, err := LoadTimezone(cfg.Maintenance.Timezone)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cfg:       cfg.Maintenance,
		elector:   cfg.Elector,
		executor:  cfg.Executor,
		publisher: cfg.Publisher,
		logger:    telemetry.WithNodeID(logger, cfg.NodeID.String()),
		nodeID:    cfg.NodeID,
		schedule:  schedule,
		location:  location,
		state:     StateIdle,
	}, nil
}

// Start запускает loop. Возвращает ошибку при повторном запуске.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(loopCtx)

	s.logger.Info("scheduler started",
		"schedule", s.cfg.CronExpr,
		"timezone", s.cfg.Timezone,
		"indexes", len(s.cfg.Indexes),
	)
	return nil
}

// Stop останавливает loop и дожидается его завершения.
// Взведённый таймер отменяется; новых тиков не будет.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}

// State возвращает текущее состояние loop.
func (s *Scheduler) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Scheduler) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// loop — основной цикл: взвести таймер → дождаться тика →
// выполнить цикл → взвести заново.
func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	for {
		now := time.Now()
		next := s.schedule.Next(now.In(s.location))
		delay := next.Sub(now)

		s.setState(StateArmed)
		s.logger.Debug("armed for next fire", "next_fire", next, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
			s.setState(StateRunning)
			s.runCycle(ctx)

		case <-ctx.Done():
			timer.Stop()
			s.setState(StateStopped)
			return
		}
	}
}

// runCycle выполняет один цикл: проверка лидерства → план → выполнение.
//
// Любой исход (успех, ошибка, пропуск) фиксируется в телеметрии
// и не влияет на перевзвод: loop продолжает жить.
func (s *Scheduler) runCycle(ctx context.Context) {
	isLeader := s.elector.IsLeader(ctx)
	telemetry.SetLeader(isLeader)

	if !isLeader {
		result := domain.CycleResult{
			ID:        uuid.New(),
			Status:    domain.CycleStatusSkipped,
			StartedAt: time.Now(),
		}
		telemetry.ObserveCycle(result.Status, 0)
		s.logger.Debug("not leader, skipping maintenance cycle", "cycle_id", result.ID)
		s.publishResult(ctx, &result)
		return
	}

	plan := maintenance.Plan(s.cfg)
	s.publishStarted(ctx, len(plan))

	result := s.executor.Execute(ctx, plan)
	telemetry.ObserveCycle(result.Status, result.Duration)

	if result.Failed() {
		s.logger.Error("maintenance cycle failed",
			"cycle_id", result.ID,
			"failed_statement", result.FailedStatement,
			"executed", result.Executed,
			"duration", result.Duration,
			"error", result.Err,
		)
	} else {
		s.logger.Info("maintenance cycle completed",
			"cycle_id", result.ID,
			"executed", result.Executed,
			"duration", result.Duration,
		)
	}

	s.publishResult(ctx, &result)
}

// publishStarted публикует событие начала цикла.
// Ошибки публикации не влияют на планирование.
func (s *Scheduler) publishStarted(ctx context.Context, statements int) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCycleStarted(ctx, s.nodeID, statements); err != nil {
		s.logger.Warn("failed to publish cycle started event", "error", err)
	}
}

// publishResult публикует итог цикла.
func (s *Scheduler) publishResult(ctx context.Context, result *domain.CycleResult) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCycleResult(ctx, s.nodeID, result); err != nil {
		s.logger.Warn("failed to publish cycle result event",
			"cycle_id", result.ID,
			"error", err,
		)
	}
}
