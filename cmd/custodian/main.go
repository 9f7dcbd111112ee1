// Custodian — демон обслуживания индексов Postgres.
//
// По cron-расписанию выполняет фиксированную процедуру:
//   - удаляет invalid-индексы обслуживаемой таблицы
//   - перестраивает сконфигурированные индексы (REINDEX CONCURRENTLY)
//
// Несколько экземпляров работают по одному расписанию; обслуживание
// выполняет только лидер (advisory lock в Postgres).
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Custodian/internal/domain"
	"github.com/shaiso/Custodian/internal/leader"
	"github.com/shaiso/Custodian/internal/maintenance"
	"github.com/shaiso/Custodian/internal/mq"
	"github.com/shaiso/Custodian/internal/repo"
	"github.com/shaiso/Custodian/internal/scheduler"
	"github.com/shaiso/Custodian/internal/telemetry"
)

// Общий для всех процессов кластера ключ advisory lock.
const leaderLockKey int64 = 737373

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()

	nodeID := uuid.New()
	logger = telemetry.WithNodeID(logger, nodeID.String())
	logger.Info("starting custodian")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Конфигурация из окружения
	cfg, err := loadConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// RabbitMQ (опционально: без него события не публикуются)
	var publisher *mq.Publisher
	mqURL := os.Getenv("RABBITMQ_URL")
	if mqURL == "" {
		mqURL = mq.DefaultURL()
	}

	mqConn, err := mq.NewConnection(mqURL, logger)
	if err != nil {
		logger.Warn("RabbitMQ not available, cycle events disabled", "error", err)
	} else {
		defer mqConn.Close()

		if err := mq.SetupTopology(ctx, mqConn); err != nil {
			logger.Warn("failed to setup topology", "error", err)
		}

		publisher = mq.NewPublisher(mqConn, logger)
	}

	// Выборы лидера через advisory lock
	elector := leader.NewAdvisoryElector(pool, leaderLockKey, logger)
	defer elector.Resign(context.Background())

	// Исполнитель плана обслуживания
	executor := maintenance.NewExecutor(
		repo.NewMaintenanceRepo(pool),
		cfg.Timeout,
		logger,
	)

	// Планировщик
	sched, err := scheduler.New(scheduler.Config{
		Maintenance: cfg,
		Elector:     elector,
		Executor:    executor,
		Publisher:   publisher,
		NodeID:      nodeID,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Неожиданные сигналы логируются и игнорируются, loop продолжает жить.
	go watchUnexpectedSignals(ctx, logger)

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8080"
	if v := os.Getenv("CUSTODIAN_PORT"); v != "" {
		port = ":" + v
	}

	server := &http.Server{Addr: port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "port", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("http error", "error", err)
		cancel()
	}

	logger.Info("custodian stopped")
}

// loadConfig собирает конфигурацию обслуживания из переменных окружения
// поверх значений по умолчанию. Полная валидация (cron, часовой пояс)
// выполняется при создании планировщика.
func loadConfig() (domain.MaintenanceConfig, error) {
	cfg := domain.DefaultMaintenanceConfig()

	if v := os.Getenv("CUSTODIAN_SCHEMA"); v != "" {
		cfg.Schema = v
	}
	if v := os.Getenv("CUSTODIAN_TABLE"); v != "" {
		cfg.Table = v
	}
	if v := os.Getenv("CUSTODIAN_SCHEDULE"); v != "" {
		cfg.CronExpr = v
	}
	if v := os.Getenv("CUSTODIAN_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("CUSTODIAN_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return cfg, err
		}
		cfg.Timeout = timeout
	}
	if v := os.Getenv("CUSTODIAN_INDEXES"); v != "" {
		var indexes []string
		for _, name := range strings.Split(v, ",") {
			indexes = append(indexes, strings.TrimSpace(name))
		}
		cfg.Indexes = indexes
	}

	return cfg, cfg.Validate()
}

// watchUnexpectedSignals логирует сигналы, не относящиеся к shutdown.
func watchUnexpectedSignals(ctx context.Context, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigCh)

	for {
		select {
		case sig := <-sigCh:
			logger.Warn("ignoring unexpected signal", "signal", sig.String())
		case <-ctx.Done():
			return
		}
	}
}
