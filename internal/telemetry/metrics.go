package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/shaiso/Custodian/internal/domain"
)

// Prometheus-метрики планировщика обслуживания.
//
// Экспортируются на /metrics endpoint демона.
var (
	cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_cycles_total",
		Help: "Total maintenance cycles by outcome (succeeded, failed, skipped)",
	}, []string{"outcome"})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "custodian_cycle_duration_seconds",
		Help:    "Duration of maintenance cycles",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	statementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "custodian_statements_total",
		Help: "Total maintenance statements by result (ok, error, timeout)",
	}, []string{"result"})

	leaderGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "custodian_leader",
		Help: "1 if this process currently holds leadership, 0 otherwise",
	})
)

// Statement results.
const (
	StatementResultOK      = "ok"
	StatementResultError   = "error"
	StatementResultTimeout = "timeout"
)

// ObserveCycle записывает итог цикла обслуживания.
func ObserveCycle(status domain.CycleStatus, d time.Duration) {
	switch status {
	case domain.CycleStatusSucceeded:
		cyclesTotal.WithLabelValues("succeeded").Inc()
	case domain.CycleStatusFailed:
		cyclesTotal.WithLabelValues("failed").Inc()
	case domain.CycleStatusSkipped:
		cyclesTotal.WithLabelValues("skipped").Inc()
	}

	// Для пропущенных циклов длительность не информативна.
	if status != domain.CycleStatusSkipped {
		cycleDuration.Observe(d.Seconds())
	}
}

// ObserveStatement записывает результат одного statement.
func ObserveStatement(result string) {
	statementsTotal.WithLabelValues(result).Inc()
}

// SetLeader обновляет gauge лидерства.
func SetLeader(isLeader bool) {
	if isLeader {
		leaderGauge.Set(1)
	} else {
		leaderGauge.Set(0)
	}
}
