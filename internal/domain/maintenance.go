package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceConfig — конфигурация обслуживания индексов.
//
// Создаётся один раз при старте процесса, валидируется до запуска
// планировщика и не изменяется в runtime.
type MaintenanceConfig struct {
	// Schema — схема БД, в которой живёт обслуживаемая таблица.
	// По умолчанию: "public".
	Schema string

	// Table — базовая таблица, индексы которой обслуживаются.
	// Имя таблицы также служит префиксом при поиске invalid-индексов.
	// По умолчанию: "oban_jobs".
	Table string

	// Indexes — упорядоченный список индексов для перестроения.
	// Без дубликатов и пустых строк.
	Indexes []string

	// CronExpr — cron-выражение расписания.
	// Поддерживаются стандартные 5 полей и алиасы (@midnight, @daily, ...).
	// По умолчанию: "@midnight".
	CronExpr string

	// Timezone — IANA-идентификатор часового пояса расписания.
	// По умолчанию: "Etc/UTC".
	Timezone string

	// Timeout — таймаут одного statement. Строго положительный.
	// По умолчанию: 15 секунд.
	Timeout time.Duration
}

// DefaultMaintenanceConfig возвращает конфигурацию по умолчанию.
func DefaultMaintenanceConfig() MaintenanceConfig {
	return MaintenanceConfig{
		Schema:   "public",
		Table:    "oban_jobs",
		Indexes:  []string{"oban_jobs_args_index", "oban_jobs_meta_index"},
		CronExpr: "@midnight",
		Timezone: "Etc/UTC",
		Timeout:  15 * time.Second,
	}
}

// Validate проверяет инварианты полей конфигурации.
//
// Корректность CronExpr и Timezone проверяется отдельно
// в пакете scheduler (там живёт парсер).
func (c *MaintenanceConfig) Validate() error {
	if c.Schema == "" {
		return ErrEmptySchema
	}
	if c.Table == "" {
		return ErrEmptyTable
	}
	if c.Timeout <= 0 {
		return ErrNonPositiveTimeout
	}

	seen := make(map[string]bool, len(c.Indexes))
	for _, name := range c.Indexes {
		if name == "" {
			return ErrEmptyIndexName
		}
		if seen[name] {
			return ErrDuplicateIndex
		}
		seen[name] = true
	}

	return nil
}

// Statement — один SQL statement плана обслуживания.
//
// Name используется в логах, метриках и событиях для идентификации
// упавшего statement. SQL передаётся в БД как есть.
type Statement struct {
	Name string `json:"name"`
	SQL  string `json:"sql"`
}

// CycleResult — результат одного цикла обслуживания.
type CycleResult struct {
	// ID — уникальный идентификатор цикла.
	ID uuid.UUID `json:"id"`

	// Status — итоговый статус цикла.
	Status CycleStatus `json:"status"`

	// StartedAt — время начала цикла.
	StartedAt time.Time `json:"started_at"`

	// Duration — длительность цикла.
	Duration time.Duration `json:"duration"`

	// Executed — количество успешно выполненных statements.
	Executed int `json:"executed"`

	// FailedStatement — имя упавшего statement (пусто при успехе).
	FailedStatement string `json:"failed_statement,omitempty"`

	// Err — ошибка упавшего statement (nil при успехе).
	Err error `json:"-"`
}

// Failed возвращает true, если цикл завершился ошибкой.
func (r *CycleResult) Failed() bool {
	return r.Status == CycleStatusFailed
}
