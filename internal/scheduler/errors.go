package scheduler

import "errors"

// Ошибки конфигурации. Фатальны на старте: loop не переходит в Armed.
var (
	// ErrInvalidSchedule — cron-выражение не парсится.
	ErrInvalidSchedule = errors.New("invalid cron schedule")

	// ErrInvalidTimezone — неизвестный IANA-идентификатор часового пояса.
	ErrInvalidTimezone = errors.New("invalid timezone")

	// ErrInvalidConfig — нарушен инвариант конфигурации
	// (индексы, таймаут, схема).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAlreadyStarted — loop уже запущен.
	ErrAlreadyStarted = errors.New("scheduler already started")
)
