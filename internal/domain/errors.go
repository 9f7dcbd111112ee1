package domain

import "errors"

// Ошибки валидации конфигурации.
// Любая из них фатальна на старте: планировщик не запускается.
var (
	// ErrEmptySchema — не задана схема БД.
	ErrEmptySchema = errors.New("schema is empty")

	// ErrEmptyTable — не задана обслуживаемая таблица.
	ErrEmptyTable = errors.New("table is empty")

	// ErrNonPositiveTimeout — таймаут statement должен быть строго положительным.
	ErrNonPositiveTimeout = errors.New("timeout must be positive")

	// ErrEmptyIndexName — список индексов содержит пустую строку.
	ErrEmptyIndexName = errors.New("index name is empty")

	// ErrDuplicateIndex — список индексов содержит дубликат.
	ErrDuplicateIndex = errors.New("duplicate index name")
)
