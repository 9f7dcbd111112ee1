package maintenance

import "errors"

// Ошибки выполнения плана обслуживания.
var (
	// ErrStatementTimeout — statement превысил таймаут.
	// Остаток плана в этом цикле не выполняется; retry не делается —
	// естественный retry наступит на следующем тике расписания.
	ErrStatementTimeout = errors.New("statement timeout")

	// ErrStatementFailed — БД отклонила statement
	// (конфликт блокировок, права, синтаксис).
	ErrStatementFailed = errors.New("statement failed")
)
