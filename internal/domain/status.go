package domain

// CycleStatus — статус цикла обслуживания.
//
// Жизненный цикл:
//
//	(tick) → SKIPPED    — процесс не лидер, цикл пропущен
//	       → SUCCEEDED  — все statements плана выполнены
//	       → FAILED     — statement упал, остаток плана не выполнялся
//
// Все статусы терминальные: цикл не имеет промежуточных состояний,
// наблюдаемых извне.
type CycleStatus string

const (
	// CycleStatusSucceeded — все statements плана выполнены успешно.
	CycleStatusSucceeded CycleStatus = "SUCCEEDED"

	// CycleStatusFailed — один из statements завершился ошибкой или таймаутом.
	CycleStatusFailed CycleStatus = "FAILED"

	// CycleStatusSkipped — процесс не является лидером, обслуживание не выполнялось.
	CycleStatusSkipped CycleStatus = "SKIPPED"
)

// String возвращает строковое представление CycleStatus.
func (s CycleStatus) String() string {
	return string(s)
}
