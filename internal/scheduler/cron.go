package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser — парсер cron-выражений.
// Стандартные 5 полей плюс алиасы (@midnight, @daily, @weekly, ...).
var cronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseSchedule парсит cron-выражение.
func ParseSchedule(cronExpr string) (cron.Schedule, error) {
	schedule, err := cronParser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSchedule, cronExpr, err)
	}
	return schedule, nil
}

// LoadTimezone резолвит IANA-идентификатор часового пояса.
// Неизвестный идентификатор — ошибка конфигурации, не runtime.
func LoadTimezone(name string) (*time.Location, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, name, err)
	}
	return loc, nil
}

// NextFireDelay вычисляет задержку до следующего срабатывания
// расписания, интерпретированного в заданном часовом поясе.
//
// Переходы на летнее/зимнее время обрабатывает cron-библиотека:
// время, попавшее в «пропавший» час, сдвигается на следующий
// валидный момент; время из повторившегося часа срабатывает один раз.
//
// Задержка строго положительная: Next всегда возвращает момент
// позже from.
func NextFireDelay(cronExpr, timezone string, now time.Time) (time.Duration, error) {
	schedule, err := ParseSchedule(cronExpr)
	if err != nil {
		return 0, err
	}

	loc, err := LoadTimezone(timezone)
	if err != nil {
		return 0, err
	}

	next := schedule.Next(now.In(loc))
	return next.Sub(now), nil
}

// ValidateSchedule проверяет, что выражение и часовой пояс валидны.
// Используется при валидации конфигурации до старта loop.
func ValidateSchedule(cronExpr, timezone string) error {
	if _, err := ParseSchedule(cronExpr); err != nil {
		return err
	}
	if _, err := LoadTimezone(timezone); err != nil {
		return err
	}
	return nil
}
