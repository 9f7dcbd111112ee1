// Package scheduler реализует loop периодического обслуживания.
//
// Scheduler — долгоживущий цикл: по cron-расписанию проверяет
// лидерство и, будучи лидером, выполняет цикл обслуживания индексов.
//
// Структура:
//   - scheduler.go — loop и его состояния (ARMED → RUNNING → ARMED)
//   - cron.go      — парсинг cron-выражений, часовые пояса,
//     вычисление задержки до следующего срабатывания
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Maintenance: cfg,
//	    Elector:     elector,
//	    Executor:    executor,
//	    Publisher:   publisher, // опционально
//	    NodeID:      nodeID,
//	    Logger:      logger,
//	})
//	if err != nil {
//	    // ошибка конфигурации: loop не запускается
//	}
//
//	if err := sched.Start(ctx); err != nil { ... }
//	defer sched.Stop()
//
// Leader Election:
//
// Scheduler не реализует выборы лидера самостоятельно — он спрашивает
// leader.Elector на каждом тике. Не-лидер пропускает цикл целиком:
// statements не планируются и не выполняются.
//
// Ошибки работающего loop (упавший statement, таймаут, недоступная БД)
// замкнуты внутри одного цикла: loop не завершается и не делает retry —
// естественный retry наступает на следующем срабатывании расписания.
package scheduler
