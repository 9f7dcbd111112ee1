// Package maintenance планирует и выполняет обслуживание индексов.
//
// Обслуживание — фиксированная узкая процедура, не произвольный DDL:
//
//  1. Удаление invalid-индексов обслуживаемой таблицы
//     (остатки прерванных конкурентных перестроений).
//  2. REINDEX INDEX CONCURRENTLY для каждого индекса конфигурации.
//
// Пакет разделён на две части с разными профилями риска:
//
//   - planner.go  — чистая генерация текста statements (без side effects)
//   - executor.go — выполнение плана против живой БД
//
// # Планирование
//
//	plan := maintenance.Plan(cfg)
//	// ровно 1 + len(cfg.Indexes) statements, порядок фиксированный
//
// Cleanup-statement — один DO-блок: множество invalid-индексов
// неизвестно вызывающему, сервер находит и удаляет их сам.
// Все идентификаторы квотируются и квалифицируются схемой —
// одноимённый индекс в чужой схеме не затрагивается.
//
// # Выполнение
//
//	executor := maintenance.NewExecutor(repo, cfg.Timeout, logger)
//	result := executor.Execute(ctx, plan)
//
// Каждый statement выполняется под собственным таймаутом. Первая
// ошибка прерывает остаток плана, результат называет упавший
// statement. REINDEX CONCURRENTLY не берёт блокировок, мешающих
// обычным INSERT/UPDATE/DELETE; конкурентный запуск двумя процессами
// падает с ошибкой блокировки, а не портит индекс.
//
// # Ошибки
//
// Пакет различает два вида ошибок statement:
//   - ErrStatementTimeout — превышен таймаут (прерван на стороне сервера)
//   - ErrStatementFailed  — БД отклонила statement
//
// Оба вида обрабатываются одинаково: остаток цикла отменяется,
// ошибка фиксируется в результате, loop продолжает жить.
package maintenance
