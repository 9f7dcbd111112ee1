// Package leader реализует выборы лидера среди одинаковых процессов.
//
// Несколько экземпляров демона работают по одному расписанию;
// обслуживание БД должен выполнять ровно один из них. Пакет отвечает
// только на вопрос «лидер ли я сейчас» — сериализация самих циклов
// остаётся за планировщиком.
//
// Реализация — advisory lock в Postgres (pg_try_advisory_lock на общем
// ключе). Это best-effort взаимное исключение: при кратком split-brain
// два процесса могут одновременно начать цикл, но statements написаны
// так, что конкурентное выполнение падает с ошибкой блокировки,
// а не портит данные.
//
// Неопределённость (БД недоступна, запрос упал) всегда трактуется
// как «не лидер»: пропущенный цикл безопасен, дублирующийся — нет.
package leader
