package leader

import "context"

// Elector отвечает на вопрос «является ли этот процесс лидером?».
//
// Контракт:
//   - Вызывается на каждом тике планировщика, должен быть дешёвым.
//   - Не блокируется бесконечно: реализация обязана ограничивать
//     свои запросы таймаутом.
//   - При любой неопределённости (БД недоступна, ошибка запроса)
//     возвращает консервативное false: пропустить один цикл безопасно,
//     два одновременных REINDEX — нет.
type Elector interface {
	IsLeader(ctx context.Context) bool
}
