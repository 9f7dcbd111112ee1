package maintenance

import (
	"fmt"
	"strings"

	"github.com/shaiso/Custodian/internal/domain"
)

// Шаблон statement для удаления invalid-индексов.
//
// Множество invalid-индексов неизвестно заранее, поэтому statement
// обнаруживает и удаляет их на стороне сервера одним DO-блоком.
// Фильтр: индексы обслуживаемой таблицы, имя которых начинается
// с имени таблицы. Invalid-индекс остаётся после прерванного
// REINDEX CONCURRENTLY и планировщиком запросов не используется.
//
// DO-блок выполняется в транзакции, поэтому DROP INDEX здесь без
// CONCURRENTLY: Postgres запрещает CONCURRENTLY внутри транзакции,
// а удаление invalid-индекса держит блокировку лишь мгновение.
const dropInvalidTemplate = `DO $$
DECLARE
  idx RECORD;
BEGIN
  FOR idx IN (
    SELECT relname
    FROM pg_index
    JOIN pg_class ON pg_class.oid = pg_index.indexrelid
    WHERE indrelid = %s::regclass
      AND NOT indisvalid
      AND starts_with(relname, %s)
  )
  LOOP
    EXECUTE format('DROP INDEX IF EXISTS %%I.%%I', %s, idx.relname);
  END LOOP;
END $$`

// Plan строит упорядоченный план обслуживания.
//
// Порядок фиксированный:
//  1. Один cleanup statement (удаление invalid-индексов).
//  2. По одному REINDEX INDEX CONCURRENTLY на каждый индекс
//     конфигурации, в порядке конфигурации.
//
// При пустом списке индексов план состоит только из cleanup.
// Plan — чистая генерация текста, без side effects.
func Plan(cfg domain.MaintenanceConfig) []domain.Statement {
	statements := make([]domain.Statement, 0, 1+len(cfg.Indexes))

	statements = append(statements, domain.Statement{
		Name: "drop_invalid_indexes",
		SQL:  dropInvalidIndexesSQL(cfg),
	})

	for _, index := range cfg.Indexes {
		statements = append(statements, domain.Statement{
			Name: "reindex_" + index,
			SQL: fmt.Sprintf("REINDEX INDEX CONCURRENTLY %s.%s",
				quoteIdent(cfg.Schema), quoteIdent(index)),
		})
	}

	return statements
}

// dropInvalidIndexesSQL подставляет схему и таблицу в cleanup-шаблон.
func dropInvalidIndexesSQL(cfg domain.MaintenanceConfig) string {
	qualified := quoteIdent(cfg.Schema) + "." + quoteIdent(cfg.Table)

	return fmt.Sprintf(dropInvalidTemplate,
		quoteLiteral(qualified), // '"schema"."table"'::regclass
		quoteLiteral(cfg.Table), // префикс для starts_with
		quoteLiteral(cfg.Schema),
	)
}

// quoteIdent квотирует идентификатор для прямой подстановки в SQL.
// Внутренние кавычки удваиваются — тот же идентификатор не может
// вырваться за пределы своей позиции.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteLiteral квотирует строковый литерал.
func quoteLiteral(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
