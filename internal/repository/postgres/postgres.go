package postgres

import (
	"context"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// psql squirrel builder с плейсхолдерами PostgreSQL ($1, $2, ...)
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// querier общий интерфейс *pgxpool.Pool и pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Коды ошибок PostgreSQL
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool { return pgErrCode(err) == pgUniqueViolation }

func isForeignKeyViolation(err error) bool { return pgErrCode(err) == pgForeignKeyViolation }

// isInvalidText строка не приводится к типу колонки, например не uuid
func isInvalidText(err error) bool { return pgErrCode(err) == pgInvalidText }

// escapeLike экранирует спецсимволы LIKE, чтобы поиск шёл по подстроке буквально
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// rollback откатывает транзакцию; после Commit вызов безопасен
func rollback(ctx context.Context, tx pgx.Tx) {
	_ = tx.Rollback(ctx)
}
