package store

import (
	sq "github.com/Masterminds/squirrel"
)

// schemaName is the Postgres schema every table lives in, including the
// dynamically created per-state tables.
const schemaName = "uccdatahub"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}
