package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"uccdatahub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Well-known column names the query pipeline filters on. These are fixed
// literals, never user input.
const (
	columnFilingNumber = "Filing Number"
	columnFilingDate   = "Filing Date"
	columnSecuredParty = "Secured Party Name"
	columnFilingType   = "Filing Type"
	columnDesignation  = "Official Designation"
)

type FilingRepository struct {
	pool *pgxpool.Pool
}

func NewFilingRepository(pool *pgxpool.Pool) *FilingRepository {
	return &FilingRepository{pool: pool}
}

// EnsureTable creates the destination table for a state if it is absent
// and adds any configured columns an existing table is missing. Every
// column is TEXT; values arrive as strings from uploaded files.
func (r *FilingRepository) EnsureTable(ctx context.Context, table string, columns []string) error {
	if len(columns) == 0 {
		return fmt.Errorf("no columns configured for table %s", table)
	}

	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		if !ValidColumnName(col) {
			return fmt.Errorf("%w: %q", types.ErrBadIdentifier, col)
		}
		defs = append(defs, fmt.Sprintf("%s TEXT", quoteIdent(col)))
	}

	create := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id BIGSERIAL PRIMARY KEY, %s)",
		stateTable(table), strings.Join(defs, ", "),
	)
	if _, err := r.pool.Exec(ctx, create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	// A re-import with a widened mapping grows the existing table.
	for _, col := range columns {
		alter := fmt.Sprintf(
			"ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s TEXT",
			stateTable(table), quoteIdent(col),
		)
		if _, err := r.pool.Exec(ctx, alter); err != nil {
			return fmt.Errorf("failed to add column %q to %s: %w", col, table, err)
		}
	}

	return nil
}

// Import wraps the database transaction an upload's row inserts run in.
// Any insert error aborts the whole import via Rollback.
type Import struct {
	tx pgx.Tx
}

func (r *FilingRepository) BeginImport(ctx context.Context) (*Import, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin import transaction: %w", err)
	}
	return &Import{tx: tx}, nil
}

// InsertRow writes one parsed file row into a destination table. Fields
// the row does not carry are stored as NULL.
func (im *Import) InsertRow(ctx context.Context, table string, columns []string, row map[string]string) error {
	quoted := make([]string, 0, len(columns))
	values := make([]any, 0, len(columns))
	for _, col := range columns {
		quoted = append(quoted, quoteIdent(col))
		if v, ok := row[col]; ok {
			values = append(values, v)
		} else {
			values = append(values, nil)
		}
	}

	query, args, err := psql().
		Insert(stateTable(table)).
		Columns(quoted...).
		Values(values...).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert for table %s: %w", table, err)
	}

	_, err = im.tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert row into %s: %w", table, err)
	}

	return nil
}

func (im *Import) Commit(ctx context.Context) error {
	return im.tx.Commit(ctx)
}

func (im *Import) Rollback(ctx context.Context) error {
	return im.tx.Rollback(ctx)
}

// SecuredParties returns the distinct secured-party names across the
// given states' primary tables, sorted. States without a table are
// skipped.
func (r *FilingRepository) SecuredParties(ctx context.Context, states []string) ([]string, error) {
	parts := make([]string, 0, len(states))
	for _, raw := range states {
		state, err := NormalizeState(raw)
		if err != nil {
			continue
		}

		cols, err := r.tableColumns(ctx, state)
		if err != nil {
			return nil, err
		}
		if !containsColumn(cols, columnSecuredParty) {
			continue
		}

		parts = append(parts, fmt.Sprintf(
			"SELECT %s FROM %s", quoteIdent(columnSecuredParty), stateTable(state),
		))
	}

	if len(parts) == 0 {
		return []string{}, nil
	}

	query := fmt.Sprintf(
		"SELECT DISTINCT %s FROM (%s) AS combined WHERE %s IS NOT NULL ORDER BY %s",
		quoteIdent(columnSecuredParty),
		strings.Join(parts, " UNION ALL "),
		quoteIdent(columnSecuredParty),
		quoteIdent(columnSecuredParty),
	)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query secured parties: %w", err)
	}
	defer rows.Close()

	parties := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan secured party: %w", err)
		}
		parties = append(parties, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read secured parties: %w", err)
	}

	return parties, nil
}

// SearchQuery carries the per-state filter criteria. Parties is the
// expanded list; the "all" sentinel is stripped at the API boundary and
// an empty list means no secured-party predicate.
type SearchQuery struct {
	DataType        string
	Parties         []string
	UCCType         string
	Role            string
	FilingDateStart string
	FilingDateEnd   string
}

// StateResult is one state's slice of the export: ordered column names
// and stringified data rows.
type StateResult struct {
	Columns []string
	Rows    [][]string
}

// Search runs the filtered query for one state. The column set comes
// from the catalog up front, so the result schema is defined even when
// no rows match. Comprehensive data joins the state's secondary table on
// the filing number for its extended fields.
func (r *FilingRepository) Search(ctx context.Context, rawState string, q SearchQuery) (*StateResult, error) {
	state, err := NormalizeState(rawState)
	if err != nil {
		return nil, err
	}

	cols1, err := r.tableColumns(ctx, state)
	if err != nil {
		return nil, err
	}
	if len(cols1) == 0 {
		return nil, types.ErrStateTableMissing
	}

	selects := make([]string, 0, len(cols1))
	outCols := make([]string, 0, len(cols1))
	for _, col := range cols1 {
		selects = append(selects, "t1."+quoteIdent(col))
		outCols = append(outCols, col)
	}

	var cols2 []string
	comprehensive := q.DataType == types.DataTypeComprehensive
	if comprehensive {
		all2, err := r.tableColumns(ctx, state+"2")
		if err != nil {
			return nil, err
		}
		if len(all2) == 0 {
			return nil, types.ErrStateTableMissing
		}
		for _, col := range all2 {
			if containsColumn(cols1, col) {
				continue
			}
			cols2 = append(cols2, col)
			selects = append(selects, "t2."+quoteIdent(col))
			outCols = append(outCols, col)
		}
	}

	builder := psql().
		Select(selects...).
		From(fmt.Sprintf("%s AS t1", stateTable(state)))

	if comprehensive {
		builder = builder.Join(fmt.Sprintf(
			"%s AS t2 ON t1.%s = t2.%s",
			stateTable(state+"2"), quoteIdent(columnFilingNumber), quoteIdent(columnFilingNumber),
		))
	}

	builder, err = applyFilters(builder, q, cols1, cols2)
	if err != nil {
		return nil, err
	}

	if containsColumn(cols1, columnFilingNumber) {
		builder = builder.OrderBy("t1." + quoteIdent(columnFilingNumber))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate search query for %s: %w", state, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run search query for %s: %w", state, err)
	}
	defer rows.Close()

	result := &StateResult{Columns: outCols, Rows: make([][]string, 0)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read search row for %s: %w", state, err)
		}

		record := make([]string, len(values))
		for i, v := range values {
			record[i] = stringifyValue(v)
		}
		result.Rows = append(result.Rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search rows for %s: %w", state, err)
	}

	return result, nil
}

// applyFilters adds the requested predicates to the state's select. A
// filter that references a column the state's tables do not carry is an
// error, so the state gets reported as failed instead of exporting its
// unfiltered rows.
func applyFilters(builder sq.SelectBuilder, q SearchQuery, cols1, cols2 []string) (sq.SelectBuilder, error) {
	if len(q.Parties) > 0 {
		ref, ok := qualifyColumn(columnSecuredParty, cols1, cols2)
		if !ok {
			return builder, fmt.Errorf("%w: %q", types.ErrFilterColumnMissing, columnSecuredParty)
		}
		builder = builder.Where(sq.Eq{ref: q.Parties})
	}

	if q.UCCType == "uccFiling" {
		ref, ok := qualifyColumn(columnFilingType, cols1, cols2)
		if !ok {
			return builder, fmt.Errorf("%w: %q", types.ErrFilterColumnMissing, columnFilingType)
		}
		builder = builder.Where(sq.Eq{ref: []string{"UCC-1", "Initial"}})
	}

	if q.Role == "owner" && q.DataType == types.DataTypeComprehensive {
		ref, ok := qualifyColumn(columnDesignation, cols1, cols2)
		if !ok {
			return builder, fmt.Errorf("%w: %q", types.ErrFilterColumnMissing, columnDesignation)
		}
		builder = builder.Where(sq.Or{
			sq.ILike{ref: "%owner%"},
			sq.ILike{ref: "%founder%"},
		})
	}

	if q.FilingDateStart != "" || q.FilingDateEnd != "" {
		ref, ok := qualifyColumn(columnFilingDate, cols1, cols2)
		if !ok {
			return builder, fmt.Errorf("%w: %q", types.ErrFilterColumnMissing, columnFilingDate)
		}
		if q.FilingDateStart != "" {
			builder = builder.Where(sq.GtOrEq{ref: q.FilingDateStart})
		}
		if q.FilingDateEnd != "" {
			builder = builder.Where(sq.LtOrEq{ref: q.FilingDateEnd})
		}
	}

	return builder, nil
}

// tableColumns reads a table's column names from the catalog, in
// ordinal order, excluding the synthetic id key. An empty slice means
// the table does not exist.
func (r *FilingRepository) tableColumns(ctx context.Context, table string) ([]string, error) {
	const query = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2 AND column_name <> 'id'
		ORDER BY ordinal_position`

	rows, err := r.pool.Query(ctx, query, schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns for %s: %w", table, err)
	}
	defer rows.Close()

	columns := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan column name: %w", err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns for %s: %w", table, err)
	}

	return columns, nil
}

func containsColumn(columns []string, name string) bool {
	for _, col := range columns {
		if col == name {
			return true
		}
	}
	return false
}

// qualifyColumn resolves which side of the join carries a well-known
// column. Reports false when neither table has it.
func qualifyColumn(name string, cols1, cols2 []string) (string, bool) {
	if containsColumn(cols1, name) {
		return "t1." + quoteIdent(name), true
	}
	if containsColumn(cols2, name) {
		return "t2." + quoteIdent(name), true
	}
	return "", false
}

func stringifyValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	case time.Time:
		return value.Format("2006-01-02")
	default:
		return fmt.Sprint(value)
	}
}
