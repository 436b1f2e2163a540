// Package export assembles multi-state query results into one delimited
// payload. The schema is fixed up front from the first state's column
// set rather than inferred from row data, so an empty or partly failed
// export still has a well-defined shape.
package export

import (
	"encoding/csv"
	"fmt"
	"strings"

	"uccdatahub/pkg/types"
)

// Leading and trailing columns wrapped around every state's data
// columns.
const (
	stateColumn    = "State"
	dataTypeColumn = "DataType"
)

// Builder accumulates per-state results for one export request. States
// are added in request order; the first successful state pins the data
// column set and later states must match it.
type Builder struct {
	dataType string
	columns  []string
	rows     [][]string
	statuses []types.StateStatus
}

func NewBuilder(dataType string) *Builder {
	return &Builder{
		dataType: dataType,
		rows:     make([][]string, 0),
		statuses: make([]types.StateStatus, 0),
	}
}

// AddState appends one state's rows, tagging each with the upper-cased
// state code and the requested data type. A state whose column set
// disagrees with the pinned schema is recorded as failed instead of
// corrupting the table.
func (b *Builder) AddState(state string, columns []string, rows [][]string) {
	if b.columns == nil {
		b.columns = columns
	} else if !sameColumns(b.columns, columns) {
		b.FailState(state, fmt.Errorf("column set differs from export schema"))
		return
	}

	tag := strings.ToUpper(state)
	for _, row := range rows {
		record := make([]string, 0, len(row)+2)
		record = append(record, tag)
		record = append(record, row...)
		record = append(record, b.dataType)
		b.rows = append(b.rows, record)
	}

	b.statuses = append(b.statuses, types.StateStatus{
		State:       state,
		RecordCount: len(rows),
	})
}

// FailState records a state the loop skipped. The export carries on
// with the remaining states.
func (b *Builder) FailState(state string, err error) {
	b.statuses = append(b.statuses, types.StateStatus{
		State: state,
		Error: err.Error(),
	})
}

func (b *Builder) RecordCount() int {
	return len(b.rows)
}

func (b *Builder) Statuses() []types.StateStatus {
	return b.statuses
}

// Result serializes the aggregate. An empty aggregate is ErrNoData; the
// caller maps that to its not-found response.
func (b *Builder) Result() (*types.ExportResult, error) {
	if len(b.rows) == 0 {
		return nil, types.ErrNoData
	}

	header := make([]string, 0, len(b.columns)+2)
	header = append(header, stateColumn)
	header = append(header, b.columns...)
	header = append(header, dataTypeColumn)

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(b.rows); err != nil {
		return nil, fmt.Errorf("failed to write csv rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return &types.ExportResult{
		CSV:         sb.String(),
		RecordCount: len(b.rows),
		States:      b.statuses,
	}, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
