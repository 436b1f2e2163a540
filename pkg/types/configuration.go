package types

import "time"

// Column is one draggable item from the admin column mapper. Only
// Content matters server-side; it becomes a destination column name.
type Column struct {
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

// ColumnMapping describes how an uploaded file maps onto a state's
// destination tables: common columns land in every table, table-1 and
// table-2 columns only in their own.
type ColumnMapping struct {
	CommonColumns []Column `json:"commonColumns"`
	Table1Columns []Column `json:"table1Columns"`
	Table2Columns []Column `json:"table2Columns"`
}

// Normalize replaces nil slices with empty ones so loaders always hand
// back the three expected arrays regardless of the stored JSON shape.
func (m *ColumnMapping) Normalize() {
	if m.CommonColumns == nil {
		m.CommonColumns = []Column{}
	}
	if m.Table1Columns == nil {
		m.Table1Columns = []Column{}
	}
	if m.Table2Columns == nil {
		m.Table2Columns = []Column{}
	}
}

type Configuration struct {
	State     string        `db:"state"`
	Config    ColumnMapping `db:"config"`
	UpdatedAt time.Time     `db:"updated_at"`
}
