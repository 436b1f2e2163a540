package importer

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"uccdatahub/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type insertedRow struct {
	table   string
	columns []string
	row     map[string]string
}

type fakeRowWriter struct {
	inserts    []insertedRow
	insertErr  error
	committed  bool
	rolledBack bool
}

func (w *fakeRowWriter) InsertRow(ctx context.Context, table string, columns []string, row map[string]string) error {
	if w.insertErr != nil {
		return w.insertErr
	}
	copied := make(map[string]string, len(row))
	for k, v := range row {
		copied[k] = v
	}
	w.inserts = append(w.inserts, insertedRow{table: table, columns: columns, row: copied})
	return nil
}

func (w *fakeRowWriter) Commit(ctx context.Context) error {
	w.committed = true
	return nil
}

func (w *fakeRowWriter) Rollback(ctx context.Context) error {
	w.rolledBack = true
	return nil
}

type fakeFilingStore struct {
	tables map[string][]string
	writer *fakeRowWriter
}

func (s *fakeFilingStore) EnsureTable(ctx context.Context, table string, columns []string) error {
	if s.tables == nil {
		s.tables = make(map[string][]string)
	}
	s.tables[table] = columns
	return nil
}

func (s *fakeFilingStore) BeginImport(ctx context.Context) (RowWriter, error) {
	return s.writer, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeUpload(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

var testMapping = types.ColumnMapping{
	CommonColumns: []types.Column{{Content: "Filing Number"}, {Content: "Filing Date"}},
	Table1Columns: []types.Column{{Content: "Debtor Name"}},
	Table2Columns: []types.Column{{Content: "Secured Party Name"}},
}

func TestImporter_Run(t *testing.T) {
	upload := "Filing Number,Filing Date,Debtor Name,Secured Party Name\n" +
		"20240001,01/15/2024,Acme LLC,First Citizens Bank\n" +
		"20240002,2/3/2024,Widgets Inc,Truist Bank\n"

	t.Run("should split rows across both destination tables", func(t *testing.T) {
		writer := &fakeRowWriter{}
		filings := &fakeFilingStore{writer: writer}
		im := New(filings, testLogger())

		path := writeUpload(t, upload)
		result, err := im.Run(context.Background(), Request{State: "NC", Mapping: testMapping, FilePath: path})
		require.NoError(t, err)

		assert.Equal(t, "nc", result.State)
		assert.Equal(t, 2, result.RowsImported)
		assert.Equal(t, []string{"nc", "nc2"}, result.Tables)

		assert.Equal(t, []string{"Filing Number", "Filing Date", "Debtor Name"}, filings.tables["nc"])
		assert.Equal(t, []string{"Filing Number", "Filing Date", "Secured Party Name"}, filings.tables["nc2"])

		require.Len(t, writer.inserts, 4)
		assert.Equal(t, "nc", writer.inserts[0].table)
		assert.Equal(t, "nc2", writer.inserts[1].table)
		assert.True(t, writer.committed)
	})

	t.Run("should normalize filing dates to ISO", func(t *testing.T) {
		writer := &fakeRowWriter{}
		filings := &fakeFilingStore{writer: writer}
		im := New(filings, testLogger())

		path := writeUpload(t, upload)
		_, err := im.Run(context.Background(), Request{State: "nc", Mapping: testMapping, FilePath: path})
		require.NoError(t, err)

		require.Len(t, writer.inserts, 4)
		assert.Equal(t, "2024-01-15", writer.inserts[0].row["Filing Date"])
		assert.Equal(t, "2024-02-03", writer.inserts[2].row["Filing Date"])
	})

	t.Run("should remove the upload file even on failure", func(t *testing.T) {
		im := New(&fakeFilingStore{writer: &fakeRowWriter{}}, testLogger())

		path := writeUpload(t, upload)
		_, err := im.Run(context.Background(), Request{State: "zz", Mapping: testMapping, FilePath: path})
		assert.ErrorIs(t, err, types.ErrUnknownState)

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("should reject unusable column names before touching the database", func(t *testing.T) {
		filings := &fakeFilingStore{writer: &fakeRowWriter{}}
		im := New(filings, testLogger())

		badMapping := types.ColumnMapping{
			CommonColumns: []types.Column{{Content: `Filing"; DROP TABLE nc;--`}},
		}
		path := writeUpload(t, upload)
		_, err := im.Run(context.Background(), Request{State: "nc", Mapping: badMapping, FilePath: path})
		assert.ErrorIs(t, err, types.ErrBadIdentifier)
		assert.Empty(t, filings.tables)
	})

	t.Run("should abort the transaction on an insert error", func(t *testing.T) {
		writer := &fakeRowWriter{insertErr: errors.New("value too long")}
		im := New(&fakeFilingStore{writer: writer}, testLogger())

		path := writeUpload(t, upload)
		_, err := im.Run(context.Background(), Request{State: "nc", Mapping: testMapping, FilePath: path})
		assert.Error(t, err)
		assert.False(t, writer.committed)
		assert.True(t, writer.rolledBack)
	})

	t.Run("should reject an empty upload", func(t *testing.T) {
		im := New(&fakeFilingStore{writer: &fakeRowWriter{}}, testLogger())

		path := writeUpload(t, "")
		_, err := im.Run(context.Background(), Request{State: "nc", Mapping: testMapping, FilePath: path})
		assert.Error(t, err)
	})

	t.Run("should skip the secondary table when no columns are mapped to it", func(t *testing.T) {
		writer := &fakeRowWriter{}
		filings := &fakeFilingStore{writer: writer}
		im := New(filings, testLogger())

		mapping := types.ColumnMapping{
			CommonColumns: []types.Column{{Content: "Filing Number"}},
		}
		path := writeUpload(t, "Filing Number\n20240001\n")
		result, err := im.Run(context.Background(), Request{State: "nc", Mapping: mapping, FilePath: path})
		require.NoError(t, err)

		assert.Equal(t, []string{"nc"}, result.Tables)
		assert.NotContains(t, filings.tables, "nc2")
		require.Len(t, writer.inserts, 1)
	})
}

func TestNormalizeFilingDate(t *testing.T) {
	assert.Equal(t, "2024-01-15", NormalizeFilingDate("01/15/2024"))
	assert.Equal(t, "2024-02-03", NormalizeFilingDate("2/3/2024"))
	assert.Equal(t, "2024-01-15", NormalizeFilingDate("2024-01-15"))
	assert.Equal(t, "not a date", NormalizeFilingDate("not a date"))
	assert.Equal(t, "", NormalizeFilingDate(""))
}
