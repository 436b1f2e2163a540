// Package importer loads an uploaded delimited file into a state's
// destination tables according to the admin's column mapping.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"uccdatahub/internal/store"
	"uccdatahub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// filingDateColumn is the configured column whose values get normalized
// to ISO dates at insert time.
const filingDateColumn = "Filing Date"

// RowWriter receives parsed rows inside one database transaction. Any
// insert error aborts the whole import.
type RowWriter interface {
	InsertRow(ctx context.Context, table string, columns []string, row map[string]string) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// FilingStore is the slice of the store layer the importer drives.
type FilingStore interface {
	EnsureTable(ctx context.Context, table string, columns []string) error
	BeginImport(ctx context.Context) (RowWriter, error)
}

// ObjectPutter archives raw uploads. Satisfied by *s3.Client.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Importer struct {
	filings FilingStore
	logger  *logrus.Logger

	archive       ObjectPutter
	archiveBucket string

	// Concurrent imports to the same state interleave writes to the
	// same tables, so they serialize here.
	mu         sync.Mutex
	stateLocks map[string]*sync.Mutex
}

func New(filings FilingStore, logger *logrus.Logger) *Importer {
	return &Importer{
		filings:    filings,
		logger:     logger,
		stateLocks: make(map[string]*sync.Mutex),
	}
}

// WithArchive enables copying raw uploads to an S3 bucket after a
// successful import.
func (im *Importer) WithArchive(putter ObjectPutter, bucket string) *Importer {
	im.archive = putter
	im.archiveBucket = bucket
	return im
}

type Request struct {
	State    string
	Mapping  types.ColumnMapping
	FilePath string
}

type Result struct {
	State        string
	RowsImported int
	Tables       []string
}

// Run imports the file and removes it afterwards, even on failure. The
// upload is a temp file; keeping it around on error just leaks disk.
func (im *Importer) Run(ctx context.Context, req Request) (*Result, error) {
	defer func() {
		if err := os.Remove(req.FilePath); err != nil && !os.IsNotExist(err) {
			im.logger.WithError(err).WithField("path", req.FilePath).Warn("failed to remove upload temp file")
		}
	}()

	state, err := store.NormalizeState(req.State)
	if err != nil {
		return nil, err
	}

	table1Columns := columnNames(req.Mapping.CommonColumns, req.Mapping.Table1Columns)
	table2Columns := columnNames(req.Mapping.CommonColumns, req.Mapping.Table2Columns)
	hasTable2 := len(req.Mapping.Table2Columns) > 0

	if len(table1Columns) == 0 {
		return nil, fmt.Errorf("no columns configured for state %s", state)
	}
	for _, col := range append(append([]string{}, table1Columns...), table2Columns...) {
		if !store.ValidColumnName(col) {
			return nil, fmt.Errorf("%w: %q", types.ErrBadIdentifier, col)
		}
	}

	table1 := state
	table2 := state + "2"

	unlock := im.lockState(state)
	defer unlock()

	if err := im.filings.EnsureTable(ctx, table1, table1Columns); err != nil {
		return nil, err
	}
	if hasTable2 {
		if err := im.filings.EnsureTable(ctx, table2, table2Columns); err != nil {
			return nil, err
		}
	}

	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	rowsImported, err := im.insertRows(ctx, file, table1, table1Columns, table2, table2Columns, hasTable2)
	if err != nil {
		return nil, err
	}

	im.archiveUpload(ctx, state, req.FilePath)

	result := &Result{State: state, RowsImported: rowsImported, Tables: []string{table1}}
	if hasTable2 {
		result.Tables = append(result.Tables, table2)
	}
	return result, nil
}

func (im *Importer) insertRows(ctx context.Context, file io.Reader, table1 string, table1Columns []string, table2 string, table2Columns []string, hasTable2 bool) (int, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("upload is empty")
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read upload header: %w", err)
	}

	writer, err := im.filings.BeginImport(ctx)
	if err != nil {
		return 0, err
	}
	defer writer.Rollback(ctx)

	rowsImported := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to parse upload row %d: %w", rowsImported+1, err)
		}

		row := make(map[string]string, len(header))
		for i, name := range header {
			if i >= len(record) {
				break
			}
			row[name] = record[i]
		}
		if v, ok := row[filingDateColumn]; ok {
			row[filingDateColumn] = NormalizeFilingDate(v)
		}

		if err := writer.InsertRow(ctx, table1, table1Columns, row); err != nil {
			return 0, err
		}
		if hasTable2 {
			if err := writer.InsertRow(ctx, table2, table2Columns, row); err != nil {
				return 0, err
			}
		}
		rowsImported++
	}

	if err := writer.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}

	return rowsImported, nil
}

// archiveUpload copies the raw upload to the archive bucket. Archive
// failure is logged, not returned: the import itself already committed.
func (im *Importer) archiveUpload(ctx context.Context, state, path string) {
	if im.archive == nil || im.archiveBucket == "" {
		return
	}

	file, err := os.Open(path)
	if err != nil {
		im.logger.WithError(err).WithField("path", path).Warn("failed to open upload for archiving")
		return
	}
	defer file.Close()

	key := fmt.Sprintf("uploads/%s/%s-%s", state, time.Now().UTC().Format("20060102T150405Z"), filepath.Base(path))
	_, err = im.archive.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(im.archiveBucket),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		im.logger.WithError(err).WithField("key", key).Warn("failed to archive upload")
		return
	}

	im.logger.WithField("key", key).Info("archived upload")
}

func (im *Importer) lockState(state string) func() {
	im.mu.Lock()
	lock, ok := im.stateLocks[state]
	if !ok {
		lock = &sync.Mutex{}
		im.stateLocks[state] = lock
	}
	im.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// NormalizeFilingDate converts MM/DD/YYYY source dates to YYYY-MM-DD.
// Values that do not parse come back unchanged.
func NormalizeFilingDate(value string) string {
	for _, layout := range []string{"01/02/2006", "1/2/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return value
}

func columnNames(groups ...[]types.Column) []string {
	names := make([]string, 0)
	for _, group := range groups {
		for _, col := range group {
			names = append(names, col.Content)
		}
	}
	return names
}
