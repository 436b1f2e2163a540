package importer

import (
	"context"

	"uccdatahub/internal/store"
)

type storeFilings struct {
	repo *store.FilingRepository
}

// NewFilingStore adapts the filing repository to the importer's store
// interface.
func NewFilingStore(repo *store.FilingRepository) FilingStore {
	return storeFilings{repo: repo}
}

func (s storeFilings) EnsureTable(ctx context.Context, table string, columns []string) error {
	return s.repo.EnsureTable(ctx, table, columns)
}

func (s storeFilings) BeginImport(ctx context.Context) (RowWriter, error) {
	return s.repo.BeginImport(ctx)
}
