package store

import (
	"context"
	"fmt"
	"time"

	"uccdatahub/internal/utils"
	"uccdatahub/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const configurationTableName = "uccdatahub.configurations"

type ConfigurationRepository struct {
	pool *pgxpool.Pool
}

func NewConfigurationRepository(pool *pgxpool.Pool) *ConfigurationRepository {
	return &ConfigurationRepository{pool: pool}
}

// Upsert saves the column mapping for a state, last write wins.
func (r *ConfigurationRepository) Upsert(ctx context.Context, state string, mapping types.ColumnMapping) error {
	now := time.Now()

	query, args, err := psql().
		Insert(configurationTableName).
		Columns("state", "config", "updated_at").
		Values(state, mapping, now).
		Suffix("ON CONFLICT (state) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert configuration query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert configuration")
}

// Configuration loads the column mapping for a state. The returned
// mapping always carries the three column arrays, absent ones are
// back-filled as empty.
func (r *ConfigurationRepository) Configuration(ctx context.Context, state string) (*types.Configuration, error) {
	query, args, err := psql().
		Select("state", "config", "updated_at").
		From(configurationTableName).
		Where(sq.Eq{"state": state}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate configuration query: %w", err)
	}

	var configuration types.Configuration
	err = pgxscan.Get(ctx, r.pool, &configuration, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrConfigurationNotFound
		}
		return nil, fmt.Errorf("failed to fetch configuration: %w", err)
	}

	configuration.Config.Normalize()

	return &configuration, nil
}
