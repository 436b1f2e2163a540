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

const profileTableName = "uccdatahub.profiles"

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Upsert saves a named search profile for a user. Saving the same name
// again overwrites the stored config, last write wins.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *types.Profile) error {
	now := time.Now()

	query, args, err := psql().
		Insert(profileTableName).
		Columns("name", "user_id", "config", "updated_at").
		Values(profile.Name, profile.UserID, profile.Config, now).
		Suffix("ON CONFLICT (user_id, name) DO UPDATE SET config = EXCLUDED.config, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert profile query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert profile")
}

func (r *ProfileRepository) ProfilesByUser(ctx context.Context, userID string) ([]*types.Profile, error) {
	query, args, err := psql().
		Select("name", "user_id", "config", "updated_at").
		From(profileTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profiles-by-user query: %w", err)
	}

	var profiles = make([]*types.Profile, 0)
	err = pgxscan.Select(ctx, r.pool, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profiles: %w", err)
	}

	return profiles, nil
}
