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

const (
	transactionTableName = "uccdatahub.transactions"
)

var transactionColumns = utils.StructTagValues(types.Transaction{})

// transactionListColumns omits the exported payload; lists never need
// the CSV body.
var transactionListColumns = []string{
	"id", "user_id", "order_id", "amount_cents", "record_count", "status", "created_at",
}

type TransactionRepository struct {
	pool *pgxpool.Pool
}

func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Record persists a captured payment: the transaction row and the
// user's last-purchase stamp commit atomically. A failure of either
// write rolls both back, so a transaction row exists only for payments
// whose capture succeeded end to end.
func (r *TransactionRepository) Record(ctx context.Context, transaction *types.Transaction) error {
	now := time.Now()
	transaction.ID = utils.NanoID()
	transaction.CreatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery, insertArgs, err := psql().
		Insert(transactionTableName).
		SetMap(utils.StructToMap(transaction)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert transaction query: %w", err)
	}

	if _, err := tx.Exec(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	updateQuery, updateArgs, err := psql().
		Update(userTableName).
		Set("last_purchase", now).
		Set("updated_at", now).
		Where(sq.Eq{"id": transaction.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate last-purchase update: %w", err)
	}

	if _, err := tx.Exec(ctx, updateQuery, updateArgs...); err != nil {
		return fmt.Errorf("failed to stamp last purchase: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction record: %w", err)
	}

	return nil
}

func (r *TransactionRepository) TransactionsByUser(ctx context.Context, userID string) ([]*types.Transaction, error) {
	query, args, err := psql().
		Select(transactionListColumns...).
		From(transactionTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate transactions-by-user query: %w", err)
	}

	var transactions = make([]*types.Transaction, 0)
	err = pgxscan.Select(ctx, r.pool, &transactions, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, nil
}

// TransactionForDownload fetches the full transaction, payload included,
// scoped by both transaction id and owning user. A valid transaction id
// with the wrong user is indistinguishable from a missing one.
func (r *TransactionRepository) TransactionForDownload(ctx context.Context, transactionID, userID string) (*types.Transaction, error) {
	query, args, err := psql().
		Select(transactionColumns...).
		From(transactionTableName).
		Where(sq.Eq{"id": transactionID, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate download query: %w", err)
	}

	var transaction types.Transaction
	err = pgxscan.Get(ctx, r.pool, &transaction, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to fetch transaction: %w", err)
	}

	return &transaction, nil
}
