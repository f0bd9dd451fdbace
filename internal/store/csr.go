package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"strot/internal/utils"
	"strot/internal/workflow"
	"strot/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const csrTableName = "csr_transactions"

var csrColumns = utils.Columns(types.CSRTransaction{})

type CSRRepository struct {
	db DB
}

func NewCSRRepository(db DB) *CSRRepository {
	return &CSRRepository{db: db}
}

func (r *CSRRepository) Ledger(ctx context.Context, businessID string) (*types.CSRLedger, error) {
	entries, err := transactions(ctx, r.db, businessID)
	if err != nil {
		return nil, err
	}

	return &types.CSRLedger{
		BusinessID:   businessID,
		BalanceCents: workflow.CSRBalance(entries),
		Entries:      entries,
	}, nil
}

func transactions(ctx context.Context, db pgxscan.Querier, businessID string) ([]*types.CSRTransaction, error) {
	query, args, err := psql().
		Select(csrColumns...).
		From(csrTableName).
		Where(sq.Eq{"business_id": businessID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate csr ledger query: %w", err)
	}

	entries := make([]*types.CSRTransaction, 0)
	err = pgxscan.Select(ctx, db, &entries, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch csr ledger for business %s: %w", businessID, err)
	}

	return entries, nil
}

func insertTransaction(ctx context.Context, db DB, txn *types.CSRTransaction) error {
	txn.ID = utils.NanoID()
	txn.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(csrTableName).
		SetMap(utils.ColumnMap(txn)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert csr transaction query: %w", err)
	}

	_, err = db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to record csr transaction")
}

func (r *CSRRepository) RecordContribution(ctx context.Context, txn *types.CSRTransaction) error {
	txn.Kind = types.CSRKindContribution
	return insertTransaction(ctx, r.db, txn)
}

// RecordDisbursement debits a business ledger. The business row is locked
// for the duration so concurrent disbursements cannot overdraw the balance.
func (r *CSRRepository) RecordDisbursement(ctx context.Context, txn *types.CSRTransaction) error {
	txn.Kind = types.CSRKindDisbursement

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := psql().
			Select("id").
			From(userTableName).
			Where(sq.Eq{"id": txn.BusinessID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to generate business lock query: %w", err)
		}

		var lockedID string
		if err := tx.QueryRow(ctx, query, args...).Scan(&lockedID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return types.ErrUserNotFound
			}
			return fmt.Errorf("failed to lock business %s: %w", txn.BusinessID, err)
		}

		entries, err := transactions(ctx, tx, txn.BusinessID)
		if err != nil {
			return err
		}

		if err := workflow.CanDisburse(workflow.CSRBalance(entries), txn.AmountCents); err != nil {
			return err
		}

		return insertTransaction(ctx, tx, txn)
	})
}
