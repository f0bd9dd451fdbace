package store

import (
	"context"
	"fmt"
	"time"

	"strot/internal/utils"
	"strot/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const communityHeadTableName = "community_heads"

var communityHeadColumns = utils.Columns(types.CommunityHead{})

type CommunityHeadRepository struct {
	db DB
}

func NewCommunityHeadRepository(db DB) *CommunityHeadRepository {
	return &CommunityHeadRepository{db: db}
}

func (r *CommunityHeadRepository) CommunityHead(ctx context.Context, id string) (*types.CommunityHead, error) {
	return r.headWhere(ctx, sq.Eq{"id": id})
}

// CommunityHeadByUser resolves the community head record of a user. Every
// community head action starts here.
func (r *CommunityHeadRepository) CommunityHeadByUser(ctx context.Context, userID string) (*types.CommunityHead, error) {
	return r.headWhere(ctx, sq.Eq{"user_id": userID})
}

func (r *CommunityHeadRepository) headWhere(ctx context.Context, where sq.Eq) (*types.CommunityHead, error) {
	query, args, err := psql().
		Select(communityHeadColumns...).
		From(communityHeadTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate community head query: %w", err)
	}

	var head types.CommunityHead
	err = pgxscan.Get(ctx, r.db, &head, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCommunityHeadNotFound
		}
		return nil, fmt.Errorf("failed to fetch community head: %w", err)
	}

	return &head, nil
}

func (r *CommunityHeadRepository) CommunityHeads(ctx context.Context, status types.CommunityHeadStatus) ([]*types.CommunityHead, error) {
	builder := psql().
		Select(communityHeadColumns...).
		From(communityHeadTableName).
		OrderBy("created_at ASC")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate community heads query: %w", err)
	}

	heads := make([]*types.CommunityHead, 0)
	err = pgxscan.Select(ctx, r.db, &heads, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch community heads: %w", err)
	}

	return heads, nil
}

func (r *CommunityHeadRepository) Create(ctx context.Context, head *types.CommunityHead) error {
	now := time.Now()
	head.ID = utils.NanoID()
	head.Status = types.CommunityHeadStatusPending
	head.CreatedAt = now
	head.UpdatedAt = now

	query, args, err := psql().
		Insert(communityHeadTableName).
		SetMap(utils.ColumnMap(head)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create community head query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create community head")
}

// UpdateStatus moves a community head from one status to another. The row
// only changes if it is still in from.
func (r *CommunityHeadRepository) UpdateStatus(ctx context.Context, id string, from, to types.CommunityHeadStatus, adminID string) (*types.CommunityHead, error) {
	now := time.Now()
	set := map[string]any{
		"status":     to,
		"updated_at": now,
	}
	if to == types.CommunityHeadStatusActive {
		set["approved_at"] = now
		set["approved_by"] = adminID
	}

	query, args, err := psql().
		Update(communityHeadTableName).
		SetMap(set).
		Where(sq.Eq{"id": id, "status": from}).
		Suffix(returning(communityHeadColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update community head status query: %w", err)
	}

	var head types.CommunityHead
	err = pgxscan.Get(ctx, r.db, &head, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, r.missedTransition(ctx, id)
		}
		return nil, fmt.Errorf("failed to update community head status: %w", err)
	}

	return &head, nil
}

func (r *CommunityHeadRepository) missedTransition(ctx context.Context, id string) error {
	if _, err := r.CommunityHead(ctx, id); err != nil {
		return err
	}
	return types.ErrInvalidTransition
}

func incrementScoreQuery(id string, delta int) (string, []any, error) {
	return psql().
		Update(communityHeadTableName).
		Set("performance_score", sq.Expr("performance_score + ?", delta)).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id}).
		ToSql()
}
