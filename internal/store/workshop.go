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

const workshopTableName = "workshops"

var workshopColumns = utils.Columns(types.Workshop{})

type WorkshopRepository struct {
	db DB
}

func NewWorkshopRepository(db DB) *WorkshopRepository {
	return &WorkshopRepository{db: db}
}

func (r *WorkshopRepository) Workshop(ctx context.Context, workshopID string) (*types.Workshop, error) {
	query, args, err := psql().
		Select(workshopColumns...).
		From(workshopTableName).
		Where(sq.Eq{"id": workshopID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workshop query: %w", err)
	}

	var workshop types.Workshop
	err = pgxscan.Get(ctx, r.db, &workshop, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrWorkshopNotFound
		}
		return nil, fmt.Errorf("failed to fetch workshop: %w", err)
	}

	return &workshop, nil
}

// Workshops lists workshops, optionally narrowed to one status.
func (r *WorkshopRepository) Workshops(ctx context.Context, status types.WorkshopStatus) ([]*types.Workshop, error) {
	builder := psql().
		Select(workshopColumns...).
		From(workshopTableName).
		OrderBy("created_at DESC")
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workshops query: %w", err)
	}

	workshops := make([]*types.Workshop, 0)
	err = pgxscan.Select(ctx, r.db, &workshops, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workshops: %w", err)
	}

	return workshops, nil
}

func (r *WorkshopRepository) Create(ctx context.Context, workshop *types.Workshop) error {
	now := time.Now()
	workshop.ID = utils.NanoID()
	workshop.Status = types.WorkshopStatusProposed
	workshop.CommunityHeadID = nil
	workshop.ScheduledAt = nil
	workshop.CompletedAt = nil
	workshop.CreatedAt = now
	workshop.UpdatedAt = now

	query, args, err := psql().
		Insert(workshopTableName).
		SetMap(utils.ColumnMap(workshop)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert workshop query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create workshop")
}

func (r *WorkshopRepository) Approve(ctx context.Context, workshopID, communityHeadID string, scheduledAt time.Time) (*types.Workshop, error) {
	return r.transition(ctx, workshopID, sq.Eq{"id": workshopID, "status": types.WorkshopStatusProposed}, map[string]any{
		"status":            types.WorkshopStatusApproved,
		"community_head_id": communityHeadID,
		"scheduled_at":      scheduledAt,
	})
}

func (r *WorkshopRepository) Reject(ctx context.Context, workshopID, communityHeadID string) (*types.Workshop, error) {
	return r.transition(ctx, workshopID, sq.Eq{"id": workshopID, "status": types.WorkshopStatusProposed}, map[string]any{
		"status":            types.WorkshopStatusRejected,
		"community_head_id": communityHeadID,
	})
}

func (r *WorkshopRepository) Complete(ctx context.Context, workshopID, communityHeadID string) (*types.Workshop, error) {
	return r.transition(ctx, workshopID, sq.Eq{
		"id":                workshopID,
		"status":            types.WorkshopStatusApproved,
		"community_head_id": communityHeadID,
	}, map[string]any{
		"status":       types.WorkshopStatusCompleted,
		"completed_at": time.Now(),
	})
}

func (r *WorkshopRepository) transition(ctx context.Context, workshopID string, where sq.Eq, set map[string]any) (*types.Workshop, error) {
	set["updated_at"] = time.Now()

	query, args, err := psql().
		Update(workshopTableName).
		SetMap(set).
		Where(where).
		Suffix(returning(workshopColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workshop transition query for workshop %s: %w", workshopID, err)
	}

	var workshop types.Workshop
	err = pgxscan.Get(ctx, r.db, &workshop, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			if _, lookupErr := r.Workshop(ctx, workshopID); lookupErr != nil {
				return nil, lookupErr
			}
			return nil, types.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update workshop: %w", err)
	}

	return &workshop, nil
}
