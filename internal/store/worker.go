package store

import (
	"context"
	"fmt"
	"time"

	"strot/internal/utils"
	"strot/internal/workflow"
	"strot/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const workerTableName = "worker_profiles"

var workerColumns = utils.Columns(types.WorkerProfile{})

type WorkerRepository struct {
	db DB
}

func NewWorkerRepository(db DB) *WorkerRepository {
	return &WorkerRepository{db: db}
}

func (r *WorkerRepository) Worker(ctx context.Context, workerID string) (*types.WorkerProfile, error) {
	query, args, err := psql().
		Select(workerColumns...).
		From(workerTableName).
		Where(sq.Eq{"id": workerID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate worker query: %w", err)
	}

	var worker types.WorkerProfile
	err = pgxscan.Get(ctx, r.db, &worker, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrWorkerNotFound
		}
		return nil, fmt.Errorf("failed to fetch worker: %w", err)
	}

	return &worker, nil
}

// Workers lists the workers recruited by a community head. An empty
// communityHeadID lists every community's workers, narrowed by skill when one
// is given.
func (r *WorkerRepository) Workers(ctx context.Context, communityHeadID, skill string) ([]*types.WorkerProfile, error) {
	builder := psql().
		Select(workerColumns...).
		From(workerTableName).
		OrderBy("created_at ASC")
	if communityHeadID != "" {
		builder = builder.Where(sq.Eq{"community_head_id": communityHeadID})
	}
	if skill != "" {
		builder = builder.Where(sq.Eq{"skill": workflow.NormalizeSkill(skill)})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate workers query: %w", err)
	}

	workers := make([]*types.WorkerProfile, 0)
	err = pgxscan.Select(ctx, r.db, &workers, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}

	return workers, nil
}

func (r *WorkerRepository) Create(ctx context.Context, worker *types.WorkerProfile) error {
	now := time.Now()
	worker.ID = utils.NanoID()
	worker.Status = types.WorkerStatusAvailable
	worker.Skill = workflow.NormalizeSkill(worker.Skill)
	worker.CreatedAt = now
	worker.UpdatedAt = now

	query, args, err := psql().
		Insert(workerTableName).
		SetMap(utils.ColumnMap(worker)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert worker query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create worker")
}

func updateWorkerStatusQuery(workerID string, from, to types.WorkerStatus) (string, []any, error) {
	return psql().
		Update(workerTableName).
		SetMap(map[string]any{"status": to, "updated_at": time.Now()}).
		Where(sq.Eq{"id": workerID, "status": from}).
		Suffix(returning(workerColumns)).
		ToSql()
}

func (r *WorkerRepository) UpdateStatus(ctx context.Context, workerID string, from, to types.WorkerStatus) (*types.WorkerProfile, error) {
	query, args, err := updateWorkerStatusQuery(workerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to generate update worker status query for worker %s: %w", workerID, err)
	}

	var worker types.WorkerProfile
	err = pgxscan.Get(ctx, r.db, &worker, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			if _, lookupErr := r.Worker(ctx, workerID); lookupErr != nil {
				return nil, lookupErr
			}
			return nil, types.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update worker status: %w", err)
	}

	return &worker, nil
}
