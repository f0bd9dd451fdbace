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

const jobTableName = "jobs"

var jobColumns = utils.Columns(types.Job{})

type JobRepository struct {
	db DB
}

func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Job(ctx context.Context, jobID string) (*types.Job, error) {
	query, args, err := psql().
		Select(jobColumns...).
		From(jobTableName).
		Where(sq.Eq{"id": jobID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate job query: %w", err)
	}

	var job types.Job
	err = pgxscan.Get(ctx, r.db, &job, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to fetch job: %w", err)
	}

	return &job, nil
}

// Jobs lists jobs posted by businessID, or every job when it is empty. An
// empty status means any status.
func (r *JobRepository) Jobs(ctx context.Context, businessID string, status types.JobStatus) ([]*types.Job, error) {
	builder := psql().
		Select(jobColumns...).
		From(jobTableName).
		OrderBy("created_at DESC")
	if businessID != "" {
		builder = builder.Where(sq.Eq{"business_id": businessID})
	}
	if status != "" {
		builder = builder.Where(sq.Eq{"status": status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate jobs query: %w", err)
	}

	jobs := make([]*types.Job, 0)
	err = pgxscan.Select(ctx, r.db, &jobs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jobs: %w", err)
	}

	return jobs, nil
}

func (r *JobRepository) Create(ctx context.Context, job *types.Job) error {
	now := time.Now()
	job.ID = utils.NanoID()
	job.Status = types.JobStatusOpen
	job.RequiredSkill = workflow.NormalizeSkill(job.RequiredSkill)
	job.CreatedAt = now
	job.UpdatedAt = now

	query, args, err := psql().
		Insert(jobTableName).
		SetMap(utils.ColumnMap(job)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert job query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create job")
}

func (r *JobRepository) UpdateStatus(ctx context.Context, jobID string, from, to types.JobStatus) (*types.Job, error) {
	query, args, err := psql().
		Update(jobTableName).
		SetMap(map[string]any{"status": to, "updated_at": time.Now()}).
		Where(sq.Eq{"id": jobID, "status": from}).
		Suffix(returning(jobColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update job status query for job %s: %w", jobID, err)
	}

	var job types.Job
	err = pgxscan.Get(ctx, r.db, &job, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			if _, lookupErr := r.Job(ctx, jobID); lookupErr != nil {
				return nil, lookupErr
			}
			return nil, types.ErrInvalidTransition
		}
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	return &job, nil
}
