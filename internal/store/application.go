package store

import (
	"context"
	"fmt"
	"time"

	"strot/internal/utils"
	"strot/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const applicationTableName = "applications"

var applicationColumns = utils.Columns(types.Application{})

type ApplicationRepository struct {
	db DB
}

func NewApplicationRepository(db DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Application(ctx context.Context, applicationID string) (*types.Application, error) {
	query, args, err := psql().
		Select(applicationColumns...).
		From(applicationTableName).
		Where(sq.Eq{"id": applicationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate application query: %w", err)
	}

	var application types.Application
	err = pgxscan.Get(ctx, r.db, &application, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to fetch application: %w", err)
	}

	return &application, nil
}

func (r *ApplicationRepository) ApplicationsByJob(ctx context.Context, jobID string) ([]*types.Application, error) {
	query, args, err := psql().
		Select(applicationColumns...).
		From(applicationTableName).
		Where(sq.Eq{"job_id": jobID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate applications query: %w", err)
	}

	applications := make([]*types.Application, 0)
	err = pgxscan.Select(ctx, r.db, &applications, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch applications for job %s: %w", jobID, err)
	}

	return applications, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, application *types.Application) error {
	now := time.Now()
	application.ID = utils.NanoID()
	application.Status = types.ApplicationStatusPending
	application.DecidedAt = nil
	application.CreatedAt = now
	application.UpdatedAt = now

	query, args, err := psql().
		Insert(applicationTableName).
		SetMap(utils.ColumnMap(application)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert application query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

func decideApplicationQuery(applicationID string, to types.ApplicationStatus, now time.Time) (string, []any, error) {
	return psql().
		Update(applicationTableName).
		SetMap(map[string]any{
			"status":     to,
			"decided_at": now,
			"updated_at": now,
		}).
		Where(sq.Eq{"id": applicationID, "status": types.ApplicationStatusPending}).
		Suffix(returning(applicationColumns)).
		ToSql()
}

// Decide selects or rejects a pending application. Selecting is a placement:
// the worker must still be available and is marked placed in the same
// transaction, so a worker is never placed twice.
func (r *ApplicationRepository) Decide(ctx context.Context, applicationID string, to types.ApplicationStatus) (*types.Application, error) {
	var application types.Application

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := decideApplicationQuery(applicationID, to, time.Now())
		if err != nil {
			return fmt.Errorf("failed to generate decide application query for application %s: %w", applicationID, err)
		}

		err = pgxscan.Get(ctx, tx, &application, query, args...)
		if err != nil {
			if pgxscan.NotFound(err) {
				if _, lookupErr := r.Application(ctx, applicationID); lookupErr != nil {
					return lookupErr
				}
				return types.ErrInvalidTransition
			}
			return fmt.Errorf("failed to decide application: %w", err)
		}

		if to != types.ApplicationStatusSelected {
			return nil
		}

		query, args, err = updateWorkerStatusQuery(application.WorkerID, types.WorkerStatusAvailable, types.WorkerStatusPlaced)
		if err != nil {
			return fmt.Errorf("failed to generate placement query: %w", err)
		}

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to place worker %s: %w", application.WorkerID, err)
		}
		if tag.RowsAffected() == 0 {
			return types.ErrInvalidTransition
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &application, nil
}
