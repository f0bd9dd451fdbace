package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"strot/internal/utils"
	"strot/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

const userTableName = "users"

var userColumns = utils.Columns(types.User{})

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) User(ctx context.Context, userID string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"id": userID})
}

func (r *UserRepository) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *UserRepository) UserBySubject(ctx context.Context, subject string) (*types.User, error) {
	return r.userWhere(ctx, sq.Eq{"auth_subject": subject})
}

func (r *UserRepository) userWhere(ctx context.Context, where sq.Eq) (*types.User, error) {
	query, args, err := psql().
		Select(userColumns...).
		From(userTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	now := time.Now()
	if user.ID == "" {
		user.ID = utils.NanoID()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	query, args, err := psql().
		Insert(userTableName).
		SetMap(utils.ColumnMap(user)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create user query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return types.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// Delete removes a user that has no dependent rows yet. It backs out a
// registration that failed after the local insert.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	query, args, err := deleteUserQuery(userID)
	if err != nil {
		return fmt.Errorf("failed to generate delete user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrUserNotFound
	}

	return nil
}

func deleteUserQuery(userID string) (string, []any, error) {
	return psql().
		Delete(userTableName).
		Where(sq.Eq{"id": userID}).
		ToSql()
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID string, role types.Role) (*types.User, error) {
	return r.updateReturning(ctx, userID, map[string]any{"role": role})
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	_, err := r.updateReturning(ctx, userID, map[string]any{"password_hash": hash})
	return err
}

func (r *UserRepository) SetAuthSubject(ctx context.Context, userID, subject string) error {
	_, err := r.updateReturning(ctx, userID, map[string]any{"auth_subject": subject})
	return err
}

func (r *UserRepository) updateReturning(ctx context.Context, userID string, set map[string]any) (*types.User, error) {
	set["updated_at"] = time.Now()

	query, args, err := psql().
		Update(userTableName).
		SetMap(set).
		Where(sq.Eq{"id": userID}).
		Suffix(returning(userColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update user query: %w", err)
	}

	var user types.User
	err = pgxscan.Get(ctx, r.db, &user, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &user, nil
}
