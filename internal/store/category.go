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

const categoryTableName = "donation_categories"

var categoryColumns = utils.Columns(types.DonationCategory{})

type CategoryRepository struct {
	db DB
}

func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) AllCategories(ctx context.Context) ([]*types.DonationCategory, error) {
	query, args, err := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		Where(sq.Eq{"is_active": true}).
		OrderBy("display_order ASC", "name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate categories query: %w", err)
	}

	categories := make([]*types.DonationCategory, 0)
	err = pgxscan.Select(ctx, r.db, &categories, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

// AllCategoriesUnfiltered includes inactive categories.
func (r *CategoryRepository) AllCategoriesUnfiltered(ctx context.Context) ([]*types.DonationCategory, error) {
	query, args, err := psql().
		Select(categoryColumns...).
		From(categoryTableName).
		OrderBy("display_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate categories query: %w", err)
	}

	categories := make([]*types.DonationCategory, 0)
	err = pgxscan.Select(ctx, r.db, &categories, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	return categories, nil
}

func (r *CategoryRepository) DeleteCategory(ctx context.Context, categoryID string) error {
	query, args, err := psql().
		Delete(categoryTableName).
		Where(sq.Eq{"id": categoryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete category query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to delete category")
}

// UpsertCategory inserts a category or refreshes the one with the same slug.
func (r *CategoryRepository) UpsertCategory(ctx context.Context, category *types.DonationCategory) error {
	if category.ID == "" {
		category.ID = utils.NanoID()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}

	query, args, err := psql().
		Insert(categoryTableName).
		SetMap(utils.ColumnMap(category)).
		Suffix("ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, display_order = EXCLUDED.display_order, is_active = EXCLUDED.is_active").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert category query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert category")
}
