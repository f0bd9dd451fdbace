package seed

import (
	"context"
	"fmt"
	"io"

	"strot/internal/utils"
	"strot/pkg/types"
)

type CategorySyncer interface {
	AllCategoriesUnfiltered(ctx context.Context) ([]*types.DonationCategory, error)
	DeleteCategory(ctx context.Context, categoryID string) error
	UpsertCategory(ctx context.Context, category *types.DonationCategory) error
}

// Categories is the source of truth for donation categories. Ids are fixed so
// re-running the seed updates rows in place.
//
// To generate new IDs: `go run ./cmd/strot nanoid`
var Categories = []types.DonationCategory{
	{
		ID:           "Qm3nX8vTz1LkP0aWc7RyE5uJd2HfGs9B",
		Name:         "Food & Groceries",
		Slug:         "food",
		Description:  utils.StringPtr("Dry rations, packaged food and grocery kits"),
		DisplayOrder: 1,
		IsActive:     true,
	},
	{
		ID:           "b7KpW2sYq9NcT4xZm1LvR8eHj3UdF6Ga",
		Name:         "Clothes",
		Slug:         "clothes",
		Description:  utils.StringPtr("Clean, wearable clothing and blankets"),
		DisplayOrder: 2,
		IsActive:     true,
	},
	{
		ID:           "Xc5Rt8Lw2Pq7Ym0Vn4Kj9Hs1Ga6Fd3Eb",
		Name:         "Books & Stationery",
		Slug:         "books",
		Description:  utils.StringPtr("School books, notebooks and writing material"),
		DisplayOrder: 3,
		IsActive:     true,
	},
	{
		ID:           "Jh4Ns9Bq2Wc7Lm5Rx1Tv8Kp3Yd6Gf0Ze",
		Name:         "Medicines & Hygiene",
		Slug:         "medicines",
		Description:  utils.StringPtr("Unexpired over-the-counter medicines and hygiene kits"),
		DisplayOrder: 4,
		IsActive:     true,
	},
	{
		ID:           "Vt6Gz1Md8Qs3Xn7Bk2Rw9Lc4Hj0Pf5Ya",
		Name:         "Household Items",
		Slug:         "household",
		Description:  utils.StringPtr("Utensils, furniture and small appliances"),
		DisplayOrder: 5,
		IsActive:     true,
	},
	{
		ID:           "Ed0Kw5Tq9Jm2Zs6Nv1Rb8Gx3Lc7Hp4Yf",
		Name:         "Toys",
		Slug:         "toys",
		Description:  utils.StringPtr("Toys and games in good condition"),
		DisplayOrder: 6,
		IsActive:     true,
	},
}

// SeedCategories syncs the database with Categories:
// - Inserts new categories that don't exist
// - Updates existing categories that have changed
// - Deletes categories from DB that aren't in the list
func SeedCategories(ctx context.Context, out io.Writer, repo CategorySyncer) error {
	fmt.Fprintln(out, "Starting category sync...")
	fmt.Fprintf(out, "  Seed file contains %d categories\n", len(Categories))

	seedIDs := make(map[string]bool)
	for _, cat := range Categories {
		seedIDs[cat.ID] = true
	}

	existing, err := repo.AllCategoriesUnfiltered(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch existing categories: %w", err)
	}
	fmt.Fprintf(out, "  Database contains %d categories\n", len(existing))

	deletedCount := 0
	for _, existingCat := range existing {
		if !seedIDs[existingCat.ID] {
			fmt.Fprintf(out, "  Deleting category: %s (id: %s)\n", existingCat.Name, existingCat.ID)
			if err := repo.DeleteCategory(ctx, existingCat.ID); err != nil {
				return fmt.Errorf("failed to delete category %s: %w", existingCat.ID, err)
			}
			deletedCount++
		}
	}

	upsertedCount := 0
	for _, cat := range Categories {
		fmt.Fprintf(out, "  Upserting category: %s (slug: %s)\n", cat.Name, cat.Slug)
		if err := repo.UpsertCategory(ctx, &cat); err != nil {
			return fmt.Errorf("failed to upsert category %s: %w", cat.Slug, err)
		}
		upsertedCount++
	}

	fmt.Fprintf(out, "\nSync complete: %d upserted, %d deleted\n", upsertedCount, deletedCount)
	return nil
}
