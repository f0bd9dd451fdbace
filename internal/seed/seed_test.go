package seed

import (
	"bytes"
	"context"
	"testing"

	"strot/internal/auth"
	"strot/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCategories struct {
	rows    map[string]*types.DonationCategory
	deleted []string
}

func (f *fakeCategories) AllCategoriesUnfiltered(context.Context) ([]*types.DonationCategory, error) {
	out := make([]*types.DonationCategory, 0, len(f.rows))
	for _, c := range f.rows {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCategories) DeleteCategory(_ context.Context, id string) error {
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCategories) UpsertCategory(_ context.Context, c *types.DonationCategory) error {
	copied := *c
	f.rows[c.ID] = &copied
	return nil
}

func TestSeedCategoriesSyncs(t *testing.T) {
	repo := &fakeCategories{rows: map[string]*types.DonationCategory{
		"stale": {ID: "stale", Name: "Old", Slug: "old"},
	}}

	var out bytes.Buffer
	require.NoError(t, SeedCategories(context.Background(), &out, repo))

	assert.Equal(t, []string{"stale"}, repo.deleted)
	assert.Len(t, repo.rows, len(Categories))
	assert.Contains(t, out.String(), "Sync complete")
}

func TestCategoryIDsAndSlugsUnique(t *testing.T) {
	ids := map[string]bool{}
	slugs := map[string]bool{}
	for _, c := range Categories {
		assert.Len(t, c.ID, 32, c.Slug)
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		assert.False(t, slugs[c.Slug], "duplicate slug %s", c.Slug)
		ids[c.ID] = true
		slugs[c.Slug] = true
	}
}

type fakeAdmins struct {
	users map[string]*types.User
}

func (f *fakeAdmins) UserByEmail(_ context.Context, email string) (*types.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, types.ErrUserNotFound
}

func (f *fakeAdmins) Create(_ context.Context, u *types.User) error {
	u.ID = "admin-1"
	f.users[u.Email] = u
	return nil
}

func (f *fakeAdmins) UpdateRole(_ context.Context, id string, role types.Role) (*types.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			u.Role = role
			return u, nil
		}
	}
	return nil, types.ErrUserNotFound
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	users := &fakeAdmins{users: map[string]*types.User{}}
	require.Error(t, SeedAdmin(ctx, &out, users, "Admin@Strot.local", ""))

	require.NoError(t, SeedAdmin(ctx, &out, users, "Admin@Strot.local", "s3cretpass"))
	admin := users.users["admin@strot.local"]
	require.NotNil(t, admin)
	assert.Equal(t, types.RoleAdmin, admin.Role)
	assert.NoError(t, auth.VerifyPassword("s3cretpass", admin.PasswordHash))

	users.users["biz@example.com"] = &types.User{ID: "biz", Email: "biz@example.com", Role: types.RoleBusiness}
	require.NoError(t, SeedAdmin(ctx, &out, users, "biz@example.com", ""))
	assert.Equal(t, types.RoleAdmin, users.users["biz@example.com"].Role)
}
