package workflow

import (
	"testing"

	"strot/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestCanActAsCommunityHead(t *testing.T) {
	user := &types.User{ID: "u1", Role: types.RoleCommunityHead}
	active := &types.CommunityHead{ID: "ch1", UserID: "u1", Status: types.CommunityHeadStatusActive}

	assert.True(t, CanActAsCommunityHead(user, active))
	assert.False(t, CanActAsCommunityHead(user, nil))
	assert.False(t, CanActAsCommunityHead(nil, active))

	pending := *active
	pending.Status = types.CommunityHeadStatusPending
	assert.False(t, CanActAsCommunityHead(user, &pending))

	other := *active
	other.UserID = "u2"
	assert.False(t, CanActAsCommunityHead(user, &other))

	donor := &types.User{ID: "u1", Role: types.RoleDonor}
	assert.False(t, CanActAsCommunityHead(donor, active))
}

func TestCanRegisterAs(t *testing.T) {
	assert.True(t, CanRegisterAs(types.RoleDonor))
	assert.True(t, CanRegisterAs(types.RoleBusiness))
	assert.True(t, CanRegisterAs(types.RoleCommunityHead))
	assert.False(t, CanRegisterAs(types.RoleAdmin))
	assert.False(t, CanRegisterAs("superuser"))
}

func TestHasRole(t *testing.T) {
	admin := &types.User{Role: types.RoleAdmin}
	assert.True(t, HasRole(admin, types.RoleAdmin, types.RoleBusiness))
	assert.False(t, HasRole(admin, types.RoleDonor))
	assert.False(t, HasRole(nil, types.RoleAdmin))
}

func TestCSRBalance(t *testing.T) {
	entries := []*types.CSRTransaction{
		{Kind: types.CSRKindContribution, AmountCents: 10000},
		{Kind: types.CSRKindDisbursement, AmountCents: 2500},
		{Kind: types.CSRKindContribution, AmountCents: 500},
	}
	balance := CSRBalance(entries)
	assert.EqualValues(t, 8000, balance)

	assert.NoError(t, CanDisburse(balance, 8000))
	assert.ErrorIs(t, CanDisburse(balance, 8001), types.ErrInsufficientFunds)
	assert.ErrorIs(t, CanDisburse(balance, 0), types.ErrInsufficientFunds)
	assert.EqualValues(t, 0, CSRBalance(nil))
}
