package store

import (
	"strings"
	"testing"
	"time"

	"strot/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimDonationQueryGuardsPendingStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	query, args, err := claimDonationQuery("don1", "ch1", now)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "UPDATE donations SET "), query)
	assert.Contains(t, query, "WHERE id = $")
	assert.Contains(t, query, "AND status = $")
	assert.Contains(t, query, "RETURNING id, donor_id, community_head_id")
	assert.Contains(t, args, "don1")
	assert.Contains(t, args, "ch1")
	assert.Contains(t, args, types.DonationStatusPending)
	assert.Contains(t, args, types.DonationStatusClaimed)
	assert.Contains(t, args, now)
}

func TestDeliverDonationQueryRequiresClaimingHead(t *testing.T) {
	query, args, err := deliverDonationQuery("don1", "ch1", "https://cdn/proof.jpg", time.Now())
	require.NoError(t, err)

	assert.Contains(t, query, "community_head_id = $")
	assert.Contains(t, query, "status = $")
	assert.Contains(t, args, types.DonationStatusClaimed)
	assert.Contains(t, args, types.DonationStatusDelivered)
	assert.Contains(t, args, "https://cdn/proof.jpg")
}

func TestListDonationsQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   types.DonationFilter
		contains []string
		args     []any
	}{
		{
			name:     "donor",
			filter:   types.DonationFilter{DonorID: "d1"},
			contains: []string{"WHERE donor_id = $1"},
			args:     []any{"d1"},
		},
		{
			name:     "community head with pending pool",
			filter:   types.DonationFilter{CommunityHeadID: "ch1", IncludePending: true},
			contains: []string{"(community_head_id = $1 OR status = $2)"},
			args:     []any{"ch1", types.DonationStatusPending},
		},
		{
			name:     "pending only",
			filter:   types.DonationFilter{IncludePending: true},
			contains: []string{"WHERE status = $1"},
			args:     []any{types.DonationStatusPending},
		},
		{
			name:     "admin with status",
			filter:   types.DonationFilter{Status: types.DonationStatusDelivered},
			contains: []string{"WHERE status = $1"},
			args:     []any{types.DonationStatusDelivered},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := listDonationsQuery(tt.filter)
			require.NoError(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, query, c)
			}
			assert.Contains(t, query, "ORDER BY created_at DESC")
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestDecideApplicationQueryOnlyFromPending(t *testing.T) {
	query, args, err := decideApplicationQuery("app1", types.ApplicationStatusSelected, time.Now())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "UPDATE applications SET "))
	assert.Contains(t, args, types.ApplicationStatusPending)
	assert.Contains(t, args, types.ApplicationStatusSelected)
}

func TestUpdateWorkerStatusQuery(t *testing.T) {
	query, args, err := updateWorkerStatusQuery("w1", types.WorkerStatusAvailable, types.WorkerStatusPlaced)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(query, "UPDATE worker_profiles SET "))
	assert.Contains(t, query, "RETURNING ")
	assert.Contains(t, args, "w1")
	assert.Contains(t, args, types.WorkerStatusAvailable)
	assert.Contains(t, args, types.WorkerStatusPlaced)
}

func TestDeleteUserQuery(t *testing.T) {
	query, args, err := deleteUserQuery("u1")
	require.NoError(t, err)

	assert.Equal(t, "DELETE FROM users WHERE id = $1", query)
	assert.Equal(t, []any{"u1"}, args)
}

func TestIncrementScoreQuery(t *testing.T) {
	query, args, err := incrementScoreQuery("ch1", 1)
	require.NoError(t, err)

	assert.Contains(t, query, "performance_score = performance_score + $1")
	assert.Equal(t, 1, args[0])
	assert.Equal(t, "ch1", args[len(args)-1])
}

func TestColumnsFollowStructTags(t *testing.T) {
	assert.Equal(t, "id", donationColumns[0])
	assert.NotContains(t, userColumns, "")
	assert.Contains(t, userColumns, "password_hash")
	assert.Contains(t, csrColumns, "payment_intent_id")
}
