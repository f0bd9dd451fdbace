package server

import (
	"context"
	"errors"
	"net/http"

	"strot/pkg/types"
)

type dashboardSection struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type dashboardData struct {
	User          *types.User          `json:"user"`
	CommunityHead *types.CommunityHead `json:"communityHead,omitempty"`
	Sections      []dashboardSection   `json:"sections"`
	Counts        map[string]int       `json:"counts"`
	BalanceCents  *int64               `json:"balanceCents,omitempty"`
}

// handleDashboard returns the landing summary for the caller's role.
func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	data := &dashboardData{
		User:     user,
		Sections: buildDashboardSections(user.Role),
		Counts:   map[string]int{},
	}

	var err error
	switch user.Role {
	case types.RoleDonor:
		err = s.donorDashboard(ctx, user, data)
	case types.RoleCommunityHead:
		err = s.communityHeadDashboard(ctx, user, data)
	case types.RoleBusiness:
		err = s.businessDashboard(ctx, user, data)
	case types.RoleAdmin:
		err = s.adminDashboard(ctx, data)
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to build dashboard")
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, data)
}

func (s *Service) donorDashboard(ctx context.Context, user *types.User, data *dashboardData) error {
	donations, err := s.donations.Donations(ctx, types.DonationFilter{DonorID: user.ID})
	if err != nil {
		return err
	}

	for _, d := range donations {
		data.Counts["donations_"+string(d.Status)]++
	}
	return nil
}

func (s *Service) communityHeadDashboard(ctx context.Context, user *types.User, data *dashboardData) error {
	head, err := s.communityHeads.CommunityHeadByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, types.ErrCommunityHeadNotFound) {
			return nil
		}
		return err
	}
	data.CommunityHead = head

	// pending and suspended heads only see their own status
	if head.Status != types.CommunityHeadStatusActive {
		return nil
	}

	donations, err := s.donations.Donations(ctx, types.DonationFilter{CommunityHeadID: head.ID, IncludePending: true})
	if err != nil {
		return err
	}
	for _, d := range donations {
		data.Counts["donations_"+string(d.Status)]++
	}

	workers, err := s.workers.Workers(ctx, head.ID, "")
	if err != nil {
		return err
	}
	for _, wp := range workers {
		data.Counts["workers_"+string(wp.Status)]++
	}

	return nil
}

func (s *Service) businessDashboard(ctx context.Context, user *types.User, data *dashboardData) error {
	jobs, err := s.jobs.Jobs(ctx, user.ID, "")
	if err != nil {
		return err
	}
	for _, j := range jobs {
		data.Counts["jobs_"+string(j.Status)]++
	}

	ledger, err := s.csr.Ledger(ctx, user.ID)
	if err != nil {
		return err
	}
	data.BalanceCents = &ledger.BalanceCents

	return nil
}

func (s *Service) adminDashboard(ctx context.Context, data *dashboardData) error {
	heads, err := s.communityHeads.CommunityHeads(ctx, types.CommunityHeadStatusPending)
	if err != nil {
		return err
	}
	data.Counts["community_heads_pending"] = len(heads)

	donations, err := s.donations.Donations(ctx, types.DonationFilter{})
	if err != nil {
		return err
	}
	for _, d := range donations {
		data.Counts["donations_"+string(d.Status)]++
	}

	return nil
}

func buildDashboardSections(role types.Role) []dashboardSection {
	switch role {
	case types.RoleDonor:
		return []dashboardSection{
			{Label: "My Donations", Href: "/api/donations"},
			{Label: "Categories", Href: "/api/categories"},
		}
	case types.RoleCommunityHead:
		return []dashboardSection{
			{Label: "Donations", Href: "/api/donations"},
			{Label: "Workers", Href: "/api/workers"},
			{Label: "Jobs", Href: "/api/jobs"},
			{Label: "Workshops", Href: "/api/workshops"},
		}
	case types.RoleBusiness:
		return []dashboardSection{
			{Label: "My Jobs", Href: "/api/jobs"},
			{Label: "Workshops", Href: "/api/workshops"},
			{Label: "CSR Ledger", Href: "/api/csr/ledger"},
		}
	case types.RoleAdmin:
		return []dashboardSection{
			{Label: "Community Heads", Href: "/api/community-heads"},
			{Label: "Donations", Href: "/api/donations"},
			{Label: "Workshops", Href: "/api/workshops"},
		}
	default:
		return []dashboardSection{}
	}
}
