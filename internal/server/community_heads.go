package server

import (
	"net/http"
	"strings"

	"strot/internal/workflow"
	"strot/pkg/types"
)

func (s *Service) handleListCommunityHeads(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	status := types.CommunityHeadStatus(r.URL.Query().Get("status"))
	if status != "" && !workflow.ValidCommunityHeadStatus(status) {
		s.writeError(w, r, newValidationError(map[string]string{"status": "Unknown community head status."}))
		return
	}

	heads, err := s.communityHeads.CommunityHeads(ctx, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"communityHeads": heads})
}

// handleUpdateCommunityHeadStatus approves, suspends or expires a community
// head. Activating stamps the approving admin.
func (s *Service) handleUpdateCommunityHeadStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	to := types.CommunityHeadStatus(strings.TrimSpace(req.Status))
	if !workflow.ValidCommunityHeadStatus(to) {
		s.writeError(w, r, newValidationError(map[string]string{"status": "Unknown community head status."}))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	admin := userFromContext(ctx)

	head, err := s.communityHeads.CommunityHead(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := workflow.CommunityHeadTransition(head.Status, to); err != nil {
		s.writeError(w, r, err)
		return
	}

	head, err = s.communityHeads.UpdateStatus(ctx, head.ID, head.Status, to, admin.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("community_head_id", head.ID).WithField("status", to).WithField("admin_id", admin.ID).Info("community head status updated")

	s.writeJSON(w, http.StatusOK, head)
}
