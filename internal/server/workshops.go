package server

import (
	"net/http"
	"strings"
	"time"

	"strot/internal/utils"
	"strot/internal/workflow"
	"strot/pkg/types"
)

type createWorkshopRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Locality    string `json:"locality" form:"locality"`
}

type approveWorkshopRequest struct {
	ScheduledAt string `json:"scheduledAt" form:"scheduled_at"`
}

var scheduleLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func parseSchedule(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *Service) handleListWorkshops(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	status := types.WorkshopStatus(r.URL.Query().Get("status"))
	if status != "" && !workflow.ValidWorkshopStatus(status) {
		s.writeError(w, r, newValidationError(map[string]string{"status": "Unknown workshop status."}))
		return
	}

	workshops, err := s.workshops.Workshops(ctx, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"workshops": workshops})
}

func (s *Service) handleCreateWorkshop(w http.ResponseWriter, r *http.Request) {
	var req createWorkshopRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if !required(req.Title) {
		s.writeError(w, r, newValidationError(map[string]string{"title": "Title is required."}))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	workshop := &types.Workshop{
		CreatorID:   user.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: utils.OptionalString(req.Description),
		Locality:    utils.OptionalString(req.Locality),
	}

	err := s.workshops.Create(ctx, workshop)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to create workshop proposal")
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, workshop)
}

func (s *Service) handleApproveWorkshop(w http.ResponseWriter, r *http.Request) {
	var req approveWorkshopRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if !required(req.ScheduledAt) {
		s.writeError(w, r, newValidationError(map[string]string{"scheduledAt": "A schedule date is required to approve a workshop."}))
		return
	}

	scheduledAt, ok := parseSchedule(req.ScheduledAt)
	if !ok {
		s.writeError(w, r, newValidationError(map[string]string{"scheduledAt": "Enter a valid date."}))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	head, err := s.activeCommunityHead(ctx, userFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	workshop, err := s.workshops.Workshop(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := workflow.WorkshopTransition(workshop.Status, types.WorkshopStatusApproved); err != nil {
		s.writeError(w, r, err)
		return
	}

	workshop, err = s.workshops.Approve(ctx, workshop.ID, head.ID, scheduledAt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("workshop_id", workshop.ID).WithField("community_head_id", head.ID).Info("workshop approved")

	s.writeJSON(w, http.StatusOK, workshop)
}

func (s *Service) handleRejectWorkshop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	head, err := s.activeCommunityHead(ctx, userFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	workshop, err := s.workshops.Workshop(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := workflow.WorkshopTransition(workshop.Status, types.WorkshopStatusRejected); err != nil {
		s.writeError(w, r, err)
		return
	}

	workshop, err = s.workshops.Reject(ctx, workshop.ID, head.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, workshop)
}

func (s *Service) handleCompleteWorkshop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	head, err := s.activeCommunityHead(ctx, userFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	workshop, err := s.workshops.Workshop(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if utils.PtrString(workshop.CommunityHeadID) != head.ID {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	if err := workflow.WorkshopTransition(workshop.Status, types.WorkshopStatusCompleted); err != nil {
		s.writeError(w, r, err)
		return
	}

	workshop, err = s.workshops.Complete(ctx, workshop.ID, head.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("workshop_id", workshop.ID).Info("workshop completed")

	s.writeJSON(w, http.StatusOK, workshop)
}
