package server

import (
	"context"
	"net/http"
	"strings"

	"strot/internal/utils"
	"strot/internal/workflow"
	"strot/pkg/types"
)

type createJobRequest struct {
	Title         string `json:"title" form:"title"`
	Description   string `json:"description" form:"description"`
	RequiredSkill string `json:"requiredSkill" form:"required_skill"`
	Locality      string `json:"locality" form:"locality"`
	WageCents     int64  `json:"wageCents" form:"wage_cents"`
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

func (s *Service) handleListJobs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	status := types.JobStatus(r.URL.Query().Get("status"))
	if status != "" && !workflow.ValidJobStatus(status) {
		s.writeError(w, r, newValidationError(map[string]string{"status": "Unknown job status."}))
		return
	}

	var businessID string
	switch user.Role {
	case types.RoleBusiness:
		businessID = user.ID
	case types.RoleAdmin:
	default:
		status = types.JobStatusOpen
	}

	jobs, err := s.jobs.Jobs(ctx, businessID, status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Service) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	fieldErrs := map[string]string{}
	if !required(req.Title) {
		fieldErrs["title"] = "Title is required."
	}
	if !required(req.RequiredSkill) {
		fieldErrs["requiredSkill"] = "Required skill is required."
	}
	if req.WageCents < 0 {
		fieldErrs["wageCents"] = "Wage cannot be negative."
	}
	if len(fieldErrs) > 0 {
		s.writeError(w, r, newValidationError(fieldErrs))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	job := &types.Job{
		BusinessID:    user.ID,
		Title:         strings.TrimSpace(req.Title),
		Description:   utils.OptionalString(req.Description),
		RequiredSkill: req.RequiredSkill,
		Locality:      utils.OptionalString(req.Locality),
		WageCents:     req.WageCents,
	}

	err := s.jobs.Create(ctx, job)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to create job in datastore")
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, job)
}

// ownedJob loads a job and checks that user posted it.
func (s *Service) ownedJob(ctx context.Context, user *types.User, jobID string) (*types.Job, error) {
	job, err := s.jobs.Job(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.BusinessID != user.ID {
		return nil, types.ErrForbidden
	}

	return job, nil
}

func (s *Service) handleUpdateJobStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	to := types.JobStatus(strings.TrimSpace(req.Status))
	if !workflow.ValidJobStatus(to) {
		s.writeError(w, r, newValidationError(map[string]string{"status": "Status must be open, filled or closed."}))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	job, err := s.ownedJob(ctx, user, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := workflow.JobTransition(job.Status, to); err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err = s.jobs.UpdateStatus(ctx, job.ID, job.Status, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("job_id", job.ID).WithField("status", to).Info("job status updated")

	s.writeJSON(w, http.StatusOK, job)
}

// handleJobMatches lists available workers whose skill equals the job's.
// Community heads only see the workers they recruited.
func (s *Service) handleJobMatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	job, err := s.jobs.Job(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var communityHeadID string
	switch user.Role {
	case types.RoleCommunityHead:
		head, err := s.activeCommunityHead(ctx, user)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		communityHeadID = head.ID
	case types.RoleBusiness:
		if job.BusinessID != user.ID {
			s.writeError(w, r, types.ErrForbidden)
			return
		}
	case types.RoleAdmin:
	default:
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	workers, err := s.workers.Workers(ctx, communityHeadID, job.RequiredSkill)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"job":     job,
		"workers": workflow.MatchWorkers(job, workers),
	})
}

func (s *Service) handleListJobApplications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	job, err := s.ownedJob(ctx, user, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	applications, err := s.applications.ApplicationsByJob(ctx, job.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"applications": applications})
}
