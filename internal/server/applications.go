package server

import (
	"net/http"
	"strings"

	"strot/internal/workflow"
	"strot/pkg/types"
)

type createApplicationRequest struct {
	JobID    string `json:"jobId" form:"job_id"`
	WorkerID string `json:"workerId" form:"worker_id"`
}

// handleCreateApplication puts one of the caller's workers forward for an
// open job. The worker has to match the job.
func (s *Service) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	fieldErrs := map[string]string{}
	if !required(req.JobID) {
		fieldErrs["jobId"] = "Job is required."
	}
	if !required(req.WorkerID) {
		fieldErrs["workerId"] = "Worker is required."
	}
	if len(fieldErrs) > 0 {
		s.writeError(w, r, newValidationError(fieldErrs))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	head, err := s.activeCommunityHead(ctx, userFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	job, err := s.jobs.Job(ctx, strings.TrimSpace(req.JobID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	worker, err := s.workers.Worker(ctx, strings.TrimSpace(req.WorkerID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if worker.CommunityHeadID != head.ID {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	if job.Status != types.JobStatusOpen {
		s.writeJSONError(w, http.StatusConflict, "job_not_open", "This job is no longer accepting applications.")
		return
	}

	if !workflow.Matches(job, worker) {
		s.writeError(w, r, newValidationError(map[string]string{
			"workerId": "Worker must be available and have the job's required skill.",
		}))
		return
	}

	application := &types.Application{
		JobID:           job.ID,
		WorkerID:        worker.ID,
		CommunityHeadID: head.ID,
	}

	err = s.applications.Create(ctx, application)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("application_id", application.ID).WithField("job_id", job.ID).Info("application submitted")

	s.writeJSON(w, http.StatusCreated, application)
}

func (s *Service) handleDecideApplication(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	to := types.ApplicationStatus(strings.TrimSpace(req.Status))
	if to != types.ApplicationStatusSelected && to != types.ApplicationStatusRejected {
		s.writeError(w, r, newValidationError(map[string]string{"status": "Status must be selected or rejected."}))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	application, err := s.applications.Application(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if _, err := s.ownedJob(ctx, user, application.JobID); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := workflow.ApplicationTransition(application.Status, to); err != nil {
		s.writeError(w, r, err)
		return
	}

	if to == types.ApplicationStatusSelected {
		worker, err := s.workers.Worker(ctx, application.WorkerID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := workflow.Placement(worker.Status); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	application, err = s.applications.Decide(ctx, application.ID, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("application_id", application.ID).WithField("status", to).Info("application decided")

	s.writeJSON(w, http.StatusOK, application)
}
