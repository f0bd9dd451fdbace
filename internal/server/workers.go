package server

import (
	"net/http"
	"strings"

	"strot/internal/utils"
	"strot/internal/workflow"
	"strot/pkg/types"
)

type createWorkerRequest struct {
	Name  string `json:"name" form:"name"`
	Phone string `json:"phone" form:"phone"`
	Skill string `json:"skill" form:"skill"`
}

func (s *Service) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	head, err := s.activeCommunityHead(ctx, userFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	workers, err := s.workers.Workers(ctx, head.ID, r.URL.Query().Get("skill"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"workers": workers})
}

func (s *Service) handleCreateWorker(w http.ResponseWriter, r *http.Request) {
	var req createWorkerRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	fieldErrs := map[string]string{}
	if !required(req.Name) {
		fieldErrs["name"] = "Name is required."
	}
	if !required(req.Skill) {
		fieldErrs["skill"] = "Skill is required."
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

	worker := &types.WorkerProfile{
		CommunityHeadID: head.ID,
		Name:            strings.TrimSpace(req.Name),
		Phone:           utils.OptionalString(req.Phone),
		Skill:           req.Skill,
	}

	err = s.workers.Create(ctx, worker)
	if err != nil {
		s.logger.WithError(err).WithField("community_head_id", head.ID).Error("failed to create worker profile")
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, worker)
}

func (s *Service) handleUpdateWorkerStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	// placed is only reachable by selecting an application
	to := types.WorkerStatus(strings.TrimSpace(req.Status))
	if to != types.WorkerStatusAvailable && to != types.WorkerStatusInactive {
		s.writeError(w, r, newValidationError(map[string]string{"status": "Status must be available or inactive."}))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	head, err := s.activeCommunityHead(ctx, userFromContext(ctx))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	worker, err := s.workers.Worker(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if worker.CommunityHeadID != head.ID {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	if err := workflow.WorkerTransition(worker.Status, to); err != nil {
		s.writeError(w, r, err)
		return
	}

	worker, err = s.workers.UpdateStatus(ctx, worker.ID, worker.Status, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, worker)
}
