package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"strot/internal/workflow"
	"strot/pkg/types"
)

// memory backs every store interface with maps so handlers can be exercised
// through the real router.
type memory struct {
	mu   sync.Mutex
	next int

	users        map[string]*types.User
	heads        map[string]*types.CommunityHead
	categories   []*types.DonationCategory
	donations    map[string]*types.Donation
	jobs         map[string]*types.Job
	workers      map[string]*types.WorkerProfile
	applications map[string]*types.Application
	workshops    map[string]*types.Workshop
	ledger       []*types.CSRTransaction

	deliverErr    error
	createUserErr error
}

func newMemory() *memory {
	return &memory{
		users:        map[string]*types.User{},
		heads:        map[string]*types.CommunityHead{},
		donations:    map[string]*types.Donation{},
		jobs:         map[string]*types.Job{},
		workers:      map[string]*types.WorkerProfile{},
		applications: map[string]*types.Application{},
		workshops:    map[string]*types.Workshop{},
	}
}

func (m *memory) id(prefix string) string {
	m.next++
	return fmt.Sprintf("%s-%d", prefix, m.next)
}

func (m *memory) repositories() Repositories {
	return Repositories{
		Users:          &memUsers{m},
		CommunityHeads: &memHeads{m},
		Categories:     &memCategories{m},
		Donations:      &memDonations{m},
		Jobs:           &memJobs{m},
		Workers:        &memWorkers{m},
		Applications:   &memApplications{m},
		Workshops:      &memWorkshops{m},
		CSR:            &memCSR{m},
	}
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

type memUsers struct{ m *memory }

func (s *memUsers) User(_ context.Context, userID string) (*types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *memUsers) UserByEmail(_ context.Context, email string) (*types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			return clone(u), nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (s *memUsers) UserBySubject(_ context.Context, subject string) (*types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if u.AuthSubject != nil && *u.AuthSubject == subject {
			return clone(u), nil
		}
	}
	return nil, types.ErrUserNotFound
}

func (s *memUsers) Create(_ context.Context, user *types.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.createUserErr != nil {
		return s.m.createUserErr
	}
	for _, u := range s.m.users {
		if u.Email == user.Email {
			return types.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = s.m.id("user")
	}
	user.CreatedAt = time.Now()
	s.m.users[user.ID] = clone(user)
	return nil
}

func (s *memUsers) UpdateRole(_ context.Context, userID string, role types.Role) (*types.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	u.Role = role
	return clone(u), nil
}

func (s *memUsers) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[userID]
	if !ok {
		return types.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *memUsers) SetAuthSubject(_ context.Context, userID, subject string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[userID]
	if !ok {
		return types.ErrUserNotFound
	}
	u.AuthSubject = &subject
	return nil
}

func (s *memUsers) Delete(_ context.Context, userID string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[userID]; !ok {
		return types.ErrUserNotFound
	}
	delete(s.m.users, userID)
	return nil
}

type memHeads struct{ m *memory }

func (s *memHeads) CommunityHead(_ context.Context, id string) (*types.CommunityHead, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	h, ok := s.m.heads[id]
	if !ok {
		return nil, types.ErrCommunityHeadNotFound
	}
	return clone(h), nil
}

func (s *memHeads) CommunityHeadByUser(_ context.Context, userID string) (*types.CommunityHead, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, h := range s.m.heads {
		if h.UserID == userID {
			return clone(h), nil
		}
	}
	return nil, types.ErrCommunityHeadNotFound
}

func (s *memHeads) CommunityHeads(_ context.Context, status types.CommunityHeadStatus) ([]*types.CommunityHead, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	heads := make([]*types.CommunityHead, 0)
	for _, h := range s.m.heads {
		if status == "" || h.Status == status {
			heads = append(heads, clone(h))
		}
	}
	return heads, nil
}

func (s *memHeads) Create(_ context.Context, head *types.CommunityHead) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if head.ID == "" {
		head.ID = s.m.id("ch")
	}
	if head.Status == "" {
		head.Status = types.CommunityHeadStatusPending
	}
	s.m.heads[head.ID] = clone(head)
	return nil
}

func (s *memHeads) UpdateStatus(_ context.Context, id string, from, to types.CommunityHeadStatus, adminID string) (*types.CommunityHead, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	h, ok := s.m.heads[id]
	if !ok {
		return nil, types.ErrCommunityHeadNotFound
	}
	if h.Status != from {
		return nil, types.ErrInvalidTransition
	}
	h.Status = to
	if to == types.CommunityHeadStatusActive {
		now := time.Now()
		h.ApprovedAt = &now
		h.ApprovedBy = &adminID
	}
	return clone(h), nil
}

type memCategories struct{ m *memory }

func (s *memCategories) AllCategories(context.Context) ([]*types.DonationCategory, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return append([]*types.DonationCategory{}, s.m.categories...), nil
}

type memDonations struct{ m *memory }

func (s *memDonations) Donation(_ context.Context, donationID string) (*types.Donation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	d, ok := s.m.donations[donationID]
	if !ok {
		return nil, types.ErrDonationNotFound
	}
	return clone(d), nil
}

func (s *memDonations) Donations(_ context.Context, filter types.DonationFilter) ([]*types.Donation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	donations := make([]*types.Donation, 0)
	for _, d := range s.m.donations {
		if filter.DonorID != "" && d.DonorID != filter.DonorID {
			continue
		}
		if filter.CommunityHeadID != "" {
			own := d.CommunityHeadID != nil && *d.CommunityHeadID == filter.CommunityHeadID
			if !own && !(filter.IncludePending && d.Status == types.DonationStatusPending) {
				continue
			}
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		donations = append(donations, clone(d))
	}
	return donations, nil
}

func (s *memDonations) Create(_ context.Context, donation *types.Donation) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	donation.ID = s.m.id("donation")
	donation.Status = types.DonationStatusPending
	s.m.donations[donation.ID] = clone(donation)
	return nil
}

func (s *memDonations) Claim(_ context.Context, donationID, communityHeadID string) (*types.Donation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	d, ok := s.m.donations[donationID]
	if !ok {
		return nil, types.ErrDonationNotFound
	}
	if d.Status != types.DonationStatusPending {
		return nil, types.ErrInvalidTransition
	}
	now := time.Now()
	d.Status = types.DonationStatusClaimed
	d.CommunityHeadID = &communityHeadID
	d.ClaimedAt = &now
	return clone(d), nil
}

func (s *memDonations) Deliver(_ context.Context, donationID, communityHeadID, proofImage string) (*types.Donation, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.deliverErr != nil {
		return nil, s.m.deliverErr
	}
	d, ok := s.m.donations[donationID]
	if !ok {
		return nil, types.ErrDonationNotFound
	}
	if d.Status != types.DonationStatusClaimed || d.CommunityHeadID == nil || *d.CommunityHeadID != communityHeadID {
		return nil, types.ErrInvalidTransition
	}
	now := time.Now()
	d.Status = types.DonationStatusDelivered
	d.ProofImage = &proofImage
	d.DeliveredAt = &now
	if h, ok := s.m.heads[communityHeadID]; ok {
		h.PerformanceScore++
	}
	return clone(d), nil
}

type memJobs struct{ m *memory }

func (s *memJobs) Job(_ context.Context, jobID string) (*types.Job, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	j, ok := s.m.jobs[jobID]
	if !ok {
		return nil, types.ErrJobNotFound
	}
	return clone(j), nil
}

func (s *memJobs) Jobs(_ context.Context, businessID string, status types.JobStatus) ([]*types.Job, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	jobs := make([]*types.Job, 0)
	for _, j := range s.m.jobs {
		if (businessID == "" || j.BusinessID == businessID) && (status == "" || j.Status == status) {
			jobs = append(jobs, clone(j))
		}
	}
	return jobs, nil
}

func (s *memJobs) Create(_ context.Context, job *types.Job) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	job.ID = s.m.id("job")
	job.Status = types.JobStatusOpen
	job.RequiredSkill = workflow.NormalizeSkill(job.RequiredSkill)
	s.m.jobs[job.ID] = clone(job)
	return nil
}

func (s *memJobs) UpdateStatus(_ context.Context, jobID string, from, to types.JobStatus) (*types.Job, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	j, ok := s.m.jobs[jobID]
	if !ok {
		return nil, types.ErrJobNotFound
	}
	if j.Status != from {
		return nil, types.ErrInvalidTransition
	}
	j.Status = to
	return clone(j), nil
}

type memWorkers struct{ m *memory }

func (s *memWorkers) Worker(_ context.Context, workerID string) (*types.WorkerProfile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	w, ok := s.m.workers[workerID]
	if !ok {
		return nil, types.ErrWorkerNotFound
	}
	return clone(w), nil
}

func (s *memWorkers) Workers(_ context.Context, communityHeadID, skill string) ([]*types.WorkerProfile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	workers := make([]*types.WorkerProfile, 0)
	for _, w := range s.m.workers {
		if communityHeadID != "" && w.CommunityHeadID != communityHeadID {
			continue
		}
		if skill != "" && w.Skill != workflow.NormalizeSkill(skill) {
			continue
		}
		workers = append(workers, clone(w))
	}
	return workers, nil
}

func (s *memWorkers) Create(_ context.Context, worker *types.WorkerProfile) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if worker.ID == "" {
		worker.ID = s.m.id("worker")
	}
	if worker.Status == "" {
		worker.Status = types.WorkerStatusAvailable
	}
	worker.Skill = workflow.NormalizeSkill(worker.Skill)
	s.m.workers[worker.ID] = clone(worker)
	return nil
}

func (s *memWorkers) UpdateStatus(_ context.Context, workerID string, from, to types.WorkerStatus) (*types.WorkerProfile, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	w, ok := s.m.workers[workerID]
	if !ok {
		return nil, types.ErrWorkerNotFound
	}
	if w.Status != from {
		return nil, types.ErrInvalidTransition
	}
	w.Status = to
	return clone(w), nil
}

type memApplications struct{ m *memory }

func (s *memApplications) Application(_ context.Context, applicationID string) (*types.Application, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.applications[applicationID]
	if !ok {
		return nil, types.ErrApplicationNotFound
	}
	return clone(a), nil
}

func (s *memApplications) ApplicationsByJob(_ context.Context, jobID string) ([]*types.Application, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	applications := make([]*types.Application, 0)
	for _, a := range s.m.applications {
		if a.JobID == jobID {
			applications = append(applications, clone(a))
		}
	}
	return applications, nil
}

func (s *memApplications) Create(_ context.Context, application *types.Application) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, a := range s.m.applications {
		if a.JobID == application.JobID && a.WorkerID == application.WorkerID {
			return types.ErrDuplicateApplication
		}
	}
	application.ID = s.m.id("application")
	application.Status = types.ApplicationStatusPending
	s.m.applications[application.ID] = clone(application)
	return nil
}

func (s *memApplications) Decide(_ context.Context, applicationID string, to types.ApplicationStatus) (*types.Application, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	a, ok := s.m.applications[applicationID]
	if !ok {
		return nil, types.ErrApplicationNotFound
	}
	if a.Status != types.ApplicationStatusPending {
		return nil, types.ErrInvalidTransition
	}
	if to == types.ApplicationStatusSelected {
		w := s.m.workers[a.WorkerID]
		if w == nil || w.Status != types.WorkerStatusAvailable {
			return nil, types.ErrInvalidTransition
		}
		w.Status = types.WorkerStatusPlaced
	}
	now := time.Now()
	a.Status = to
	a.DecidedAt = &now
	return clone(a), nil
}

type memWorkshops struct{ m *memory }

func (s *memWorkshops) Workshop(_ context.Context, workshopID string) (*types.Workshop, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	w, ok := s.m.workshops[workshopID]
	if !ok {
		return nil, types.ErrWorkshopNotFound
	}
	return clone(w), nil
}

func (s *memWorkshops) Workshops(_ context.Context, status types.WorkshopStatus) ([]*types.Workshop, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	workshops := make([]*types.Workshop, 0)
	for _, w := range s.m.workshops {
		if status == "" || w.Status == status {
			workshops = append(workshops, clone(w))
		}
	}
	return workshops, nil
}

func (s *memWorkshops) Create(_ context.Context, workshop *types.Workshop) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	workshop.ID = s.m.id("workshop")
	workshop.Status = types.WorkshopStatusProposed
	s.m.workshops[workshop.ID] = clone(workshop)
	return nil
}

func (s *memWorkshops) move(workshopID string, from, to types.WorkshopStatus, update func(w *types.Workshop)) (*types.Workshop, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	w, ok := s.m.workshops[workshopID]
	if !ok {
		return nil, types.ErrWorkshopNotFound
	}
	if w.Status != from {
		return nil, types.ErrInvalidTransition
	}
	w.Status = to
	update(w)
	return clone(w), nil
}

func (s *memWorkshops) Approve(_ context.Context, workshopID, communityHeadID string, scheduledAt time.Time) (*types.Workshop, error) {
	return s.move(workshopID, types.WorkshopStatusProposed, types.WorkshopStatusApproved, func(w *types.Workshop) {
		w.CommunityHeadID = &communityHeadID
		w.ScheduledAt = &scheduledAt
	})
}

func (s *memWorkshops) Reject(_ context.Context, workshopID, communityHeadID string) (*types.Workshop, error) {
	return s.move(workshopID, types.WorkshopStatusProposed, types.WorkshopStatusRejected, func(w *types.Workshop) {
		w.CommunityHeadID = &communityHeadID
	})
}

func (s *memWorkshops) Complete(_ context.Context, workshopID, _ string) (*types.Workshop, error) {
	return s.move(workshopID, types.WorkshopStatusApproved, types.WorkshopStatusCompleted, func(w *types.Workshop) {
		now := time.Now()
		w.CompletedAt = &now
	})
}

type memCSR struct{ m *memory }

func (s *memCSR) Ledger(_ context.Context, businessID string) (*types.CSRLedger, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	entries := s.entries(businessID)
	return &types.CSRLedger{
		BusinessID:   businessID,
		BalanceCents: workflow.CSRBalance(entries),
		Entries:      entries,
	}, nil
}

func (s *memCSR) entries(businessID string) []*types.CSRTransaction {
	entries := make([]*types.CSRTransaction, 0)
	for _, e := range s.m.ledger {
		if e.BusinessID == businessID {
			entries = append(entries, e)
		}
	}
	return entries
}

func (s *memCSR) RecordContribution(_ context.Context, txn *types.CSRTransaction) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	txn.ID = s.m.id("csr")
	txn.Kind = types.CSRKindContribution
	s.m.ledger = append(s.m.ledger, clone(txn))
	return nil
}

func (s *memCSR) RecordDisbursement(_ context.Context, txn *types.CSRTransaction) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if err := workflow.CanDisburse(workflow.CSRBalance(s.entries(txn.BusinessID)), txn.AmountCents); err != nil {
		return err
	}
	txn.ID = s.m.id("csr")
	txn.Kind = types.CSRKindDisbursement
	s.m.ledger = append(s.m.ledger, clone(txn))
	return nil
}
