package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"strot/internal/auth"
	"strot/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

const (
	dbTimeout      = 5 * time.Second
	maxUploadBytes = 10 << 20
)

type Service struct {
	logger   *logrus.Logger
	config   *types.Config
	sessions *auth.SessionCodec

	users          UserStore
	communityHeads CommunityHeadStore
	categories     CategoryStore
	donations      DonationStore
	jobs           JobStore
	workers        WorkerStore
	applications   ApplicationStore
	workshops      WorkshopStore
	csr            CSRStore

	proofs   ProofStorage
	payments PaymentProvider
	identity IdentityProvider
	verifier TokenVerifier

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	sessions *auth.SessionCodec,
	repos Repositories,
	integrations Integrations,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:   logger,
		config:   config,
		sessions: sessions,

		users:          repos.Users,
		communityHeads: repos.CommunityHeads,
		categories:     repos.Categories,
		donations:      repos.Donations,
		jobs:           repos.Jobs,
		workers:        repos.Workers,
		applications:   repos.Applications,
		workshops:      repos.Workshops,
		csr:            repos.CSR,

		proofs:   integrations.Proofs,
		payments: integrations.Payments,
		identity: integrations.Identity,
		verifier: integrations.Verifier,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.LoadUser)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)

	r.HandleFunc("/api/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/api/auth/token", s.handleManagedToken, http.MethodPost)
	r.HandleFunc("/api/categories", s.handleListCategories, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequirePageAuth)

		r.HandleFunc("/dashboard", s.handleDashboard, http.MethodGet)
	})

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/api/logout", s.handleLogout, http.MethodPost)
		r.HandleFunc("/api/me", s.handleMe, http.MethodGet)

		r.HandleFunc("/api/donations", s.handleListDonations, http.MethodGet)
		r.HandleFunc("/api/donations/:id", s.handleGetDonation, http.MethodGet)
		r.HandleFunc("/api/jobs", s.handleListJobs, http.MethodGet)
		r.HandleFunc("/api/jobs/:id/matches", s.handleJobMatches, http.MethodGet)
		r.HandleFunc("/api/workshops", s.handleListWorkshops, http.MethodGet)

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleDonor))

			r.HandleFunc("/api/donations", s.handleCreateDonation, http.MethodPost)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleCommunityHead))

			r.HandleFunc("/api/donations/:id/claim", s.handleClaimDonation, http.MethodPatch)
			r.HandleFunc("/api/donations/:id/deliver", s.handleDeliverDonation, http.MethodPatch)

			r.HandleFunc("/api/workers", s.handleListWorkers, http.MethodGet)
			r.HandleFunc("/api/workers", s.handleCreateWorker, http.MethodPost)
			r.HandleFunc("/api/workers/:id/status", s.handleUpdateWorkerStatus, http.MethodPatch)
			r.HandleFunc("/api/applications", s.handleCreateApplication, http.MethodPost)

			r.HandleFunc("/api/workshops/:id/approve", s.handleApproveWorkshop, http.MethodPatch)
			r.HandleFunc("/api/workshops/:id/reject", s.handleRejectWorkshop, http.MethodPatch)
			r.HandleFunc("/api/workshops/:id/complete", s.handleCompleteWorkshop, http.MethodPatch)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleBusiness))

			r.HandleFunc("/api/jobs", s.handleCreateJob, http.MethodPost)
			r.HandleFunc("/api/jobs/:id/status", s.handleUpdateJobStatus, http.MethodPatch)
			r.HandleFunc("/api/jobs/:id/applications", s.handleListJobApplications, http.MethodGet)
			r.HandleFunc("/api/applications/:id/status", s.handleDecideApplication, http.MethodPatch)
			r.HandleFunc("/api/csr/contributions", s.handleCreateContribution, http.MethodPost)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleBusiness, types.RoleCommunityHead))

			r.HandleFunc("/api/workshops", s.handleCreateWorkshop, http.MethodPost)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleBusiness, types.RoleAdmin))

			r.HandleFunc("/api/csr/ledger", s.handleGetLedger, http.MethodGet)
		})

		r.Group(func(r *flow.Mux) {
			r.Use(s.RequireRole(types.RoleAdmin))

			r.HandleFunc("/api/community-heads", s.handleListCommunityHeads, http.MethodGet)
			r.HandleFunc("/api/community-heads/:id/status", s.handleUpdateCommunityHeadStatus, http.MethodPatch)
			r.HandleFunc("/api/admin/users/:id/promote", s.handlePromoteUser, http.MethodPost)
			r.HandleFunc("/api/csr/disbursements", s.handleCreateDisbursement, http.MethodPost)
		})
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// dbContext bounds datastore work for a single request.
func dbContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), dbTimeout)
}
