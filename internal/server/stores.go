package server

import (
	"context"
	"io"
	"time"

	"strot/internal/auth"
	"strot/internal/payments"
	"strot/pkg/types"
)

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	UserBySubject(ctx context.Context, subject string) (*types.User, error)
	Create(ctx context.Context, user *types.User) error
	UpdateRole(ctx context.Context, userID string, role types.Role) (*types.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
	SetAuthSubject(ctx context.Context, userID, subject string) error
	Delete(ctx context.Context, userID string) error
}

type CommunityHeadStore interface {
	CommunityHead(ctx context.Context, id string) (*types.CommunityHead, error)
	CommunityHeadByUser(ctx context.Context, userID string) (*types.CommunityHead, error)
	CommunityHeads(ctx context.Context, status types.CommunityHeadStatus) ([]*types.CommunityHead, error)
	Create(ctx context.Context, head *types.CommunityHead) error
	UpdateStatus(ctx context.Context, id string, from, to types.CommunityHeadStatus, adminID string) (*types.CommunityHead, error)
}

type CategoryStore interface {
	AllCategories(ctx context.Context) ([]*types.DonationCategory, error)
}

type DonationStore interface {
	Donation(ctx context.Context, donationID string) (*types.Donation, error)
	Donations(ctx context.Context, filter types.DonationFilter) ([]*types.Donation, error)
	Create(ctx context.Context, donation *types.Donation) error
	Claim(ctx context.Context, donationID, communityHeadID string) (*types.Donation, error)
	Deliver(ctx context.Context, donationID, communityHeadID, proofImage string) (*types.Donation, error)
}

type JobStore interface {
	Job(ctx context.Context, jobID string) (*types.Job, error)
	Jobs(ctx context.Context, businessID string, status types.JobStatus) ([]*types.Job, error)
	Create(ctx context.Context, job *types.Job) error
	UpdateStatus(ctx context.Context, jobID string, from, to types.JobStatus) (*types.Job, error)
}

type WorkerStore interface {
	Worker(ctx context.Context, workerID string) (*types.WorkerProfile, error)
	Workers(ctx context.Context, communityHeadID, skill string) ([]*types.WorkerProfile, error)
	Create(ctx context.Context, worker *types.WorkerProfile) error
	UpdateStatus(ctx context.Context, workerID string, from, to types.WorkerStatus) (*types.WorkerProfile, error)
}

type ApplicationStore interface {
	Application(ctx context.Context, applicationID string) (*types.Application, error)
	ApplicationsByJob(ctx context.Context, jobID string) ([]*types.Application, error)
	Create(ctx context.Context, application *types.Application) error
	Decide(ctx context.Context, applicationID string, to types.ApplicationStatus) (*types.Application, error)
}

type WorkshopStore interface {
	Workshop(ctx context.Context, workshopID string) (*types.Workshop, error)
	Workshops(ctx context.Context, status types.WorkshopStatus) ([]*types.Workshop, error)
	Create(ctx context.Context, workshop *types.Workshop) error
	Approve(ctx context.Context, workshopID, communityHeadID string, scheduledAt time.Time) (*types.Workshop, error)
	Reject(ctx context.Context, workshopID, communityHeadID string) (*types.Workshop, error)
	Complete(ctx context.Context, workshopID, communityHeadID string) (*types.Workshop, error)
}

type CSRStore interface {
	Ledger(ctx context.Context, businessID string) (*types.CSRLedger, error)
	RecordContribution(ctx context.Context, txn *types.CSRTransaction) error
	RecordDisbursement(ctx context.Context, txn *types.CSRTransaction) error
}

// Repositories groups the datastore dependencies of the service.
type Repositories struct {
	Users          UserStore
	CommunityHeads CommunityHeadStore
	Categories     CategoryStore
	Donations      DonationStore
	Jobs           JobStore
	Workers        WorkerStore
	Applications   ApplicationStore
	Workshops      WorkshopStore
	CSR            CSRStore
}

type ProofStorage interface {
	UploadProof(ctx context.Context, donationID, fileName, contentType string, body io.Reader) (string, error)
	DeleteProof(ctx context.Context, proofURL string) error
}

type PaymentProvider interface {
	CreateContributionIntent(ctx context.Context, businessID string, amountCents int64, purpose string) (*payments.Intent, error)
}

type IdentityProvider interface {
	SignUp(ctx context.Context, email, password, name string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, int, error)
}

type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*auth.Claims, error)
}

// Integrations are the optional external services. Any of them may be nil,
// in which case the matching feature is disabled.
type Integrations struct {
	Proofs   ProofStorage
	Payments PaymentProvider
	Identity IdentityProvider
	Verifier TokenVerifier
}
