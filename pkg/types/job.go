package types

import "time"

type JobStatus string

const (
	JobStatusOpen   JobStatus = "open"
	JobStatusFilled JobStatus = "filled"
	JobStatusClosed JobStatus = "closed"
)

type Job struct {
	ID            string    `db:"id" json:"id"`
	BusinessID    string    `db:"business_id" json:"businessId"`
	Title         string    `db:"title" json:"title"`
	Description   *string   `db:"description" json:"description,omitempty"`
	RequiredSkill string    `db:"required_skill" json:"requiredSkill"`
	Locality      *string   `db:"locality" json:"locality,omitempty"`
	WageCents     int64     `db:"wage_cents" json:"wageCents"`
	Status        JobStatus `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

type WorkerStatus string

const (
	WorkerStatusAvailable WorkerStatus = "available"
	WorkerStatusPlaced    WorkerStatus = "placed"
	WorkerStatusInactive  WorkerStatus = "inactive"
)

type WorkerProfile struct {
	ID              string       `db:"id" json:"id"`
	CommunityHeadID string       `db:"community_head_id" json:"communityHeadId"`
	Name            string       `db:"name" json:"name"`
	Phone           *string      `db:"phone" json:"phone,omitempty"`
	Skill           string       `db:"skill" json:"skill"`
	Status          WorkerStatus `db:"status" json:"status"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusSelected ApplicationStatus = "selected"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

type Application struct {
	ID              string            `db:"id" json:"id"`
	JobID           string            `db:"job_id" json:"jobId"`
	WorkerID        string            `db:"worker_id" json:"workerId"`
	CommunityHeadID string            `db:"community_head_id" json:"communityHeadId"`
	Status          ApplicationStatus `db:"status" json:"status"`
	DecidedAt       *time.Time        `db:"decided_at" json:"decidedAt,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updatedAt"`
}
