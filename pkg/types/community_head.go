package types

import "time"

type CommunityHeadStatus string

const (
	CommunityHeadStatusPending   CommunityHeadStatus = "pending"
	CommunityHeadStatusActive    CommunityHeadStatus = "active"
	CommunityHeadStatusSuspended CommunityHeadStatus = "suspended"
	CommunityHeadStatusExpired   CommunityHeadStatus = "expired"
)

type CommunityHead struct {
	ID               string              `db:"id" json:"id"`
	UserID           string              `db:"user_id" json:"userId"`
	Locality         string              `db:"locality" json:"locality"`
	Status           CommunityHeadStatus `db:"status" json:"status"`
	PerformanceScore int                 `db:"performance_score" json:"performanceScore"`
	ApprovedAt       *time.Time          `db:"approved_at" json:"approvedAt,omitempty"`
	ApprovedBy       *string             `db:"approved_by" json:"approvedBy,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updatedAt"`
}
