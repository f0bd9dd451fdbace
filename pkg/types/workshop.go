package types

import "time"

type WorkshopStatus string

const (
	WorkshopStatusProposed  WorkshopStatus = "proposed"
	WorkshopStatusApproved  WorkshopStatus = "approved"
	WorkshopStatusRejected  WorkshopStatus = "rejected"
	WorkshopStatusCompleted WorkshopStatus = "completed"
)

type Workshop struct {
	ID              string         `db:"id" json:"id"`
	CreatorID       string         `db:"creator_id" json:"creatorId"`
	CommunityHeadID *string        `db:"community_head_id" json:"communityHeadId,omitempty"`
	Title           string         `db:"title" json:"title"`
	Description     *string        `db:"description" json:"description,omitempty"`
	Locality        *string        `db:"locality" json:"locality,omitempty"`
	Status          WorkshopStatus `db:"status" json:"status"`
	ScheduledAt     *time.Time     `db:"scheduled_at" json:"scheduledAt,omitempty"`
	CompletedAt     *time.Time     `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}
