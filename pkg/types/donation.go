package types

import "time"

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusClaimed   DonationStatus = "claimed"
	DonationStatusDelivered DonationStatus = "delivered"
)

type Donation struct {
	ID              string         `db:"id" json:"id"`
	DonorID         string         `db:"donor_id" json:"donorId"`
	CommunityHeadID *string        `db:"community_head_id" json:"communityHeadId,omitempty"`
	Category        string         `db:"category" json:"category"`
	Quantity        int            `db:"quantity" json:"quantity"`
	Description     *string        `db:"description" json:"description,omitempty"`
	PickupAddress   *string        `db:"pickup_address" json:"pickupAddress,omitempty"`
	Status          DonationStatus `db:"status" json:"status"`
	ProofImage      *string        `db:"proof_image" json:"proofImage,omitempty"`
	ClaimedAt       *time.Time     `db:"claimed_at" json:"claimedAt,omitempty"`
	DeliveredAt     *time.Time     `db:"delivered_at" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// DonationFilter narrows donation listings. Empty fields are ignored; when
// both DonorID and CommunityHeadID are empty and IncludePending is set, only
// unclaimed donations are returned.
type DonationFilter struct {
	DonorID         string
	CommunityHeadID string
	IncludePending  bool
	Status          DonationStatus
}
