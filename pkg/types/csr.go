package types

import "time"

type CSRKind string

const (
	CSRKindContribution CSRKind = "contribution"
	CSRKindDisbursement CSRKind = "disbursement"
)

// CSRTransaction is one entry in a business's CSR funds ledger. Amounts are
// always positive; Kind decides the sign when computing a balance.
type CSRTransaction struct {
	ID              string    `db:"id" json:"id"`
	BusinessID      string    `db:"business_id" json:"businessId"`
	Kind            CSRKind   `db:"kind" json:"kind"`
	AmountCents     int64     `db:"amount_cents" json:"amountCents"`
	Purpose         *string   `db:"purpose" json:"purpose,omitempty"`
	WorkshopID      *string   `db:"workshop_id" json:"workshopId,omitempty"`
	PaymentIntentID *string   `db:"payment_intent_id" json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

func (t *CSRTransaction) SignedAmount() int64 {
	if t.Kind == CSRKindDisbursement {
		return -t.AmountCents
	}
	return t.AmountCents
}

type CSRLedger struct {
	BusinessID   string            `json:"businessId"`
	BalanceCents int64             `json:"balanceCents"`
	Entries      []*CSRTransaction `json:"entries"`
}
