package store

import (
	"context"
	"fmt"
	"time"

	"strot/internal/utils"
	"strot/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

const donationTableName = "donations"

var donationColumns = utils.Columns(types.Donation{})

type DonationRepository struct {
	db DB
}

func NewDonationRepository(db DB) *DonationRepository {
	return &DonationRepository{db: db}
}

func (r *DonationRepository) Donation(ctx context.Context, donationID string) (*types.Donation, error) {
	query, args, err := psql().
		Select(donationColumns...).
		From(donationTableName).
		Where(sq.Eq{"id": donationID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate donation query: %w", err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, r.db, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonationNotFound
		}
		return nil, fmt.Errorf("failed to fetch donation: %w", err)
	}

	return &donation, nil
}

func listDonationsQuery(filter types.DonationFilter) (string, []any, error) {
	builder := psql().
		Select(donationColumns...).
		From(donationTableName).
		OrderBy("created_at DESC")

	if filter.DonorID != "" {
		builder = builder.Where(sq.Eq{"donor_id": filter.DonorID})
	}

	switch {
	case filter.CommunityHeadID != "" && filter.IncludePending:
		builder = builder.Where(sq.Or{
			sq.Eq{"community_head_id": filter.CommunityHeadID},
			sq.Eq{"status": types.DonationStatusPending},
		})
	case filter.CommunityHeadID != "":
		builder = builder.Where(sq.Eq{"community_head_id": filter.CommunityHeadID})
	case filter.IncludePending && filter.DonorID == "":
		builder = builder.Where(sq.Eq{"status": types.DonationStatusPending})
	}

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"status": filter.Status})
	}

	return builder.ToSql()
}

func (r *DonationRepository) Donations(ctx context.Context, filter types.DonationFilter) ([]*types.Donation, error) {
	query, args, err := listDonationsQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate donations query: %w", err)
	}

	donations := make([]*types.Donation, 0)
	err = pgxscan.Select(ctx, r.db, &donations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch donations: %w", err)
	}

	return donations, nil
}

func (r *DonationRepository) Create(ctx context.Context, donation *types.Donation) error {
	now := time.Now()
	donation.ID = utils.NanoID()
	donation.Status = types.DonationStatusPending
	donation.CommunityHeadID = nil
	donation.ClaimedAt = nil
	donation.DeliveredAt = nil
	donation.ProofImage = nil
	donation.CreatedAt = now
	donation.UpdatedAt = now

	query, args, err := psql().
		Insert(donationTableName).
		SetMap(utils.ColumnMap(donation)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate insert donation query: %w", err)
	}

	_, err = r.db.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create donation")
}

func claimDonationQuery(donationID, communityHeadID string, now time.Time) (string, []any, error) {
	return psql().
		Update(donationTableName).
		SetMap(map[string]any{
			"status":            types.DonationStatusClaimed,
			"community_head_id": communityHeadID,
			"claimed_at":        now,
			"updated_at":        now,
		}).
		Where(sq.Eq{"id": donationID, "status": types.DonationStatusPending}).
		Suffix(returning(donationColumns)).
		ToSql()
}

// Claim assigns a pending donation to a community head. When two heads race
// for the same donation the first update wins and the second sees
// ErrInvalidTransition.
func (r *DonationRepository) Claim(ctx context.Context, donationID, communityHeadID string) (*types.Donation, error) {
	query, args, err := claimDonationQuery(donationID, communityHeadID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to generate claim donation query for donation %s: %w", donationID, err)
	}

	var donation types.Donation
	err = pgxscan.Get(ctx, r.db, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, r.missedTransition(ctx, donationID)
		}
		return nil, fmt.Errorf("failed to claim donation: %w", err)
	}

	return &donation, nil
}

func deliverDonationQuery(donationID, communityHeadID, proofImage string, now time.Time) (string, []any, error) {
	return psql().
		Update(donationTableName).
		SetMap(map[string]any{
			"status":       types.DonationStatusDelivered,
			"proof_image":  proofImage,
			"delivered_at": now,
			"updated_at":   now,
		}).
		Where(sq.Eq{
			"id":                donationID,
			"status":            types.DonationStatusClaimed,
			"community_head_id": communityHeadID,
		}).
		Suffix(returning(donationColumns)).
		ToSql()
}

// Deliver closes out a claimed donation with its proof image and credits the
// claiming community head's performance score in the same transaction.
func (r *DonationRepository) Deliver(ctx context.Context, donationID, communityHeadID, proofImage string) (*types.Donation, error) {
	var donation types.Donation

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query, args, err := deliverDonationQuery(donationID, communityHeadID, proofImage, time.Now())
		if err != nil {
			return fmt.Errorf("failed to generate deliver donation query for donation %s: %w", donationID, err)
		}

		err = pgxscan.Get(ctx, tx, &donation, query, args...)
		if err != nil {
			if pgxscan.NotFound(err) {
				return r.missedTransition(ctx, donationID)
			}
			return fmt.Errorf("failed to deliver donation: %w", err)
		}

		query, args, err = incrementScoreQuery(communityHeadID, 1)
		if err != nil {
			return fmt.Errorf("failed to generate performance score query: %w", err)
		}

		_, err = tx.Exec(ctx, query, args...)
		return utils.ErrorWrapOrNil(err, "failed to credit community head")
	})
	if err != nil {
		return nil, err
	}

	return &donation, nil
}

func (r *DonationRepository) missedTransition(ctx context.Context, donationID string) error {
	if _, err := r.Donation(ctx, donationID); err != nil {
		return err
	}
	return types.ErrInvalidTransition
}
