package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"strot/internal/utils"
	"strot/internal/workflow"
	"strot/pkg/types"
)

type createDonationRequest struct {
	Category      string `json:"category" form:"category"`
	Quantity      int    `json:"quantity" form:"quantity"`
	Description   string `json:"description" form:"description"`
	PickupAddress string `json:"pickupAddress" form:"pickup_address"`
}

type deliverDonationRequest struct {
	ProofImage string `json:"proofImage" form:"proof_image"`
}

// activeCommunityHead resolves the caller to an active community head
// record. Community head actions are refused without one.
func (s *Service) activeCommunityHead(ctx context.Context, user *types.User) (*types.CommunityHead, error) {
	head, err := s.communityHeads.CommunityHeadByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, types.ErrCommunityHeadNotFound) {
			return nil, errNoCommunityHead
		}
		return nil, err
	}

	if !workflow.CanActAsCommunityHead(user, head) {
		return nil, errNoCommunityHead
	}

	return head, nil
}

func (s *Service) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	categories, err := s.categories.AllCategories(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Service) handleListDonations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	status := types.DonationStatus(r.URL.Query().Get("status"))
	if status != "" && !workflow.ValidDonationStatus(status) {
		s.writeError(w, r, newValidationError(map[string]string{"status": "Unknown donation status."}))
		return
	}

	filter := types.DonationFilter{Status: status}

	switch user.Role {
	case types.RoleDonor:
		filter.DonorID = user.ID
	case types.RoleCommunityHead:
		head, err := s.activeCommunityHead(ctx, user)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		filter.CommunityHeadID = head.ID
		filter.IncludePending = true
	case types.RoleAdmin:
	default:
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	donations, err := s.donations.Donations(ctx, filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"donations": donations})
}

func (s *Service) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)
	donationID := r.PathValue("id")

	donation, err := s.donations.Donation(ctx, donationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.canViewDonation(ctx, user, donation); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, donation)
}

func (s *Service) canViewDonation(ctx context.Context, user *types.User, donation *types.Donation) error {
	switch user.Role {
	case types.RoleAdmin:
		return nil
	case types.RoleDonor:
		if donation.DonorID == user.ID {
			return nil
		}
	case types.RoleCommunityHead:
		head, err := s.activeCommunityHead(ctx, user)
		if err != nil {
			return err
		}
		if donation.Status == types.DonationStatusPending || utils.PtrString(donation.CommunityHeadID) == head.ID {
			return nil
		}
	}
	return types.ErrForbidden
}

func (s *Service) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	fieldErrs := map[string]string{}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		fieldErrs["category"] = "Category is required."
	} else if ok, err := s.knownCategory(ctx, category); err != nil {
		s.writeError(w, r, err)
		return
	} else if !ok {
		fieldErrs["category"] = "Unknown category."
	}
	if req.Quantity <= 0 {
		fieldErrs["quantity"] = "Quantity must be at least 1."
	}
	if len(fieldErrs) > 0 {
		s.writeError(w, r, newValidationError(fieldErrs))
		return
	}

	donation := &types.Donation{
		DonorID:       user.ID,
		Category:      category,
		Quantity:      req.Quantity,
		Description:   utils.OptionalString(req.Description),
		PickupAddress: utils.OptionalString(req.PickupAddress),
	}

	err := s.donations.Create(ctx, donation)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to create donation in datastore")
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, donation)
}

// knownCategory accepts any category while none are configured.
func (s *Service) knownCategory(ctx context.Context, slug string) (bool, error) {
	categories, err := s.categories.AllCategories(ctx)
	if err != nil {
		return false, err
	}

	if len(categories) == 0 {
		return true, nil
	}

	for _, c := range categories {
		if c.Slug == slug {
			return true, nil
		}
	}

	return false, nil
}

func (s *Service) handleClaimDonation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)
	donationID := r.PathValue("id")

	head, err := s.activeCommunityHead(ctx, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	donation, err := s.donations.Donation(ctx, donationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := workflow.DonationTransition(donation.Status, types.DonationStatusClaimed); err != nil {
		s.writeError(w, r, err)
		return
	}

	donation, err = s.donations.Claim(ctx, donationID, head.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("donation_id", donationID).WithField("community_head_id", head.ID).Info("donation claimed")

	s.writeJSON(w, http.StatusOK, donation)
}

func (s *Service) handleDeliverDonation(w http.ResponseWriter, r *http.Request) {
	var req deliverDonationRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)
	donationID := r.PathValue("id")

	head, err := s.activeCommunityHead(ctx, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	donation, err := s.donations.Donation(ctx, donationID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if utils.PtrString(donation.CommunityHeadID) != head.ID {
		s.writeError(w, r, types.ErrForbidden)
		return
	}

	if err := workflow.DonationTransition(donation.Status, types.DonationStatusDelivered); err != nil {
		s.writeError(w, r, err)
		return
	}

	proofImage, uploaded, err := s.proofImage(r, donationID, req.ProofImage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	donation, err = s.donations.Deliver(ctx, donationID, head.ID, proofImage)
	if err != nil {
		if uploaded {
			s.discardProof(r, donationID, proofImage)
		}
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("donation_id", donationID).WithField("community_head_id", head.ID).Info("donation delivered")

	s.writeJSON(w, http.StatusOK, donation)
}

// proofImage takes an uploaded "proof" file when the request is multipart
// and storage is configured, otherwise the proof string from the body.
// uploaded reports whether an object was written to storage.
func (s *Service) proofImage(r *http.Request, donationID, fromBody string) (proof string, uploaded bool, err error) {
	if r.MultipartForm != nil && s.proofs != nil {
		file, header, err := r.FormFile("proof")
		if err == nil {
			defer file.Close()

			contentType := header.Header.Get("Content-Type")
			if !strings.HasPrefix(contentType, "image/") {
				return "", false, newValidationError(map[string]string{"proof": "Proof must be an image."})
			}

			proof, err := s.proofs.UploadProof(r.Context(), donationID, header.Filename, contentType, file)
			if err != nil {
				return "", false, err
			}
			return proof, true, nil
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return "", false, err
		}
	}

	proof = strings.TrimSpace(fromBody)
	if proof == "" {
		return "", false, newValidationError(map[string]string{"proofImage": "A proof image is required to mark a donation delivered."})
	}

	return proof, false, nil
}

// discardProof removes an uploaded proof that never made it onto the
// donation row. The request context is used since the database context may
// have expired.
func (s *Service) discardProof(r *http.Request, donationID, proofURL string) {
	err := s.proofs.DeleteProof(r.Context(), proofURL)
	if err != nil {
		s.logger.WithError(err).WithField("donation_id", donationID).WithField("proof", proofURL).Error("failed to delete orphaned proof")
	}
}
