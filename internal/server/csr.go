package server

import (
	"net/http"
	"strings"

	"strot/internal/utils"
	"strot/pkg/types"

	"github.com/sirupsen/logrus"
)

type contributionRequest struct {
	AmountCents int64  `json:"amountCents" form:"amount_cents"`
	Purpose     string `json:"purpose" form:"purpose"`
}

type contributionResponse struct {
	Transaction  *types.CSRTransaction `json:"transaction"`
	ClientSecret string                `json:"clientSecret,omitempty"`
}

type disbursementRequest struct {
	BusinessID  string `json:"businessId" form:"business_id"`
	AmountCents int64  `json:"amountCents" form:"amount_cents"`
	Purpose     string `json:"purpose" form:"purpose"`
	WorkshopID  string `json:"workshopId" form:"workshop_id"`
}

// handleCreateContribution records a business contribution. With a payment
// provider configured a payment intent is opened first and its id is kept on
// the ledger entry.
func (s *Service) handleCreateContribution(w http.ResponseWriter, r *http.Request) {
	var req contributionRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.AmountCents <= 0 {
		s.writeError(w, r, newValidationError(map[string]string{"amountCents": "Amount must be greater than zero."}))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	txn := &types.CSRTransaction{
		BusinessID:  user.ID,
		AmountCents: req.AmountCents,
		Purpose:     utils.OptionalString(req.Purpose),
	}

	resp := &contributionResponse{Transaction: txn}

	if s.payments != nil {
		intent, err := s.payments.CreateContributionIntent(ctx, user.ID, req.AmountCents, strings.TrimSpace(req.Purpose))
		if err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to create contribution payment intent")
			s.writeError(w, r, err)
			return
		}
		txn.PaymentIntentID = &intent.ID
		resp.ClientSecret = intent.ClientSecret
	}

	err := s.csr.RecordContribution(ctx, txn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":      user.ID,
		"amount_cents": txn.AmountCents,
	}).Info("csr contribution recorded")

	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Service) handleCreateDisbursement(w http.ResponseWriter, r *http.Request) {
	var req disbursementRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	fieldErrs := map[string]string{}
	if !required(req.BusinessID) {
		fieldErrs["businessId"] = "Business is required."
	}
	if req.AmountCents <= 0 {
		fieldErrs["amountCents"] = "Amount must be greater than zero."
	}
	if len(fieldErrs) > 0 {
		s.writeError(w, r, newValidationError(fieldErrs))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	business, err := s.users.User(ctx, strings.TrimSpace(req.BusinessID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if business.Role != types.RoleBusiness {
		s.writeError(w, r, newValidationError(map[string]string{"businessId": "User is not a business."}))
		return
	}

	workshopID := utils.OptionalString(req.WorkshopID)
	if workshopID != nil {
		if _, err := s.workshops.Workshop(ctx, *workshopID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	txn := &types.CSRTransaction{
		BusinessID:  business.ID,
		AmountCents: req.AmountCents,
		Purpose:     utils.OptionalString(req.Purpose),
		WorkshopID:  workshopID,
	}

	err = s.csr.RecordDisbursement(ctx, txn)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithFields(logrus.Fields{
		"business_id":  business.ID,
		"amount_cents": txn.AmountCents,
		"admin_id":     userFromContext(ctx).ID,
	}).Info("csr disbursement recorded")

	s.writeJSON(w, http.StatusCreated, txn)
}

func (s *Service) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	user := userFromContext(ctx)

	businessID := user.ID
	if user.Role == types.RoleAdmin {
		businessID = strings.TrimSpace(r.URL.Query().Get("businessId"))
		if businessID == "" {
			s.writeError(w, r, newValidationError(map[string]string{"businessId": "Business is required."}))
			return
		}
	}

	ledger, err := s.csr.Ledger(ctx, businessID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, ledger)
}
