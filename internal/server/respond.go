package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"strot/internal/auth"
	"strot/pkg/types"

	"github.com/sirupsen/logrus"
)

// errorBody is the shape every failed API call returns. Message is safe to
// show to the user as is.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

type validationError struct {
	message string
	fields  map[string]string
}

func (e *validationError) Error() string {
	return e.message
}

func newValidationError(fields map[string]string) *validationError {
	return &validationError{message: "Please fix the highlighted fields.", fields: fields}
}

var errNoCommunityHead = errors.New("an active community head record is required")

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) writeJSONError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeError maps domain errors onto HTTP responses. Anything unrecognised is
// logged and reported as a generic failure.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:        "validation_failed",
			Message:     verr.message,
			FieldErrors: verr.fields,
		}})
	case errors.Is(err, errNoCommunityHead):
		s.writeJSONError(w, http.StatusForbidden, "community_head_required", "An active community head profile is required for this action.")
	case errors.Is(err, types.ErrForbidden):
		s.writeJSONError(w, http.StatusForbidden, "forbidden", "You do not have access to this action.")
	case errors.Is(err, types.ErrInvalidTransition):
		s.writeJSONError(w, http.StatusConflict, "invalid_transition", "This record has already moved on and cannot be changed that way.")
	case errors.Is(err, types.ErrEmailTaken):
		s.writeJSONError(w, http.StatusConflict, "email_taken", "An account with this email already exists.")
	case errors.Is(err, types.ErrDuplicateApplication):
		s.writeJSONError(w, http.StatusConflict, "duplicate_application", "This worker has already applied to the job.")
	case errors.Is(err, types.ErrInsufficientFunds):
		s.writeJSONError(w, http.StatusUnprocessableEntity, "insufficient_funds", "The CSR balance is too low for this disbursement.")
	case errors.Is(err, types.ErrInvalidCredentials):
		s.writeJSONError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password.")
	case errors.Is(err, auth.ErrWeakPassword):
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:        "validation_failed",
			Message:     "Please fix the highlighted fields.",
			FieldErrors: map[string]string{"password": "Password does not meet the identity provider's policy."},
		}})
	case isNotFound(err):
		s.writeJSONError(w, http.StatusNotFound, "not_found", notFoundMessage(err))
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		s.writeJSONError(w, http.StatusInternalServerError, "internal", "Something went wrong. Please try again.")
	}
}

var notFoundErrors = []error{
	types.ErrUserNotFound,
	types.ErrCommunityHeadNotFound,
	types.ErrDonationNotFound,
	types.ErrJobNotFound,
	types.ErrWorkerNotFound,
	types.ErrApplicationNotFound,
	types.ErrWorkshopNotFound,
}

func isNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func notFoundMessage(err error) string {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			msg := target.Error()
			return strings.ToUpper(msg[:1]) + msg[1:] + "."
		}
	}
	return "Not found."
}

// decodeRequest fills dst from a JSON body or from form values, depending on
// the request content type. An empty body leaves dst untouched.
func decodeRequest(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return &validationError{message: "Invalid form payload."}
		}
		if err := decoder.Decode(dst, r.PostForm); err != nil {
			return &validationError{message: "Invalid form payload."}
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return &validationError{message: "Invalid form payload."}
		}
		if err := decoder.Decode(dst, r.MultipartForm.Value); err != nil {
			return &validationError{message: "Invalid form payload."}
		}
	default:
		err := json.NewDecoder(r.Body).Decode(dst)
		if err != nil && !errors.Is(err, io.EOF) {
			return &validationError{message: "Invalid JSON payload."}
		}
	}

	return nil
}
