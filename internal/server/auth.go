package server

import (
	"errors"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"strot/internal"
	"strot/internal/auth"
	"strot/internal/utils"
	"strot/internal/workflow"
	"strot/pkg/types"
)

type registerRequest struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Phone           string `json:"phone" form:"phone"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirm_password"`
	Role            string `json:"role" form:"role"`
	Locality        string `json:"locality" form:"locality"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type meResponse struct {
	User          *types.User          `json:"user"`
	CommunityHead *types.CommunityHead `json:"communityHead,omitempty"`
	Redirect      string               `json:"redirect,omitempty"`
}

var (
	hasLetterReg = regexp.MustCompile(`[A-Za-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
)

func validateRegisterInput(req *registerRequest) map[string]string {
	errs := map[string]string{}

	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required."
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if len(req.Password) < 8 || !hasLetterReg.MatchString(req.Password) || !hasDigitReg.MatchString(req.Password) {
		errs["password"] = "Password must be at least 8 characters and include a letter and a number."
	}

	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		errs["confirmPassword"] = "Passwords do not match."
	}

	role := types.Role(strings.TrimSpace(req.Role))
	if !workflow.CanRegisterAs(role) {
		errs["role"] = "Choose donor, business or community head."
	}

	if role == types.RoleCommunityHead && strings.TrimSpace(req.Locality) == "" {
		errs["locality"] = "Locality is required for community heads."
	}

	return errs
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if fieldErrs := validateRegisterInput(&req); len(fieldErrs) > 0 {
		s.logger.WithField("field_errors", fieldErrs).Info("validation errors during registration")
		s.writeError(w, r, newValidationError(fieldErrs))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))

	_, err := s.users.UserByEmail(ctx, email)
	if err == nil {
		s.writeError(w, r, types.ErrEmailTaken)
		return
	}
	if !errors.Is(err, types.ErrUserNotFound) {
		s.writeError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user := &types.User{
		Role:         types.Role(strings.TrimSpace(req.Role)),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        utils.OptionalString(req.Phone),
		PasswordHash: hash,
	}

	err = s.users.Create(ctx, user)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// The local row goes first so a lost email race never leaves a provider
	// account behind. A provider failure backs the row out again.
	if s.identity != nil {
		subject, err := s.identity.SignUp(ctx, email, req.Password, user.Name)
		if err != nil {
			s.logger.WithError(err).Error("failed to signup user with identity provider")
			if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
				s.logger.WithError(delErr).WithField("user_id", user.ID).Error("failed to remove user after identity provider signup failed")
			}
			s.writeError(w, r, err)
			return
		}

		err = s.users.SetAuthSubject(ctx, user.ID, subject)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Warn("failed to store identity subject, it will be linked on first token use")
		} else {
			user.AuthSubject = &subject
		}
	}

	resp := &meResponse{User: user}

	if user.Role == types.RoleCommunityHead {
		head := &types.CommunityHead{
			UserID:   user.ID,
			Locality: strings.TrimSpace(req.Locality),
		}
		err = s.communityHeads.Create(ctx, head)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", user.ID).Error("failed to create community head record")
			s.writeError(w, r, err)
			return
		}
		resp.CommunityHead = head
	}

	if err := s.sessions.Issue(w, user.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("user_id", user.ID).WithField("role", user.Role).Info("user registered")

	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if !required(req.Email) || req.Password == "" {
		s.writeError(w, r, newValidationError(map[string]string{
			"email": "Email and password are required.",
		}))
		return
	}

	ctx, cancel := dbContext(r)
	defer cancel()

	user, err := s.users.UserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, types.ErrUserNotFound) {
			err = types.ErrInvalidCredentials
		}
		s.writeError(w, r, err)
		return
	}

	if err := auth.VerifyPassword(req.Password, user.PasswordHash); err != nil {
		s.logger.WithField("user_id", user.ID).Info("failed login attempt")
		s.writeError(w, r, types.ErrInvalidCredentials)
		return
	}

	if auth.IsLegacyHash(user.PasswordHash) {
		s.upgradePasswordHash(r, user.ID, req.Password)
	}

	if err := s.sessions.Issue(w, user.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := &meResponse{User: user}

	// Check to see if this login attempt was the result of an unauthed redirect
	if redirectCookie, err := r.Cookie(internal.COOKIE_REDIRECT_NAME); err == nil {
		resp.Redirect = redirectCookie.Value
		s.clearRedirectCookie(w)
	}

	s.logger.WithField("user_id", user.ID).Info("user logged in")

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) upgradePasswordHash(r *http.Request, userID, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(r.Context(), userID, hash)
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("failed to upgrade legacy password hash")
		return
	}

	s.logger.WithField("user_id", userID).Info("upgraded legacy password hash")
}

func (s *Service) handleManagedToken(w http.ResponseWriter, r *http.Request) {
	if s.identity == nil {
		s.writeJSONError(w, http.StatusNotFound, "not_enabled", "Managed sign in is not enabled.")
		return
	}

	var req loginRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	accessToken, expiresIn, err := s.identity.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	err = s.sessions.SetValueCookie(w, internal.COOKIE_ACCESS_TOKEN_NAME, accessToken, expiresIn)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"expiresIn": expiresIn})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	s.sessions.ClearCookie(w, internal.COOKIE_ACCESS_TOKEN_NAME)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleMe(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	resp := &meResponse{User: user}

	if user.Role == types.RoleCommunityHead {
		ctx, cancel := dbContext(r)
		defer cancel()

		head, err := s.communityHeads.CommunityHeadByUser(ctx, user.ID)
		if err != nil && !errors.Is(err, types.ErrCommunityHeadNotFound) {
			s.writeError(w, r, err)
			return
		}
		resp.CommunityHead = head
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleGetLogin(w http.ResponseWriter, r *http.Request) {
	if userFromContext(r.Context()) != nil {
		s.logger.Info("user is already logged in, redirecting to dashboard")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	methods := []string{"password"}
	if s.identity != nil {
		methods = append(methods, "managed")
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"methods": methods})
}

func (s *Service) setRedirectCookie(w http.ResponseWriter, path string, age time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    path,
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(age.Seconds()),
	})
}

func (s *Service) clearRedirectCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_REDIRECT_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

func required(v string) bool {
	return strings.TrimSpace(v) != ""
}
