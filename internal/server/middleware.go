package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"strot/internal"
	"strot/internal/auth"
	"strot/internal/workflow"
	"strot/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyUser contextKey = "user"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		fields := logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}
		if user := userFromContext(r.Context()); user != nil {
			fields["user_id"] = user.ID
		}

		s.logger.WithFields(fields).Info("http request")
	})
}

// LoadUser resolves the caller from the local session cookie, then from a
// managed provider token. Requests without either continue anonymously.
func (s *Service) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.sessionUser(r)
		if user == nil {
			user = s.tokenUser(r)
		}

		if user != nil {
			r = r.WithContext(context.WithValue(r.Context(), contextKeyUser, user))
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) sessionUser(r *http.Request) *types.User {
	session, err := s.sessions.Read(r)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) {
			s.logger.WithError(err).Debug("ignoring invalid session cookie")
		}
		return nil
	}

	user, err := s.users.User(r.Context(), session.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", session.UserID).Warn("session user lookup failed")
		return nil
	}

	return user
}

func (s *Service) tokenUser(r *http.Request) *types.User {
	if s.verifier == nil {
		return nil
	}

	raw := bearerToken(r)
	if raw == "" {
		cookie, err := r.Cookie(internal.COOKIE_ACCESS_TOKEN_NAME)
		if err != nil {
			return nil
		}

		raw, err = s.sessions.DecodeValue(internal.COOKIE_ACCESS_TOKEN_NAME, cookie.Value)
		if err != nil {
			s.logger.WithError(err).Error("failed to decrypt access token")
			return nil
		}
	}

	claims, err := s.verifier.Verify(r.Context(), raw)
	if err != nil {
		s.logger.WithError(err).Info("rejected managed provider token")
		return nil
	}

	user, err := s.users.UserBySubject(r.Context(), claims.Subject)
	if errors.Is(err, types.ErrUserNotFound) && claims.Email != "" {
		user, err = s.linkSubject(r.Context(), claims)
	}
	if err != nil {
		s.logger.WithError(err).WithField("subject", claims.Subject).Warn("no user for managed provider subject")
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"subject": claims.Subject,
	}).Debug("authenticated user")

	return user
}

// linkSubject attaches a managed provider subject to the local account with
// the same email, for users who registered before the provider was enabled.
func (s *Service) linkSubject(ctx context.Context, claims *auth.Claims) (*types.User, error) {
	user, err := s.users.UserByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	if user.AuthSubject != nil && *user.AuthSubject != claims.Subject {
		return nil, types.ErrForbidden
	}

	if err := s.users.SetAuthSubject(ctx, user.ID, claims.Subject); err != nil {
		return nil, err
	}
	user.AuthSubject = &claims.Subject

	s.logger.WithField("user_id", user.ID).Info("linked managed provider subject")

	return user, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects anonymous API calls with 401.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			s.writeJSONError(w, http.StatusUnauthorized, "unauthenticated", "Please log in to continue.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequirePageAuth sends anonymous browsers to /login and remembers where
// they were headed.
func (s *Service) RequirePageAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userFromContext(r.Context()) == nil {
			s.logger.WithField("path", r.URL.Path).Debug("no session, redirecting to login")

			s.setRedirectCookie(w, r.URL.Path, time.Minute*5)

			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) RequireRole(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !workflow.HasRole(userFromContext(r.Context()), roles...) {
				s.writeJSONError(w, http.StatusForbidden, "forbidden", "You do not have access to this action.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func userFromContext(ctx context.Context) *types.User {
	user, _ := ctx.Value(contextKeyUser).(*types.User)
	return user
}
