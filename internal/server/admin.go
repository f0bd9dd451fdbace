package server

import (
	"net/http"

	"strot/pkg/types"
)

func (s *Service) handlePromoteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := dbContext(r)
	defer cancel()

	admin := userFromContext(ctx)
	userID := r.PathValue("id")

	user, err := s.users.User(ctx, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if user.Role != types.RoleAdmin {
		user, err = s.users.UpdateRole(ctx, userID, types.RoleAdmin)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.logger.WithField("user_id", userID).WithField("admin_id", admin.ID).Info("user promoted to admin")
	}

	s.writeJSON(w, http.StatusOK, user)
}
