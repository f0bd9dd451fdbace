package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"strot/internal/auth"
	"strot/pkg/types"
)

type AdminStore interface {
	UserByEmail(ctx context.Context, email string) (*types.User, error)
	Create(ctx context.Context, user *types.User) error
	UpdateRole(ctx context.Context, userID string, role types.Role) (*types.User, error)
}

// SeedAdmin makes sure an admin account exists for email. An existing
// account is promoted; its password is left alone.
func SeedAdmin(ctx context.Context, out io.Writer, users AdminStore, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("admin email is required")
	}

	existing, err := users.UserByEmail(ctx, email)
	if err == nil {
		if existing.Role != types.RoleAdmin {
			if _, err := users.UpdateRole(ctx, existing.ID, types.RoleAdmin); err != nil {
				return fmt.Errorf("failed to promote %s: %w", email, err)
			}
			fmt.Fprintf(out, "Promoted existing user %s to admin\n", email)
			return nil
		}
		fmt.Fprintf(out, "Admin %s already exists\n", email)
		return nil
	}
	if !errors.Is(err, types.ErrUserNotFound) {
		return fmt.Errorf("failed to fetch admin %s: %w", email, err)
	}

	if password == "" {
		return fmt.Errorf("set SEED_ADMIN_PASSWORD to create the admin account")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &types.User{
		Role:         types.RoleAdmin,
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin %s: %w", email, err)
	}

	fmt.Fprintf(out, "Created admin %s (id: %s)\n", email, admin.ID)
	return nil
}
