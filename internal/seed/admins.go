package seed

import (
	"context"
	"errors"
	"fmt"

	"facilitypay/internal/store"
	"facilitypay/pkg/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminEmail    = "admin@example.edu"
	defaultAdminPassword = "change-me-now"
	defaultAdminName     = "Administrator"
)

// SeedDefaultAdmin creates the bootstrap admin account when it does not
// exist yet. The password is a well-known default and must be rotated
// through the admin surface before the deployment goes live.
func SeedDefaultAdmin(ctx context.Context, repo *store.AdminRepository) error {
	_, err := repo.AdminByEmail(ctx, defaultAdminEmail)
	if err == nil {
		logrus.WithField("email", defaultAdminEmail).Info("default admin already present, skipping")
		return nil
	}
	if !errors.Is(err, types.ErrAdminNotFound) {
		return fmt.Errorf("failed to check for default admin: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default admin password: %w", err)
	}

	admin := &types.Admin{
		Email:        defaultAdminEmail,
		PasswordHash: string(hash),
		Name:         defaultAdminName,
	}
	if err := repo.CreateAdmin(ctx, admin); err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	logrus.WithField("email", defaultAdminEmail).Warn("default admin created, change the password before going live")
	return nil
}
