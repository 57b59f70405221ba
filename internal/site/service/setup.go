package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/pkg/cryptox"
	"github.com/paymall/site-api/pkg/idx"
	"github.com/paymall/site-api/pkg/slogx"
)

var ErrSetupUnauthorized = errors.New("unauthorized setup attempt")

// SetupService bootstraps the first admin account. It is gated by a
// pre-configured setup code and idempotent: re-running it for an existing
// email only ensures the admin grant is in place.
type SetupService struct {
	Store     store.Store
	SetupCode string
}

func (s *SetupService) Setup(ctx context.Context, code, email, password string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate the setup code. Fail closed when none is configured.
	if s.SetupCode == "" || !cryptox.SecureCompare(code, s.SetupCode) {
		log.Warn("unauthorized setup attempt")
		return domain.User{}, ErrSetupUnauthorized
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return domain.User{}, ErrInvalidPassword
	}

	// 2. Re-running setup for an existing account only tops up the grant.
	existing, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err == nil {
		if err := s.ensureAdminGrant(ctx, existing.ID); err != nil {
			return domain.User{}, err
		}
		log.Info("setup re-run for existing admin", slog.String("user_id", existing.ID))
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		log.Error("failed to fetch user", slog.Any("error", err))
		return domain.User{}, err
	}

	// 3. Fresh bootstrap: create the user and grant in one transaction.
	passHash, err := cryptox.HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", slog.Any("error", err))
		return domain.User{}, err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: passHash,
	}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return tx.Roles().GrantRole(ctx, domain.RoleGrant{
			ID:     idx.New().String(),
			UserID: user.ID,
			Role:   domain.RoleAdmin,
		})
	})
	if err != nil {
		log.Error("setup failed", slog.Any("error", err))
		return domain.User{}, err
	}

	log.Info("master admin created", slog.String("user_id", user.ID))
	return user, nil
}

func (s *SetupService) ensureAdminGrant(ctx context.Context, userID string) error {
	err := s.Store.Roles().GrantRole(ctx, domain.RoleGrant{
		ID:     idx.New().String(),
		UserID: userID,
		Role:   domain.RoleAdmin,
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil
	}
	return err
}
