package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/pkg/cryptox"
	"github.com/paymall/site-api/pkg/idx"
	"github.com/paymall/site-api/pkg/slogx"
)

const minPasswordLength = 6

var (
	// ErrInviteInvalid covers unknown, already-used, and raced invite codes
	// alike. Callers must not be able to tell those cases apart.
	ErrInviteInvalid = errors.New("invalid or expired invite code")

	ErrEmailTaken      = errors.New("email already registered")
	ErrInvalidEmail    = errors.New("a valid email is required")
	ErrInvalidPassword = errors.New("password must be at least 6 characters")
)

// RegisterService handles invite-gated admin self-registration. The user
// row, the invite consumption, and the admin grant commit in one
// transaction, so a registration either fully happens or not at all.
type RegisterService struct {
	Store store.Store
}

func (s *RegisterService) Register(ctx context.Context, email, password, inviteCode string) (domain.User, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate inputs before touching storage.
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return domain.User{}, ErrInvalidPassword
	}
	inviteCode = strings.ToUpper(strings.TrimSpace(inviteCode))
	if len(inviteCode) != cryptox.InviteCodeLength {
		return domain.User{}, ErrInviteInvalid
	}

	// 2. Hash the password outside the transaction; argon2 is the slow part.
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

	// 3. Consume the invite, create the user, and grant the role in one
	// transaction. The conditional update inside ConsumeInviteCode makes
	// concurrent use of the same code single-winner.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := tx.Invites().GetUnusedInviteCode(ctx, inviteCode)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteInvalid
			}
			return err
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailTaken
			}
			return err
		}

		if err := tx.Invites().ConsumeInviteCode(ctx, inv.ID, user.ID, time.Now().UTC()); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteInvalid
			}
			return err
		}

		return tx.Roles().GrantRole(ctx, domain.RoleGrant{
			ID:     idx.New().String(),
			UserID: user.ID,
			Role:   domain.RoleAdmin,
		})
	})
	if err != nil {
		if errors.Is(err, ErrInviteInvalid) || errors.Is(err, ErrEmailTaken) {
			log.Warn("registration rejected", slog.Any("reason", err))
		} else {
			log.Error("registration failed", slog.Any("error", err))
		}
		return domain.User{}, err
	}

	log.Info("admin registered", slog.String("user_id", user.ID))
	return user, nil
}
