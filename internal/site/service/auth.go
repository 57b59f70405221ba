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
	"github.com/paymall/site-api/pkg/jwtx"
	"github.com/paymall/site-api/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoAdminPrivileges  = errors.New("no admin privileges")
	ErrSessionNotLive     = errors.New("session expired or revoked")
)

// AuthService issues and resolves admin sessions. A login only succeeds for
// users holding the admin role grant; everyone else gets the same generic
// error as a bad password.
type AuthService struct {
	Store      store.Store
	Signer     jwtx.Signer
	Issuer     string
	SessionTTL time.Duration
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return jwtx.DefaultSessionTTL
}

// Login verifies the password, creates a session, then checks the admin
// grant. The grant check runs after session creation so a non-admin login
// leaves a revoked session behind rather than a live one.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	log := slogx.FromContext(ctx)

	// Emails are stored lowercased, so match that here.
	email = strings.ToLower(strings.TrimSpace(email))

	// 1. Look up the user. Unknown emails still burn an argon2 verify so
	// the response time doesn't reveal which emails exist.
	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			log.Warn("login attempt for unknown email")
			return "", domain.User{}, ErrInvalidCredentials
		}
		log.Error("failed to fetch user", slog.Any("error", err))
		return "", domain.User{}, err
	}

	// 2. Verify the password.
	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		log.Warn("login attempt with wrong password", slog.String("user_id", u.ID))
		return "", domain.User{}, ErrInvalidCredentials
	}

	// 3. Create the session record.
	now := time.Now().UTC()
	sess := domain.Session{
		ID:        idx.New().String(),
		UserID:    u.ID,
		ExpiresAt: now.Add(s.sessionTTL()),
	}
	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		log.Error("failed to create session", slog.Any("error", err))
		return "", domain.User{}, err
	}

	// 4. Only admins may keep the session. Revoke it straight away for
	// anyone else.
	isAdmin, err := s.Store.Roles().HasRole(ctx, u.ID, domain.RoleAdmin)
	if err != nil {
		log.Error("failed to check admin role", slog.Any("error", err))
		return "", domain.User{}, err
	}
	if !isAdmin {
		if err := s.Store.Sessions().RevokeSession(ctx, sess.ID); err != nil {
			log.Error("failed to revoke non-admin session", slog.Any("error", err))
			return "", domain.User{}, err
		}
		log.Warn("login without admin role", slog.String("user_id", u.ID))
		return "", domain.User{}, ErrNoAdminPrivileges
	}

	// 5. Sign the session token.
	claims := jwtx.NewSessionClaims(u.ID, sess.ID, u.Email, s.Issuer, s.sessionTTL(), now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign session token", slog.Any("error", err))
		return "", domain.User{}, err
	}

	log.Info("admin login", slog.String("user_id", u.ID), slog.String("session_id", sess.ID))
	return token, u, nil
}

// Logout revokes the session. Revoking an already-revoked or unknown
// session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	log := slogx.FromContext(ctx)

	if err := s.Store.Sessions().RevokeSession(ctx, sessionID); err != nil {
		log.Error("failed to revoke session", slog.Any("error", err))
		return err
	}

	log.Info("session revoked", slog.String("session_id", sessionID))
	return nil
}

// ResolveSession checks a session referenced by a valid token against the
// store. A revoked session fails; an expired session fails and its row is
// deleted so the table doesn't accumulate dead entries.
func (s *AuthService) ResolveSession(ctx context.Context, sessionID string) (domain.Session, domain.User, error) {
	log := slogx.FromContext(ctx)

	sess, err := s.Store.Sessions().GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, domain.User{}, ErrSessionNotLive
		}
		log.Error("failed to fetch session", slog.Any("error", err))
		return domain.Session{}, domain.User{}, err
	}

	now := time.Now()
	if !now.Before(sess.ExpiresAt) {
		_ = s.Store.Sessions().DeleteSession(ctx, sess.ID)
		return domain.Session{}, domain.User{}, ErrSessionNotLive
	}
	if sess.RevokedAt != nil {
		return domain.Session{}, domain.User{}, ErrSessionNotLive
	}

	u, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		log.Error("failed to fetch session user", slog.Any("error", err))
		return domain.Session{}, domain.User{}, err
	}

	return sess, u, nil
}

// IsAdmin reports whether the user currently holds the admin grant.
func (s *AuthService) IsAdmin(ctx context.Context, userID string) (bool, error) {
	return s.Store.Roles().HasRole(ctx, userID, domain.RoleAdmin)
}
