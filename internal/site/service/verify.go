package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/paymall/site-api/internal/site/ratelimit"
	"github.com/paymall/site-api/pkg/cryptox"
	"github.com/paymall/site-api/pkg/slogx"
)

var (
	ErrCodeMismatch   = errors.New("code does not match")
	ErrCodeEmpty      = errors.New("code is required")
	ErrVerifyLimited  = errors.New("too many verification attempts")
	ErrVerifyDisabled = errors.New("verification is not configured")
)

// VerifyService checks a submitted admin access code against the configured
// secret. Every attempt, pass or fail, counts against the caller's rate
// window, and neither the code nor the secret is ever logged.
type VerifyService struct {
	Secret  string
	Limiter ratelimit.Limiter
}

// VerifyCode validates the code for the caller identified by clientKey
// (normally the client IP). It reports the attempts left in the caller's
// window; on rate rejection the retry-after hint is returned alongside
// ErrVerifyLimited.
func (s *VerifyService) VerifyCode(ctx context.Context, clientKey, code string) (int, time.Duration, error) {
	log := slogx.FromContext(ctx)

	// 1. Count the attempt before anything else so failures and successes
	// share one budget. The key is fingerprinted so raw client addresses
	// never appear in the limiter backend.
	remaining, retryAfter, err := s.Limiter.Allow(ctx, cryptox.FingerprintToken(clientKey))
	if err != nil {
		if errors.Is(err, ratelimit.ErrLimited) {
			log.Warn("verification rate limited", slog.Duration("retry_after", retryAfter))
			return 0, retryAfter, ErrVerifyLimited
		}
		log.Error("verification limiter unavailable", slog.Any("error", err))
		return 0, 0, err
	}

	// 2. Reject empty submissions cheaply.
	if code == "" {
		return remaining, 0, ErrCodeEmpty
	}

	// 3. Fail closed when no secret is configured.
	if s.Secret == "" {
		log.Error("verification attempted with no secret configured")
		return remaining, 0, ErrVerifyDisabled
	}

	// 4. Constant-time comparison.
	if !cryptox.SecureCompare(code, s.Secret) {
		log.Warn("verification code mismatch", slog.Int("remaining_attempts", remaining))
		return remaining, 0, ErrCodeMismatch
	}

	log.Info("verification code accepted", slog.Int("remaining_attempts", remaining))
	return remaining, 0, nil
}
