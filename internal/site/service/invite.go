package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/pkg/cryptox"
	"github.com/paymall/site-api/pkg/idx"
	"github.com/paymall/site-api/pkg/slogx"
)

// mintAttempts bounds retries when a freshly generated code collides with
// an existing row. With a 36^8 keyspace collisions are vanishingly rare, so
// hitting the bound means something is wrong with the RNG or the table.
const mintAttempts = 3

var ErrInviteMintFailed = errors.New("failed to mint invite code")

// InviteService mints and lists single-use registration codes. Codes are
// stored in plain text; they are short-lived shared secrets handed to a
// known person, not bearer credentials.
type InviteService struct {
	Store store.Store
}

// MintInvite generates a fresh code attributed to the minting admin. On the
// off chance the generated code already exists, generation retries with a
// new code.
func (s *InviteService) MintInvite(ctx context.Context, createdBy string) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	for attempt := 0; attempt < mintAttempts; attempt++ {
		code, err := cryptox.GenerateInviteCode()
		if err != nil {
			log.Error("failed to generate invite code", slog.Any("error", err))
			return domain.InviteCode{}, err
		}

		inv := domain.InviteCode{
			ID:        idx.New().String(),
			Code:      code,
			CreatedBy: createdBy,
		}

		err = s.Store.Invites().CreateInviteCode(ctx, inv)
		if err == nil {
			log.Info("invite code minted",
				slog.String("invite_id", inv.ID),
				slog.String("created_by", createdBy),
			)
			return inv, nil
		}
		if errors.Is(err, store.ErrAlreadyExists) {
			log.Warn("invite code collision, regenerating", slog.Int("attempt", attempt+1))
			continue
		}

		log.Error("failed to store invite code", slog.Any("error", err))
		return domain.InviteCode{}, err
	}

	return domain.InviteCode{}, ErrInviteMintFailed
}

// ListInvites returns every code newest-first, used and unused alike.
func (s *InviteService) ListInvites(ctx context.Context) ([]domain.InviteCode, error) {
	return s.Store.Invites().ListInviteCodes(ctx)
}
