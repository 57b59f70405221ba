package service

import (
	"context"
	"sync"
	"testing"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/pkg/idx"
	"github.com/stretchr/testify/require"
)

func mintTestInvite(t *testing.T, s *InviteService, createdBy string) domain.InviteCode {
	t.Helper()
	inv, err := s.MintInvite(context.Background(), createdBy)
	require.NoError(t, err)
	return inv
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	svc := &RegisterService{Store: s}
	invites := &InviteService{Store: s}

	admin := createAdmin(t, s, "admin@example.com", "correct horse battery")

	t.Run("valid invite registers an admin", func(t *testing.T) {
		inv := mintTestInvite(t, invites, admin.ID)

		u, err := svc.Register(ctx, "New.Admin@Example.com", "long enough pw", inv.Code)
		require.NoError(t, err)
		require.Equal(t, "new.admin@example.com", u.Email, "email is normalized")

		isAdmin, err := s.Roles().HasRole(ctx, u.ID, domain.RoleAdmin)
		require.NoError(t, err)
		require.True(t, isAdmin)

		// The code is spent.
		_, err = svc.Register(ctx, "other@example.com", "long enough pw", inv.Code)
		require.ErrorIs(t, err, ErrInviteInvalid)
	})

	t.Run("unknown and used codes are indistinguishable", func(t *testing.T) {
		_, errUnknown := svc.Register(ctx, "a@example.com", "long enough pw", "ZZ99ZZ99")
		require.ErrorIs(t, errUnknown, ErrInviteInvalid)
	})

	t.Run("input validation", func(t *testing.T) {
		inv := mintTestInvite(t, invites, admin.ID)

		_, err := svc.Register(ctx, "not-an-email", "long enough pw", inv.Code)
		require.ErrorIs(t, err, ErrInvalidEmail)

		_, err = svc.Register(ctx, "ok@example.com", "short", inv.Code)
		require.ErrorIs(t, err, ErrInvalidPassword)

		_, err = svc.Register(ctx, "ok@example.com", "long enough pw", "TOOSHORT1")
		require.ErrorIs(t, err, ErrInviteInvalid)
	})

	t.Run("duplicate email rolls back the invite", func(t *testing.T) {
		inv := mintTestInvite(t, invites, admin.ID)

		_, err := svc.Register(ctx, "admin@example.com", "long enough pw", inv.Code)
		require.ErrorIs(t, err, ErrEmailTaken)

		// The failed registration must not have burned the code.
		_, err = s.Invites().GetUnusedInviteCode(ctx, inv.Code)
		require.NoError(t, err)
	})
}

func TestRegisterConcurrentInviteUse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	svc := &RegisterService{Store: s}
	invites := &InviteService{Store: s}

	admin := createAdmin(t, s, "admin@example.com", "correct horse battery")
	inv := mintTestInvite(t, invites, admin.ID)

	const racers = 4
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "racer" + idx.New().String() + "@example.com"
			_, errs[i] = svc.Register(ctx, email, "long enough pw", inv.Code)
		}(i)
	}
	wg.Wait()

	var wins int
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, ErrInviteInvalid)
		}
	}
	require.Equal(t, 1, wins, "exactly one registration may consume the code")
}
