package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/paymall/site-api/internal/site/domain"
	"github.com/paymall/site-api/internal/site/store"
	"github.com/paymall/site-api/internal/site/store/drivers/sqlite"
	"github.com/paymall/site-api/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func createTestUser(t *testing.T, s store.Store, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "argon2id:test",
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := createTestUser(t, s, "admin@example.com")

	t.Run("lookup by id and email", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.Email, got.Email)

		got, err = s.Users().GetUserByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
	})

	t.Run("unknown user maps to ErrNotFound", func(t *testing.T) {
		_, err := s.Users().GetUserByEmail(ctx, "ghost@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate email maps to ErrAlreadyExists", func(t *testing.T) {
		dup := domain.User{ID: idx.New().String(), Email: u.Email, PasswordHash: "x"}
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})
}

func TestRoleGrants(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := createTestUser(t, s, "admin@example.com")

	ok, err := s.Roles().HasRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	require.False(t, ok, "no grant row means no role")

	grant := domain.RoleGrant{ID: idx.New().String(), UserID: u.ID, Role: domain.RoleAdmin}
	require.NoError(t, s.Roles().GrantRole(ctx, grant))

	ok, err = s.Roles().HasRole(ctx, u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	require.True(t, ok)

	// Granting the same role twice is a constraint violation.
	dup := domain.RoleGrant{ID: idx.New().String(), UserID: u.ID, Role: domain.RoleAdmin}
	require.ErrorIs(t, s.Roles().GrantRole(ctx, dup), store.ErrAlreadyExists)
}

func TestInviteCodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	admin := createTestUser(t, s, "admin@example.com")

	inv := domain.InviteCode{
		ID:        idx.New().String(),
		Code:      "AB12CD34",
		CreatedBy: admin.ID,
	}
	require.NoError(t, s.Invites().CreateInviteCode(ctx, inv))

	t.Run("code collision maps to ErrAlreadyExists", func(t *testing.T) {
		clash := domain.InviteCode{ID: idx.New().String(), Code: "AB12CD34", CreatedBy: admin.ID}
		require.ErrorIs(t, s.Invites().CreateInviteCode(ctx, clash), store.ErrAlreadyExists)
	})

	t.Run("unused lookup", func(t *testing.T) {
		got, err := s.Invites().GetUnusedInviteCode(ctx, "AB12CD34")
		require.NoError(t, err)
		require.Equal(t, inv.ID, got.ID)
		require.False(t, got.Used)
		require.Nil(t, got.UsedAt)
	})

	t.Run("consume is exactly once", func(t *testing.T) {
		newcomer := createTestUser(t, s, "newcomer@example.com")

		now := time.Now().UTC()
		require.NoError(t, s.Invites().ConsumeInviteCode(ctx, inv.ID, newcomer.ID, now))

		// Second consumption loses the used = FALSE guard.
		err := s.Invites().ConsumeInviteCode(ctx, inv.ID, newcomer.ID, now)
		require.ErrorIs(t, err, store.ErrNotFound)

		// Consumed codes no longer resolve as unused.
		_, err = s.Invites().GetUnusedInviteCode(ctx, "AB12CD34")
		require.ErrorIs(t, err, store.ErrNotFound)

		list, err := s.Invites().ListInviteCodes(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.True(t, list[0].Used)
		require.Equal(t, newcomer.ID, list[0].UsedBy)
		require.NotNil(t, list[0].UsedAt)
	})
}

func TestSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := createTestUser(t, s, "admin@example.com")

	sess := domain.Session{
		ID:        idx.New().String(),
		UserID:    u.ID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, s.Sessions().CreateSession(ctx, sess))

	got, err := s.Sessions().GetSessionByID(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, got.Live(time.Now()))

	listed, err := s.Sessions().ListSessionsByUserID(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, sess.ID, listed[0].ID)

	require.NoError(t, s.Sessions().RevokeSession(ctx, sess.ID))
	got, err = s.Sessions().GetSessionByID(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RevokedAt)
	require.False(t, got.Live(time.Now()))

	t.Run("expired cleanup", func(t *testing.T) {
		expired := domain.Session{
			ID:        idx.New().String(),
			UserID:    u.ID,
			ExpiresAt: time.Now().UTC().Add(-time.Minute),
		}
		require.NoError(t, s.Sessions().CreateSession(ctx, expired))
		require.NoError(t, s.Sessions().DeleteExpiredSessions(ctx))

		_, err := s.Sessions().GetSessionByID(ctx, expired.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestBlogs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	now := time.Now().UTC()
	published := domain.Blog{
		ID:          idx.New().String(),
		Title:       "Launch Announcement",
		Slug:        "launch-announcement",
		Content:     "We are live.",
		Tags:        []string{"news", "product"},
		IsFeatured:  true,
		IsPublished: true,
		PublishedAt: &now,
	}
	require.NoError(t, s.Blogs().CreateBlog(ctx, published))

	draft := domain.Blog{
		ID:      idx.New().String(),
		Title:   "Draft Post",
		Slug:    "draft-post",
		Content: "wip",
	}
	require.NoError(t, s.Blogs().CreateBlog(ctx, draft))

	t.Run("slug clash maps to ErrAlreadyExists", func(t *testing.T) {
		clash := domain.Blog{ID: idx.New().String(), Title: "x", Slug: "launch-announcement", Content: "y"}
		require.ErrorIs(t, s.Blogs().CreateBlog(ctx, clash), store.ErrAlreadyExists)
	})

	t.Run("public lookups only see published", func(t *testing.T) {
		got, err := s.Blogs().GetPublishedBlogBySlug(ctx, "launch-announcement")
		require.NoError(t, err)
		require.Equal(t, []string{"news", "product"}, got.Tags)

		_, err = s.Blogs().GetPublishedBlogBySlug(ctx, "draft-post")
		require.ErrorIs(t, err, store.ErrNotFound)

		list, err := s.Blogs().ListPublishedBlogs(ctx, 10)
		require.NoError(t, err)
		require.Len(t, list, 1)

		featured, err := s.Blogs().ListFeaturedBlogs(ctx, 10)
		require.NoError(t, err)
		require.Len(t, featured, 1)
	})

	t.Run("admin listing sees drafts", func(t *testing.T) {
		all, err := s.Blogs().ListAllBlogs(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
	})

	t.Run("update and delete", func(t *testing.T) {
		draft.Title = "Not A Draft Anymore"
		draft.IsPublished = true
		draft.PublishedAt = &now
		require.NoError(t, s.Blogs().UpdateBlog(ctx, draft))

		got, err := s.Blogs().GetBlogByID(ctx, draft.ID)
		require.NoError(t, err)
		require.Equal(t, "Not A Draft Anymore", got.Title)
		require.True(t, got.IsPublished)

		require.NoError(t, s.Blogs().DeleteBlog(ctx, draft.ID))
		_, err = s.Blogs().GetBlogByID(ctx, draft.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestLeads(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Leads().CreateContactRequest(ctx, domain.ContactRequest{
		ID: idx.New().String(), Name: "Jo", Email: "jo@example.com", Message: "demo please",
	}))

	require.NoError(t, s.Leads().CreateCustomerReview(ctx, domain.CustomerReview{
		ID: idx.New().String(), Name: "Jo", Email: "jo@example.com", Rating: 5, Review: "great product",
	}))

	sub := domain.NewsletterSubscriber{ID: idx.New().String(), Email: "jo@example.com", Source: "blog"}
	require.NoError(t, s.Leads().CreateNewsletterSubscriber(ctx, sub))

	dup := domain.NewsletterSubscriber{ID: idx.New().String(), Email: "jo@example.com"}
	require.ErrorIs(t, s.Leads().CreateNewsletterSubscriber(ctx, dup), store.ErrAlreadyExists)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	wantErr := store.ErrNotFound
	err := s.WithTx(ctx, func(tx store.Tx) error {
		u := domain.User{ID: idx.New().String(), Email: "tx@example.com", PasswordHash: "x"}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return wantErr
	})
	require.ErrorIs(t, err, wantErr)

	_, err = s.Users().GetUserByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
