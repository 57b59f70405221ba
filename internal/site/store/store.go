package store

import (
	"context"
	"errors"
	"time"

	"github.com/paymall/site-api/internal/site/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Users() Users
	Roles() Roles
	Invites() Invites
	Sessions() Sessions
	Blogs() Blogs
	Leads() Leads

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rollback if fn errors,
	// commit otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and idempotent setup.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) error
}

type Roles interface {
	// GrantRole inserts a role grant. Granting an already-held role returns
	// ErrAlreadyExists.
	GrantRole(ctx context.Context, g domain.RoleGrant) error

	// HasRole reports whether the user holds the role. Row existence is the
	// entitlement.
	HasRole(ctx context.Context, userID string, role domain.Role) (bool, error)
}

type Invites interface {
	// CreateInviteCode inserts a new unused code. Returns ErrAlreadyExists
	// on a code collision so the caller can regenerate and retry.
	CreateInviteCode(ctx context.Context, inv domain.InviteCode) error

	// GetUnusedInviteCode returns the invite row matching the literal code
	// string with used = false, or ErrNotFound. Callers must not distinguish
	// unknown from used in anything user-visible.
	GetUnusedInviteCode(ctx context.Context, code string) (domain.InviteCode, error)

	// ConsumeInviteCode flips used false->true, stamping used_by/used_at.
	// The update is conditional on used still being false; ErrNotFound is
	// returned when another registration won the race.
	ConsumeInviteCode(ctx context.Context, inviteID, usedByUserID string, at time.Time) error

	// ListInviteCodes returns all codes newest-first.
	ListInviteCodes(ctx context.Context) ([]domain.InviteCode, error)
}

type Sessions interface {
	// CreateSession stores a new session record.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByID returns a session by id regardless of liveness.
	GetSessionByID(ctx context.Context, id string) (domain.Session, error)

	// ListSessionsByUserID returns every session row for a user, newest
	// first, regardless of liveness.
	ListSessionsByUserID(ctx context.Context, userID string) ([]domain.Session, error)

	// RevokeSession stamps revoked_at. Revoking twice is a no-op.
	RevokeSession(ctx context.Context, id string) error

	// DeleteSession removes a session row (expiry cleanup on read path).
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context) error
}

type Blogs interface {
	// CreateBlog inserts a post. Returns ErrAlreadyExists on a slug clash.
	CreateBlog(ctx context.Context, b domain.Blog) error

	// UpdateBlog rewrites all mutable columns and bumps updated_at.
	UpdateBlog(ctx context.Context, b domain.Blog) error

	// DeleteBlog removes a post.
	DeleteBlog(ctx context.Context, id string) error

	// GetBlogByID returns any post by id (admin path).
	GetBlogByID(ctx context.Context, id string) (domain.Blog, error)

	// GetPublishedBlogBySlug returns a published post by slug (public path).
	GetPublishedBlogBySlug(ctx context.Context, slug string) (domain.Blog, error)

	// ListPublishedBlogs returns published posts newest-first by published_at.
	// limit <= 0 means no limit.
	ListPublishedBlogs(ctx context.Context, limit int) ([]domain.Blog, error)

	// ListFeaturedBlogs returns published+featured posts newest-first.
	ListFeaturedBlogs(ctx context.Context, limit int) ([]domain.Blog, error)

	// ListAllBlogs returns every post newest-first by created_at (admin path).
	ListAllBlogs(ctx context.Context) ([]domain.Blog, error)
}

type Leads interface {
	// CreateContactRequest stores a demo/contact submission.
	CreateContactRequest(ctx context.Context, c domain.ContactRequest) error

	// CreateCustomerReview stores a feedback submission.
	CreateCustomerReview(ctx context.Context, r domain.CustomerReview) error

	// CreateNewsletterSubscriber stores an opt-in. Returns ErrAlreadyExists
	// for a duplicate email.
	CreateNewsletterSubscriber(ctx context.Context, s domain.NewsletterSubscriber) error
}
