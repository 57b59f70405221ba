package domain

import "time"

// Session is the server-side record backing an issued session token. A token
// is only honored while its session row is live: not revoked and not past
// ExpiresAt. Expired rows are treated as unauthenticated and deleted on the
// next check.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Live reports whether the session should still be honored at the given time.
func (s Session) Live(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
