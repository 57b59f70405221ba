package domain

import "time"

// InviteCode is a single-use token gating admin self-registration. A code
// transitions used false->true exactly once; UsedBy and UsedAt are stamped
// atomically with that transition.
type InviteCode struct {
	ID        string
	Code      string // 8 uppercase alphanumeric characters
	Used      bool
	UsedBy    string // user id, empty until consumed
	UsedAt    *time.Time
	CreatedBy string // admin user id that minted the code
	CreatedAt time.Time
}
