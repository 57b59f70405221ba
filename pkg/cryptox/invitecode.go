package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// InviteCodeLength is the number of characters in a generated invite code.
const InviteCodeLength = 8

// inviteCodeCharset deliberately excludes lowercase so codes survive being
// read aloud or retyped from a screenshot.
const inviteCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInviteCode returns a random 8-character uppercase alphanumeric
// code. Codes are short enough to share over chat, so uniqueness is enforced
// by the storage layer, not by entropy alone.
func GenerateInviteCode() (string, error) {
	code := make([]byte, InviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeCharset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate invite code: %w", err)
		}
		code[i] = inviteCodeCharset[n.Int64()]
	}
	return string(code), nil
}
