package cryptox

import "crypto/subtle"

// SecureCompare reports whether two strings are equal without leaking, via
// timing, the position of the first differing byte. Inputs of unequal length
// compare unequal; the length itself is not secret.
func SecureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
