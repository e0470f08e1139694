package customer

import "regexp"

// Shared shape checks for registration and login. Both flows must call these
// and nothing else; no trimming or case folding happens here or in callers.
var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	passwordPattern = regexp.MustCompile(`^[0-9]{8}$`)
)

// IsValidEmail reports whether s has a local@domain shape: no whitespace or
// extra '@' on either side, and at least one '.' in the domain part.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsValidPassword reports whether s is exactly 8 decimal digits. Leading
// zeros are allowed.
func IsValidPassword(s string) bool {
	return passwordPattern.MatchString(s)
}
