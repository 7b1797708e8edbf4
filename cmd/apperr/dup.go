package apperr

import "strings"

// IsDuplicateKey reports whether a storage error is a unique constraint
// violation. Matches both the Postgres and SQLite wording.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), "UNIQUE constraint")
}
