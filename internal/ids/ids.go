// Package ids provides the opaque 128-bit identifiers and time helpers
// shared across the engine's data model.
package ids

import (
	"time"

	"github.com/google/uuid"
)

// ID is a 128-bit opaque identifier.
type ID = uuid.UUID

// New generates a fresh random ID.
func New() ID {
	return uuid.New()
}

// Nil is the zero-value ID, used to mean "absent" for optional reference
// fields without resorting to pointers everywhere.
var Nil = uuid.Nil

// Parse parses a canonical UUID string.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse panics if s is not a valid UUID. Reserved for static test
// fixtures and embedded-data construction, never for request handling.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Now returns the current time truncated to microsecond precision, the
// granularity the repository's SQLite timestamp columns preserve.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
