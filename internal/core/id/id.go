// Package id provides UUIDv7 generation plus invoice token generation.
// UUIDv7 is time-ordered, allowing natural sorting by creation time.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7 (time-ordered UUID).
func New() ID {
	// uuid.NewV7() returns UUIDv7 per RFC 9562
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 if V7 fails (should never happen)
		return uuid.New()
	}
	return id
}

// Parse converts string to ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts string to ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns zero-value UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero-value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}

// InvoiceToken returns a sortable invoice identifier built from the current
// millisecond timestamp plus a short entropy suffix. Monotonic enough for a
// single terminal; cross-terminal collisions are out of scope.
func InvoiceToken(now time.Time) string {
	buf := make([]byte, 2)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("INV-%d-0000", now.UnixMilli())
	}
	return fmt.Sprintf("INV-%d-%s", now.UnixMilli(), hex.EncodeToString(buf))
}
