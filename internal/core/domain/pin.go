package domain

import (
	"time"

	"github.com/google/uuid"
)

// PinRecord holds the transfer-PIN authorization state for one user.
// Lifecycle: created with a nil hash and MustSetPin=true at account
// creation; MustSetPin clears only after a successful set; an
// administrator reset returns the record to the unset state.
type PinRecord struct {
	UserID      uuid.UUID `json:"user_id"`
	PinHash     *string   `json:"-"` // Argon2id encoded hash, never exposed
	MustSetPin  bool      `json:"must_set_pin"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
	ResetBy     *string   `json:"reset_by,omitempty"`
}

// IsConfigured reports whether a PIN is currently usable.
func (r *PinRecord) IsConfigured() bool {
	return r.PinHash != nil && *r.PinHash != ""
}
