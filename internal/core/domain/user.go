package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal directory entry the ledger needs to resolve a
// transfer recipient by username. Signup, login, and sessions live
// outside this service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
