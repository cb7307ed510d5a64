package domain

import "time"

type UserID string

// User is an authenticated API account. Its Address is the ledger identity
// the engine compares against stream parties.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	Address      Address
	CreatedAt    time.Time
}
