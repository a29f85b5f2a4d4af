package types

import "time"

// User is a registered account. Username is immutable and compared exactly.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
