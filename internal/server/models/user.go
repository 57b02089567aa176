package models

import "time"

// User binds an account address to its login material. The verifier is
// derived client-side from the password; the server never sees the password.
type User struct {
	ID        string
	Address   string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
