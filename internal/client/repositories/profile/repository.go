// Package profile stores the local CLI profile: the address last logged in
// and the login material needed to check its password offline.
package profile

import (
	"context"
)

// Profile is what the CLI remembers between runs.
type Profile struct {
	Address  string
	Salt     []byte
	Verifier []byte
}

type Repository interface {
	// Load returns common.ErrorNotFound when no profile is saved.
	Load(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	Clear(ctx context.Context) error
}
