package identity

import (
	"context"

	"github.com/skapefps/Unimap-sub001/core"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("identity")
	ErrEmailExists = core.NewConflictError("an identity with this email already exists")
	ErrStale       = core.NewConflictError("identity was modified concurrently, retry")
)

// Repository stores identities. Soft-deleted identities are invisible to the getters.
type Repository interface {
	// CreateIdentity fails with ErrEmailExists when a live identity already has the email.
	CreateIdentity(ctx context.Context, ident Identity) (Identity, error)
	GetIdentity(ctx context.Context, id int) (Identity, error)
	GetIdentityByEmail(ctx context.Context, email string) (Identity, error)
	// UpdateIdentity saves ident if its Version is still current, and bumps it.
	// A stale Version fails with ErrStale.
	UpdateIdentity(ctx context.Context, ident Identity) (Identity, error)
	QueryIdentities(ctx context.Context, filter QueryFilter) ([]Identity, error)
}
