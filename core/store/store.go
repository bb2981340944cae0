// Package store declares the transactional boundary shared by the roster and admission engines.
package store

import (
	"context"

	"github.com/skapefps/Unimap-sub001/core/favorite"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/roster"
	"github.com/skapefps/Unimap-sub001/core/schedule"
)

// Tx gives access to every repository inside one transaction.
type Tx interface {
	Identities() identity.Repository
	Roster() roster.Repository
	Sessions() schedule.Repository
	Favorites() favorite.Repository
}

// Store runs fn in a transaction: committed when fn returns nil, rolled back otherwise.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}
