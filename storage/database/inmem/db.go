package inmemdb

import (
	"context"
	"sync"

	"github.com/skapefps/Unimap-sub001/core/favorite"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/roster"
	"github.com/skapefps/Unimap-sub001/core/schedule"
	"github.com/skapefps/Unimap-sub001/core/store"
)

type (
	// DB is a process-local store. Atomic holds one lock for the whole callback,
	// so transactions are serialized, and restores a snapshot on error.
	DB struct {
		mutex  sync.Mutex
		tables tables
	}

	tables struct {
		identity map[int]identity.Identity
		roster   map[int]roster.Entry
		room     map[int]schedule.Room
		session  map[int]schedule.Session
		favorite map[favoriteKey]favorite.Link
		pkCount  pkCount
	}

	pkCount struct {
		identity, roster, room, session int
	}

	favoriteKey struct {
		studentID, professorID int
	}
)

var _ store.Store = (*DB)(nil) // interface compliance check

func Open() *DB {
	return &DB{tables: newTables()}
}

func newTables() tables {
	return tables{
		identity: make(map[int]identity.Identity),
		roster:   make(map[int]roster.Entry),
		room:     make(map[int]schedule.Room),
		session:  make(map[int]schedule.Session),
		favorite: make(map[favoriteKey]favorite.Link),
	}
}

func (t tables) clone() tables {
	c := newTables()
	for k, v := range t.identity {
		c.identity[k] = v
	}
	for k, v := range t.roster {
		c.roster[k] = v
	}
	for k, v := range t.room {
		c.room[k] = v
	}
	for k, v := range t.session {
		c.session[k] = v
	}
	for k, v := range t.favorite {
		c.favorite[k] = v
	}
	c.pkCount = t.pkCount
	return c
}

func (db *DB) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mutex.Lock()
	defer db.mutex.Unlock()

	snapshot := db.tables.clone()
	if err := fn(&tx{t: &db.tables}); err != nil {
		db.tables = snapshot
		return err
	}
	return nil
}

type tx struct {
	t *tables
}

func (tx *tx) Identities() identity.Repository { return &identityRepository{t: tx.t} }
func (tx *tx) Roster() roster.Repository       { return &rosterRepository{t: tx.t} }
func (tx *tx) Sessions() schedule.Repository   { return &scheduleRepository{t: tx.t} }
func (tx *tx) Favorites() favorite.Repository  { return &favoriteRepository{t: tx.t} }
