// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/favorite"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/roster"
	"github.com/skapefps/Unimap-sub001/core/schedule"
	"github.com/skapefps/Unimap-sub001/core/store"
	logsvc "github.com/skapefps/Unimap-sub001/services/logger"
)

// NewValidator returns a validator with every domain rule registered, as the apps set it up.
func NewValidator() *core.Validator {
	v := core.NewValidator()
	identity.InitValidators(v.Validate(), v.Translator())
	schedule.InitValidators(v.Validate(), v.Translator())
	return v
}

// NewConfig returns a TEST configuration without touching the environment.
func NewConfig() *core.Config {
	return &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "Unimap",
		Build:     "test",
		SecretKey: "test-secret",
		Server:    core.ServerConfig{Host: "localhost:0", JWTExpirationDelta: time.Hour},
		Database:  core.DatabaseConfig{Engine: "sqlite3"},
	}
}

// NewLogger returns a logger that reports nowhere.
func NewLogger() core.Logger {
	l := logsvc.NewRollbarLogger(io.Discard, "TEST", NewConfig())
	l.Enable(false)
	return l
}

func atomic(t *testing.T, st store.Store, fn func(tx store.Tx) error) {
	t.Helper()
	if err := st.Atomic(context.Background(), fn); err != nil {
		t.Fatalf("fixture failed: %v", err)
	}
}

// CreateIdentity stores an identity as-is, bypassing roster sync.
func CreateIdentity(t *testing.T, st store.Store, name, email, role string, course string, period int) identity.Identity {
	t.Helper()
	var ident identity.Identity
	atomic(t, st, func(tx store.Tx) error {
		var err error
		ident, err = tx.Identities().CreateIdentity(context.Background(), identity.Identity{
			Name:         name,
			Email:        email,
			Role:         role,
			Course:       course,
			CohortPeriod: period,
		})
		return err
	})
	return ident
}

// CreateRosterEntry stores a roster entry as-is, bypassing identity sync.
func CreateRosterEntry(t *testing.T, st store.Store, name, email string, active bool) roster.Entry {
	t.Helper()
	var entry roster.Entry
	atomic(t, st, func(tx store.Tx) error {
		var err error
		entry, err = tx.Roster().CreateEntry(context.Background(), roster.Entry{Name: name, Email: email, Active: active})
		return err
	})
	return entry
}

func GetRosterEntryByEmail(t *testing.T, st store.Store, email string) (roster.Entry, error) {
	t.Helper()
	var entry roster.Entry
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		var err error
		entry, err = tx.Roster().GetEntryByEmail(context.Background(), email)
		return err
	})
	return entry, err
}

func GetIdentity(t *testing.T, st store.Store, id int) (identity.Identity, error) {
	t.Helper()
	var ident identity.Identity
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		var err error
		ident, err = tx.Identities().GetIdentity(context.Background(), id)
		return err
	})
	return ident, err
}

func CreateRoom(t *testing.T, st store.Store, name string) schedule.Room {
	t.Helper()
	var room schedule.Room
	atomic(t, st, func(tx store.Tx) error {
		var err error
		room, err = tx.Sessions().CreateRoom(context.Background(), schedule.Room{Name: name})
		return err
	})
	return room
}

func CreateSession(t *testing.T, st store.Store, sess schedule.Session) schedule.Session {
	t.Helper()
	atomic(t, st, func(tx store.Tx) error {
		var err error
		sess, err = tx.Sessions().CreateSession(context.Background(), sess)
		return err
	})
	return sess
}

func GetSession(t *testing.T, st store.Store, id int) (schedule.Session, error) {
	t.Helper()
	var sess schedule.Session
	err := st.Atomic(context.Background(), func(tx store.Tx) error {
		var err error
		sess, err = tx.Sessions().GetSession(context.Background(), id)
		return err
	})
	return sess, err
}

func AddFavorite(t *testing.T, st store.Store, studentID, professorID int) favorite.Link {
	t.Helper()
	var link favorite.Link
	atomic(t, st, func(tx store.Tx) error {
		var err error
		link, err = tx.Favorites().AddFavorite(context.Background(), favorite.Link{StudentID: studentID, ProfessorID: professorID})
		return err
	})
	return link
}

func HasFavorite(t *testing.T, st store.Store, studentID, professorID int) bool {
	t.Helper()
	var ok bool
	atomic(t, st, func(tx store.Tx) error {
		var err error
		ok, err = tx.Favorites().HasFavorite(context.Background(), studentID, professorID)
		return err
	})
	return ok
}
