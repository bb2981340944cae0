package sqlxrepos_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/admission"
	"github.com/skapefps/Unimap-sub001/core/favorite"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/roster"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
	"github.com/skapefps/Unimap-sub001/core/schedule"
	"github.com/skapefps/Unimap-sub001/core/store"
	"github.com/skapefps/Unimap-sub001/storage/database"
	sqlxrepos "github.com/skapefps/Unimap-sub001/storage/database/sqlx"
	"github.com/skapefps/Unimap-sub001/testutil"
)

var ctx = context.Background()

func openStore(t *testing.T) *sqlxrepos.Store {
	t.Helper()
	conf := testutil.NewConfig()
	conf.Database.Engine = database.SQLite
	conf.Database.Path = filepath.Join(t.TempDir(), "unimap.db")

	db, err := database.Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db.DB, database.SQLite))
	return sqlxrepos.NewStore(db)
}

func TestStore_identities(t *testing.T) {
	st := openStore(t)

	ada := testutil.CreateIdentity(t, st, "Ada", "ada@x.edu", identity.RoleStudent, "CS", 3)
	assert.Equal(t, 1, ada.Version)

	got, err := testutil.GetIdentity(t, st, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS", got.Course)
	assert.Equal(t, 3, got.CohortPeriod)
	assert.True(t, ada.CreatedAt.Equal(got.CreatedAt), "%s != %s", ada.CreatedAt, got.CreatedAt)

	err = st.Atomic(ctx, func(tx store.Tx) error {
		_, err := tx.Identities().CreateIdentity(ctx, identity.Identity{Name: "Dup", Email: "ada@x.edu", Role: identity.RoleStudent})
		return err
	})
	assert.Equal(t, identity.ErrEmailExists, errors.Cause(err))

	t.Run("version check", func(t *testing.T) {
		err := st.Atomic(ctx, func(tx store.Tx) error {
			fresh, err := tx.Identities().GetIdentity(ctx, ada.ID)
			require.NoError(t, err)
			fresh.Role = identity.RoleAdmin
			fresh.ClearAcademics()
			updated, err := tx.Identities().UpdateIdentity(ctx, fresh)
			require.NoError(t, err)
			assert.Equal(t, 2, updated.Version)

			_, err = tx.Identities().UpdateIdentity(ctx, fresh) // still version 1
			return err
		})
		assert.Equal(t, identity.ErrStale, errors.Cause(err))

		// rolled back
		got, err := testutil.GetIdentity(t, st, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, identity.RoleStudent, got.Role)
	})

	t.Run("soft delete frees the email", func(t *testing.T) {
		require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
			fresh, err := tx.Identities().GetIdentity(ctx, ada.ID)
			require.NoError(t, err)
			fresh.Deleted = true
			_, err = tx.Identities().UpdateIdentity(ctx, fresh)
			return err
		}))
		_, err := testutil.GetIdentity(t, st, ada.ID)
		assert.Equal(t, identity.ErrNotFound, errors.Cause(err))

		again := testutil.CreateIdentity(t, st, "Ada", "ada@x.edu", identity.RoleProfessor, "", 0)
		assert.NotEqual(t, ada.ID, again.ID)

		require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
			live, err := tx.Identities().QueryIdentities(ctx, identity.QueryFilter{})
			require.NoError(t, err)
			assert.Len(t, live, 1)
			all, err := tx.Identities().QueryIdentities(ctx, identity.QueryFilter{IncludeDeleted: true})
			require.NoError(t, err)
			assert.Len(t, all, 2)
			profs, err := tx.Identities().QueryIdentities(ctx, identity.QueryFilter{Role: identity.RoleProfessor})
			require.NoError(t, err)
			assert.Len(t, profs, 1)
			return nil
		}))
	})
}

func TestStore_roster(t *testing.T) {
	st := openStore(t)
	entry := testutil.CreateRosterEntry(t, st, "Ada", "ada@x.edu", true)
	testutil.CreateRosterEntry(t, st, "Bob", "bob@x.edu", false)

	err := st.Atomic(ctx, func(tx store.Tx) error {
		_, err := tx.Roster().CreateEntry(ctx, roster.Entry{Name: "Dup", Email: "ada@x.edu"})
		return err
	})
	assert.Equal(t, roster.ErrEmailExists, errors.Cause(err))

	err = st.Atomic(ctx, func(tx store.Tx) error {
		entry.Email = "bob@x.edu"
		_, err := tx.Roster().UpdateEntry(ctx, entry)
		return err
	})
	assert.True(t, core.IsConflict(err))

	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		active := true
		entries, err := tx.Roster().QueryEntries(ctx, roster.QueryFilter{Active: &active})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "ada@x.edu", entries[0].Email)

		assert.Equal(t, roster.ErrNotFound, errors.Cause(tx.Roster().DeleteEntry(ctx, 999)))
		return nil
	}))
}

func TestStore_sessions(t *testing.T) {
	st := openStore(t)
	entry := testutil.CreateRosterEntry(t, st, "Ada", "ada@x.edu", true)
	room := testutil.CreateRoom(t, st, "B-101")
	base := schedule.Session{
		Discipline: "Algorithms", ProfessorID: entry.ID, RoomID: room.ID,
		Course: "CS", Cohort: "T3", Start: "08:00", End: "10:00", Weekday: schedule.Wednesday, Active: true,
	}

	first := testutil.CreateSession(t, st, base)
	err := st.Atomic(ctx, func(tx store.Tx) error {
		_, err := tx.Sessions().CreateSession(ctx, base)
		return err
	})
	assert.Equal(t, schedule.ErrSessionExists, errors.Cause(err), "active key is unique")

	mon := base
	mon.Weekday, mon.Start, mon.End = schedule.Monday, "14:00", "16:00"
	testutil.CreateSession(t, st, mon)
	mon.Start, mon.End = "08:00", "09:00"
	testutil.CreateSession(t, st, mon)

	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		found, err := tx.Sessions().FindActiveSession(ctx, base.Key())
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
		assert.Equal(t, schedule.Wednesday, found.Weekday)

		canceled, err := tx.Sessions().SetSessionActive(ctx, first.ID, false)
		require.NoError(t, err)
		assert.False(t, canceled.Active)
		_, err = tx.Sessions().FindActiveSession(ctx, base.Key())
		assert.Equal(t, schedule.ErrSessionNotFound, errors.Cause(err))

		// a canceled twin does not hold the key
		twin, err := tx.Sessions().CreateSession(ctx, base)
		require.NoError(t, err)
		_, err = tx.Sessions().SetSessionActive(ctx, first.ID, true)
		assert.Equal(t, schedule.ErrSessionExists, errors.Cause(err))

		require.NoError(t, tx.Sessions().DeleteSession(ctx, twin.ID))
		return nil
	}))

	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		sessions, err := tx.Sessions().QuerySessions(ctx, schedule.QueryFilter{})
		require.NoError(t, err)
		slots := make([]string, 0, len(sessions))
		for _, s := range sessions {
			slots = append(slots, s.Weekday.String()+" "+s.Start)
		}
		assert.Equal(t, []string{"Mon 08:00", "Mon 14:00", "Wed 08:00"}, slots)

		active, err := tx.Sessions().QuerySessions(ctx, schedule.QueryFilter{ActiveOnly: true})
		require.NoError(t, err)
		assert.Len(t, active, 2)

		law := "Law"
		none, err := tx.Sessions().QuerySessions(ctx, schedule.QueryFilter{Course: &law})
		require.NoError(t, err)
		assert.Empty(t, none)
		return nil
	}))

	t.Run("dangling references", func(t *testing.T) {
		bad := base
		bad.RoomID = 999
		err := st.Atomic(ctx, func(tx store.Tx) error {
			_, err := tx.Sessions().CreateSession(ctx, bad)
			return err
		})
		require.Error(t, err)
		assert.False(t, core.IsConflict(err))

		err = st.Atomic(ctx, func(tx store.Tx) error { return tx.Roster().DeleteEntry(ctx, entry.ID) })
		require.Error(t, err, "sessions still reference the entry")
	})
}

func TestStore_favorites(t *testing.T) {
	st := openStore(t)
	stud := testutil.CreateIdentity(t, st, "Linus", "linus@x.edu", identity.RoleStudent, "CS", 2)
	ada := testutil.CreateRosterEntry(t, st, "Ada", "ada@x.edu", true)
	bob := testutil.CreateRosterEntry(t, st, "Bob", "bob@x.edu", true)

	testutil.AddFavorite(t, st, stud.ID, bob.ID)
	testutil.AddFavorite(t, st, stud.ID, ada.ID)
	assert.True(t, testutil.HasFavorite(t, st, stud.ID, ada.ID))

	err := st.Atomic(ctx, func(tx store.Tx) error {
		_, err := tx.Favorites().AddFavorite(ctx, favorite.Link{StudentID: stud.ID, ProfessorID: ada.ID})
		return err
	})
	assert.Equal(t, favorite.ErrExists, errors.Cause(err))

	require.NoError(t, st.Atomic(ctx, func(tx store.Tx) error {
		links, err := tx.Favorites().QueryFavorites(ctx, stud.ID)
		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, ada.ID, links[0].ProfessorID)

		n, err := tx.Favorites().DeleteFavoritesByProfessor(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	}))
	assert.False(t, testutil.HasFavorite(t, st, stud.ID, ada.ID))
}

func TestStore_enginesEndToEnd(t *testing.T) {
	st := openStore(t)
	v, logger := testutil.NewValidator(), testutil.NewLogger()
	sync := rostersync.NewService(st, v, logger)
	adm := admission.NewService(st, v, logger)

	prof, reg, err := sync.RegisterIdentity(ctx, identity.NewIdentity{Name: "Ada", Email: "ada@x.edu", Role: identity.RoleProfessor})
	require.NoError(t, err)
	assert.Equal(t, rostersync.ActionCreated, reg.RosterAction)
	entry, err := testutil.GetRosterEntryByEmail(t, st, "ada@x.edu")
	require.NoError(t, err)

	room, err := adm.CreateRoom(ctx, schedule.NewRoom{Name: "B-101"})
	require.NoError(t, err)
	req := schedule.NewSession{
		Discipline: "Algorithms", ProfessorID: entry.ID, RoomID: room.ID,
		Course: "CS", Cohort: "T3", Start: "08:00", End: "10:00",
	}
	res, err := adm.AdmitSessions(ctx, req, []string{"Mon", "Wed", "Fri"})
	require.NoError(t, err)
	require.Len(t, res.Created, 3)

	res, err = adm.AdmitSessions(ctx, req, []string{"Mon", "Tue"})
	require.NoError(t, err)
	assert.Equal(t, []schedule.Weekday{schedule.Tuesday}, res.CreatedWeekdays())
	assert.Equal(t, []schedule.Weekday{schedule.Monday}, res.DuplicateWeekdays())

	for _, email := range []string{"s1@x.edu", "s2@x.edu"} {
		s := testutil.CreateIdentity(t, st, "Student", email, identity.RoleStudent, "CS", 3)
		testutil.AddFavorite(t, st, s.ID, entry.ID)
	}

	_, err = sync.DeleteRosterEntry(ctx, entry.ID)
	assert.True(t, core.IsInvalidState(err))

	del, err := sync.DeleteIdentity(ctx, prof.ID)
	require.NoError(t, err)
	assert.Equal(t, rostersync.IdentityDeletion{SessionsRemoved: 4, FavoritesRemoved: 2, RosterDeleted: true}, del)

	visible, err := adm.ListVisibleSessions(ctx, schedule.Student{Course: "CS", Period: 3})
	require.NoError(t, err)
	assert.Empty(t, visible)

	violations, err := sync.Audit(ctx)
	require.NoError(t, err)
	assert.Empty(t, violations)
}
