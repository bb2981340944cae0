package admission_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skapefps/Unimap-sub001/core"
	. "github.com/skapefps/Unimap-sub001/core/admission"
	"github.com/skapefps/Unimap-sub001/core/identity"
	"github.com/skapefps/Unimap-sub001/core/rostersync"
	"github.com/skapefps/Unimap-sub001/core/schedule"
	"github.com/skapefps/Unimap-sub001/core/store"
	inmemdb "github.com/skapefps/Unimap-sub001/storage/database/inmem"
	"github.com/skapefps/Unimap-sub001/testutil"
)

var ctx = context.Background()

type fixture struct {
	db        *inmemdb.DB
	svc       *Service
	professor int
	room      int
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := inmemdb.Open()
	entry := testutil.CreateRosterEntry(t, db, "Ada", "ada@x.edu", true)
	room := testutil.CreateRoom(t, db, "B-101")
	return fixture{
		db:        db,
		svc:       NewService(db, testutil.NewValidator(), testutil.NewLogger()),
		professor: entry.ID,
		room:      room.ID,
	}
}

func (f fixture) request() schedule.NewSession {
	return schedule.NewSession{
		Discipline:  "Algorithms",
		ProfessorID: f.professor,
		RoomID:      f.room,
		Course:      "CS",
		Cohort:      "T3",
		Start:       "08:00",
		End:         "10:00",
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "want validation error, got %v", err)
	names := make([]string, 0, len(vErr.Fields))
	for _, f := range vErr.Fields {
		names = append(names, f.Field)
	}
	return names
}

func TestService_AdmitSessions_idempotent(t *testing.T) {
	f := setup(t)

	first, err := f.svc.AdmitSessions(ctx, f.request(), []string{"Mon", "Wed"})
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, MsgCreated, first.Message)
	assert.Equal(t, []schedule.Weekday{schedule.Monday, schedule.Wednesday}, first.CreatedWeekdays())
	for _, s := range first.Created {
		assert.True(t, s.Active)
		assert.NotZero(t, s.ID)
	}

	second, err := f.svc.AdmitSessions(ctx, f.request(), []string{"Mon", "Wed"})
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, MsgAllDuplicates, second.Message)
	assert.Empty(t, second.Created)
	assert.Empty(t, second.Failed)
	assert.Equal(t, []schedule.Weekday{schedule.Monday, schedule.Wednesday}, second.DuplicateWeekdays())
	assert.Equal(t, first.Created, second.Duplicates, "duplicates point at the existing sessions")
}

func TestService_AdmitSessions_partialBatch(t *testing.T) {
	f := setup(t)

	_, err := f.svc.AdmitSessions(ctx, f.request(), []string{"Mon"})
	require.NoError(t, err)

	res, err := f.svc.AdmitSessions(ctx, f.request(), []string{"Mon", "Tue"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, MsgPartial, res.Message)
	assert.Equal(t, []schedule.Weekday{schedule.Tuesday}, res.CreatedWeekdays())
	assert.Equal(t, []schedule.Weekday{schedule.Monday}, res.DuplicateWeekdays())
}

func TestService_AdmitSessions_weekdayCodes(t *testing.T) {
	f := setup(t)

	res, err := f.svc.AdmitSessions(ctx, f.request(), []string{"sexta", "3", "Terça-feira", "fri"})
	require.NoError(t, err)
	assert.Equal(t, []schedule.Weekday{schedule.Friday, schedule.Wednesday, schedule.Tuesday}, res.CreatedWeekdays(),
		"request order, repeats dropped")
}

func TestService_AdmitSessions_canceledDoesNotCount(t *testing.T) {
	f := setup(t)

	first, err := f.svc.AdmitSessions(ctx, f.request(), []string{"Mon"})
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, first.Created[0].ID)
	require.NoError(t, err)

	res, err := f.svc.AdmitSessions(ctx, f.request(), []string{"Mon"})
	require.NoError(t, err)
	require.Len(t, res.Created, 1)
	assert.NotEqual(t, first.Created[0].ID, res.Created[0].ID)

	// the canceled twin can no longer come back
	_, err = f.svc.Reactivate(ctx, first.Created[0].ID)
	assert.True(t, core.IsConflict(err), "got %v", err)
}

func TestService_AdmitSessions_validation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name     string
		mutate   func(ns *schedule.NewSession)
		weekdays []string
		want     []string
	}{
		{"missing fields", func(ns *schedule.NewSession) {
			ns.Discipline, ns.Cohort, ns.ProfessorID = " ", "", 0
		}, []string{"Mon"}, []string{"discipline", "cohort", "professor_id"}},
		{"malformed time", func(ns *schedule.NewSession) { ns.Start = "8:00" }, []string{"Mon"}, []string{"start"}},
		{"start after end", func(ns *schedule.NewSession) { ns.Start = "11:00" }, []string{"Mon"}, []string{"end"}},
		{"start equals end", func(ns *schedule.NewSession) { ns.End = "08:00" }, []string{"Mon"}, []string{"end"}},
		{"no weekdays", func(ns *schedule.NewSession) {}, nil, []string{"weekdays"}},
		{"unknown weekday", func(ns *schedule.NewSession) {}, []string{"Mon", "Sat"}, []string{"weekdays"}},
		{"everything", func(ns *schedule.NewSession) { ns.Course = "" }, []string{"6"}, []string{"course", "weekdays"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ns := f.request()
			tc.mutate(&ns)
			_, err := f.svc.AdmitSessions(ctx, ns, tc.weekdays)
			require.Error(t, err)
			assert.ElementsMatch(t, tc.want, fieldNames(t, err))
		})
	}

	sessions, err := f.svc.QuerySessions(ctx, schedule.QueryFilter{})
	require.NoError(t, err)
	assert.Empty(t, sessions, "nothing inserted")
}

// flakyStore fails inserts for one weekday.
type flakyStore struct {
	store.Store
	failOn schedule.Weekday
}
type flakyTx struct {
	store.Tx
	failOn schedule.Weekday
}
type flakySessions struct {
	schedule.Repository
	failOn schedule.Weekday
}

func (s flakyStore) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.Atomic(ctx, func(tx store.Tx) error { return fn(flakyTx{tx, s.failOn}) })
}
func (tx flakyTx) Sessions() schedule.Repository {
	return flakySessions{tx.Tx.Sessions(), tx.failOn}
}
func (r flakySessions) CreateSession(ctx context.Context, sess schedule.Session) (schedule.Session, error) {
	if sess.Weekday == r.failOn {
		return schedule.Session{}, errors.New("connection reset")
	}
	return r.Repository.CreateSession(ctx, sess)
}

func TestService_AdmitSessions_storeFailureIsPerWeekday(t *testing.T) {
	f := setup(t)
	svc := NewService(flakyStore{f.db, schedule.Tuesday}, testutil.NewValidator(), testutil.NewLogger())

	res, err := svc.AdmitSessions(ctx, f.request(), []string{"Mon", "Tue", "Wed"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []schedule.Weekday{schedule.Monday, schedule.Wednesday}, res.CreatedWeekdays())
	require.Len(t, res.Failed, 1)
	assert.Equal(t, schedule.Tuesday, res.Failed[0].Weekday)
	assert.False(t, res.Failed[0].Conflict)
	assert.NotContains(t, res.Failed[0].Reason, "connection reset")

	only, err := svc.AdmitSessions(ctx, f.request(), []string{"Tue"})
	require.NoError(t, err)
	assert.False(t, only.Success)
	assert.Equal(t, MsgNoneCreated, only.Message)
}

func TestService_AdmitSessions_vanishedRoom(t *testing.T) {
	f := setup(t)
	req := f.request()
	req.RoomID = 999

	res, err := f.svc.AdmitSessions(ctx, req, []string{"Mon"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, []schedule.Weekday{schedule.Monday}, res.FailedWeekdays())
}

// blindSessions never sees existing sessions, as a concurrent admission would not.
type blindStore struct{ store.Store }
type blindTx struct{ store.Tx }
type blindSessions struct{ schedule.Repository }

func (s blindStore) Atomic(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.Store.Atomic(ctx, func(tx store.Tx) error { return fn(blindTx{tx}) })
}
func (tx blindTx) Sessions() schedule.Repository { return blindSessions{tx.Tx.Sessions()} }
func (blindSessions) FindActiveSession(context.Context, schedule.Key) (schedule.Session, error) {
	return schedule.Session{}, schedule.ErrSessionNotFound
}

func TestService_AdmitSessions_constraintIsAuthoritative(t *testing.T) {
	f := setup(t)
	_, err := f.svc.AdmitSessions(ctx, f.request(), []string{"Mon"})
	require.NoError(t, err)

	svc := NewService(blindStore{f.db}, testutil.NewValidator(), testutil.NewLogger())
	res, err := svc.AdmitSessions(ctx, f.request(), []string{"Mon"})
	require.NoError(t, err)
	require.Len(t, res.Failed, 1)
	assert.True(t, res.Failed[0].Conflict)

	sessions, err := f.svc.QuerySessions(ctx, schedule.QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestService_CancelReactivate(t *testing.T) {
	f := setup(t)
	res, err := f.svc.AdmitSessions(ctx, f.request(), []string{"Thu"})
	require.NoError(t, err)
	id := res.Created[0].ID

	for i := 0; i < 2; i++ {
		sess, err := f.svc.Cancel(ctx, id)
		require.NoError(t, err)
		assert.False(t, sess.Active)
	}
	for i := 0; i < 2; i++ {
		sess, err := f.svc.Reactivate(ctx, id)
		require.NoError(t, err)
		assert.True(t, sess.Active)
	}

	_, err = f.svc.Cancel(ctx, 999)
	assert.True(t, core.IsNotFound(err))

	require.NoError(t, f.svc.Delete(ctx, id))
	err = f.svc.Delete(ctx, id)
	assert.Equal(t, schedule.ErrSessionNotFound, errors.Cause(err))
}

func TestService_ListVisibleSessions(t *testing.T) {
	f := setup(t)
	admit := func(course, cohort, start string, days ...string) {
		req := f.request()
		req.Course, req.Cohort, req.Start, req.End = course, cohort, start, "23:00"
		if course == "" || cohort == "" {
			// bypass validation: open sessions come from plain CRUD
			for _, code := range days {
				day, err := schedule.ParseWeekday(code)
				require.NoError(t, err)
				testutil.CreateSession(t, f.db, req.Session(day))
			}
			return
		}
		_, err := f.svc.AdmitSessions(ctx, req, days)
		require.NoError(t, err)
	}
	admit("CS", "T3", "14:00", "Mon")
	admit("CS", "T3/T4", "08:00", "Wed")
	admit("CS", "T4", "09:00", "Mon")
	admit("EE", "T3", "09:00", "Mon")
	admit("", "", "10:00", "Mon", "Fri")
	admit("CS", "", "07:00", "Tue")

	canceled, err := f.svc.AdmitSessions(ctx, func() schedule.NewSession {
		r := f.request()
		r.Discipline = "Compilers"
		return r
	}(), []string{"Mon"})
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, canceled.Created[0].ID)
	require.NoError(t, err)

	type slot struct {
		Day   schedule.Weekday
		Start string
	}
	slots := func(sessions []schedule.Session) []slot {
		out := make([]slot, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, slot{s.Weekday, s.Start})
		}
		return out
	}

	got, err := f.svc.ListVisibleSessions(ctx, schedule.Student{Course: "CS", Period: 3})
	require.NoError(t, err)
	assert.Equal(t, []slot{
		{schedule.Monday, "10:00"},
		{schedule.Monday, "14:00"},
		{schedule.Tuesday, "07:00"},
		{schedule.Wednesday, "08:00"},
		{schedule.Friday, "10:00"},
	}, slots(got))

	got, err = f.svc.ListVisibleSessions(ctx, schedule.Student{Course: "CS", Period: 4})
	require.NoError(t, err)
	assert.Equal(t, []slot{
		{schedule.Monday, "09:00"},
		{schedule.Monday, "10:00"},
		{schedule.Tuesday, "07:00"},
		{schedule.Wednesday, "08:00"},
		{schedule.Friday, "10:00"},
	}, slots(got))

	got, err = f.svc.ListVisibleSessions(ctx, schedule.Student{Course: "Law", Period: 1})
	require.NoError(t, err)
	assert.Equal(t, []slot{{schedule.Monday, "10:00"}, {schedule.Friday, "10:00"}}, slots(got))

	_, err = f.svc.ListVisibleSessions(ctx, schedule.Student{Course: "CS", Period: -1})
	assert.True(t, core.IsValidation(err))
}

func TestService_rooms(t *testing.T) {
	f := setup(t)

	room, err := f.svc.CreateRoom(ctx, schedule.NewRoom{Name: "  Lab 2 "})
	require.NoError(t, err)
	assert.Equal(t, "Lab 2", room.Name)

	_, err = f.svc.CreateRoom(ctx, schedule.NewRoom{})
	assert.True(t, core.IsValidation(err))

	rooms, err := f.svc.QueryRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "B-101", rooms[0].Name)
}

func TestEndToEnd_professorLifecycle(t *testing.T) {
	db := inmemdb.Open()
	v, logger := testutil.NewValidator(), testutil.NewLogger()
	sync := rostersync.NewService(db, v, logger)
	admission := NewService(db, v, logger)

	for i := 1; i < 7; i++ {
		testutil.CreateIdentity(t, db, "Filler", "filler"+string(rune('0'+i))+"@x.edu", identity.RoleStudent, "", 0)
	}
	ident := testutil.CreateIdentity(t, db, "Alan", "a@x.edu", identity.RoleStudent, "CS", 3)
	require.Equal(t, 7, ident.ID)
	room := testutil.CreateRoom(t, db, "B-101")
	require.Equal(t, 1, room.ID)

	change, err := sync.ChangeRole(ctx, 7, identity.RoleProfessor)
	require.NoError(t, err)
	assert.Equal(t, rostersync.ActionCreated, change.RosterAction)
	entry, err := testutil.GetRosterEntryByEmail(t, db, "a@x.edu")
	require.NoError(t, err)
	assert.Equal(t, "Alan", entry.Name)
	assert.True(t, entry.Active)

	res, err := admission.AdmitSessions(ctx, schedule.NewSession{
		Discipline: "Algorithms", ProfessorID: entry.ID, RoomID: 1,
		Course: "CS", Cohort: "T3", Start: "08:00", End: "10:00",
	}, []string{"Mon", "Wed"})
	require.NoError(t, err)
	require.Len(t, res.Created, 2)

	change, err = sync.ChangeRole(ctx, 7, identity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, rostersync.ActionDeactivated, change.RosterAction)
	entry, err = testutil.GetRosterEntryByEmail(t, db, "a@x.edu")
	require.NoError(t, err)
	assert.False(t, entry.Active)

	visible, err := admission.ListVisibleSessions(ctx, schedule.Student{Course: "CS", Period: 3})
	require.NoError(t, err)
	assert.Equal(t, res.Created, visible)
}
