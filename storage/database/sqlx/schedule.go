package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/schedule"
)

const sessionColumns = "id, discipline, professor_id, room_id, course, cohort, start_time, end_time, weekday, active, created_at, updated_at"

type roomRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (r roomRow) room() schedule.Room {
	return schedule.Room{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt.UTC()}
}

type sessionRow struct {
	ID          int              `db:"id"`
	Discipline  string           `db:"discipline"`
	ProfessorID int              `db:"professor_id"`
	RoomID      int              `db:"room_id"`
	Course      string           `db:"course"`
	Cohort      string           `db:"cohort"`
	Start       string           `db:"start_time"`
	End         string           `db:"end_time"`
	Weekday     schedule.Weekday `db:"weekday"`
	Active      bool             `db:"active"`
	CreatedAt   time.Time        `db:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at"`
}

func (r sessionRow) session() schedule.Session {
	return schedule.Session{
		ID:          r.ID,
		Discipline:  r.Discipline,
		ProfessorID: r.ProfessorID,
		RoomID:      r.RoomID,
		Course:      r.Course,
		Cohort:      r.Cohort,
		Start:       r.Start,
		End:         r.End,
		Weekday:     r.Weekday,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func sessionsFromRows(rows []sessionRow) []schedule.Session {
	sessions := make([]schedule.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.session())
	}
	return sessions
}

type scheduleRepository struct {
	querier
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func (repo *scheduleRepository) CreateRoom(ctx context.Context, room schedule.Room) (schedule.Room, error) {
	room.CreatedAt = now()
	id, err := repo.insert(ctx, "INSERT INTO rooms (name, created_at) VALUES (?, ?)", room.Name, room.CreatedAt)
	if err != nil {
		return schedule.Room{}, errors.Wrap(err, "inserting room")
	}
	room.ID = id
	return room, nil
}

func (repo *scheduleRepository) GetRoom(ctx context.Context, id int) (schedule.Room, error) {
	var row roomRow
	if err := repo.get(ctx, &row, "SELECT id, name, created_at FROM rooms WHERE id = ?", id); err != nil {
		return schedule.Room{}, trapErr(err, schedule.ErrRoomNotFound, nil, "selecting room")
	}
	return row.room(), nil
}

func (repo *scheduleRepository) QueryRooms(ctx context.Context) ([]schedule.Room, error) {
	var rows []roomRow
	if err := repo.selectAll(ctx, &rows, "SELECT id, name, created_at FROM rooms ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "selecting rooms")
	}
	rooms := make([]schedule.Room, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, r.room())
	}
	return rooms, nil
}

func (repo *scheduleRepository) DeleteRoom(ctx context.Context, id int) error {
	n, err := repo.execAffected(ctx, "DELETE FROM rooms WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting room")
	}
	if n == 0 {
		return schedule.ErrRoomNotFound
	}
	return nil
}

func (repo *scheduleRepository) CreateSession(ctx context.Context, sess schedule.Session) (schedule.Session, error) {
	sess.CreatedAt = now()
	sess.UpdatedAt = sess.CreatedAt
	id, err := repo.insert(ctx,
		`INSERT INTO sessions (discipline, professor_id, room_id, course, cohort, start_time, end_time, weekday, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.Discipline, sess.ProfessorID, sess.RoomID, sess.Course, sess.Cohort,
		sess.Start, sess.End, int(sess.Weekday), sess.Active, sess.CreatedAt, sess.UpdatedAt,
	)
	if err != nil {
		return schedule.Session{}, trapErr(err, nil, schedule.ErrSessionExists, "inserting session")
	}
	sess.ID = id
	return sess, nil
}

func (repo *scheduleRepository) GetSession(ctx context.Context, id int) (schedule.Session, error) {
	var row sessionRow
	if err := repo.get(ctx, &row, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?"+repo.forUpdate, id); err != nil {
		return schedule.Session{}, trapErr(err, schedule.ErrSessionNotFound, nil, "selecting session")
	}
	return row.session(), nil
}

func (repo *scheduleRepository) FindActiveSession(ctx context.Context, key schedule.Key) (schedule.Session, error) {
	var row sessionRow
	err := repo.get(ctx, &row,
		`SELECT `+sessionColumns+` FROM sessions
		WHERE professor_id = ? AND discipline = ? AND room_id = ? AND course = ? AND cohort = ?
		AND start_time = ? AND end_time = ? AND weekday = ? AND active`,
		key.ProfessorID, key.Discipline, key.RoomID, key.Course, key.Cohort, key.Start, key.End, int(key.Weekday),
	)
	if err != nil {
		return schedule.Session{}, trapErr(err, schedule.ErrSessionNotFound, nil, "selecting active session")
	}
	return row.session(), nil
}

func (repo *scheduleRepository) SetSessionActive(ctx context.Context, id int, active bool) (schedule.Session, error) {
	sess, err := repo.GetSession(ctx, id)
	if err != nil {
		return schedule.Session{}, err
	}
	if sess.Active == active {
		return sess, nil
	}

	sess.Active = active
	sess.UpdatedAt = now()
	if _, err = repo.execAffected(ctx, "UPDATE sessions SET active = ?, updated_at = ? WHERE id = ?", sess.Active, sess.UpdatedAt, id); err != nil {
		return schedule.Session{}, trapErr(err, nil, schedule.ErrSessionExists, "updating session")
	}
	return sess, nil
}

func (repo *scheduleRepository) DeleteSession(ctx context.Context, id int) error {
	n, err := repo.execAffected(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	if n == 0 {
		return schedule.ErrSessionNotFound
	}
	return nil
}

func (repo *scheduleRepository) DeleteSessionsByProfessor(ctx context.Context, professorID int) (int, error) {
	n, err := repo.execAffected(ctx, "DELETE FROM sessions WHERE professor_id = ?", professorID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting sessions")
	}
	return n, nil
}

func (repo *scheduleRepository) QuerySessions(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Session, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ActiveOnly {
		conds = append(conds, "active")
	}
	if filter.ProfessorID != 0 {
		conds = append(conds, "professor_id = ?")
		args = append(args, filter.ProfessorID)
	}
	if filter.Course != nil {
		conds = append(conds, "(course = ? OR course = '')")
		args = append(args, *filter.Course)
	}

	var rows []sessionRow
	q := "SELECT " + sessionColumns + " FROM sessions" + where(conds) + " ORDER BY weekday, start_time, id"
	if err := repo.selectAll(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	return sessionsFromRows(rows), nil
}
