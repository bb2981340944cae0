package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core/schedule"
)

type scheduleRepository struct {
	t *tables
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func (repo *scheduleRepository) CreateRoom(ctx context.Context, room schedule.Room) (schedule.Room, error) {
	repo.t.pkCount.room++
	room.ID = repo.t.pkCount.room
	room.CreatedAt = time.Now().UTC()
	repo.t.room[room.ID] = room
	return room, nil
}

func (repo *scheduleRepository) GetRoom(ctx context.Context, id int) (schedule.Room, error) {
	if room, ok := repo.t.room[id]; ok {
		return room, nil
	}
	return schedule.Room{}, schedule.ErrRoomNotFound
}

func (repo *scheduleRepository) QueryRooms(ctx context.Context) ([]schedule.Room, error) {
	rooms := make([]schedule.Room, 0, len(repo.t.room))
	for _, room := range repo.t.room {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

func (repo *scheduleRepository) DeleteRoom(ctx context.Context, id int) error {
	if _, ok := repo.t.room[id]; !ok {
		return schedule.ErrRoomNotFound
	}
	for _, s := range repo.t.session {
		if s.RoomID == id {
			return errors.Errorf("deleting room %d: still referenced by session %d", id, s.ID)
		}
	}
	delete(repo.t.room, id)
	return nil
}

func (repo *scheduleRepository) activeHolder(key schedule.Key, exclID int) (schedule.Session, bool) {
	for _, s := range repo.t.session {
		if s.Active && s.ID != exclID && s.Key() == key {
			return s, true
		}
	}
	return schedule.Session{}, false
}

func (repo *scheduleRepository) CreateSession(ctx context.Context, sess schedule.Session) (schedule.Session, error) {
	if _, ok := repo.t.room[sess.RoomID]; !ok {
		return schedule.Session{}, errors.Errorf("inserting session: room %d does not exist", sess.RoomID)
	}
	if _, ok := repo.t.roster[sess.ProfessorID]; !ok {
		return schedule.Session{}, errors.Errorf("inserting session: roster entry %d does not exist", sess.ProfessorID)
	}
	if _, dup := repo.activeHolder(sess.Key(), 0); sess.Active && dup {
		return schedule.Session{}, schedule.ErrSessionExists
	}
	now := time.Now().UTC()
	repo.t.pkCount.session++
	sess.ID = repo.t.pkCount.session
	sess.CreatedAt = now
	sess.UpdatedAt = now
	repo.t.session[sess.ID] = sess
	return sess, nil
}

func (repo *scheduleRepository) GetSession(ctx context.Context, id int) (schedule.Session, error) {
	if s, ok := repo.t.session[id]; ok {
		return s, nil
	}
	return schedule.Session{}, schedule.ErrSessionNotFound
}

func (repo *scheduleRepository) FindActiveSession(ctx context.Context, key schedule.Key) (schedule.Session, error) {
	if s, ok := repo.activeHolder(key, 0); ok {
		return s, nil
	}
	return schedule.Session{}, schedule.ErrSessionNotFound
}

func (repo *scheduleRepository) SetSessionActive(ctx context.Context, id int, active bool) (schedule.Session, error) {
	s, ok := repo.t.session[id]
	if !ok {
		return schedule.Session{}, schedule.ErrSessionNotFound
	}
	if s.Active == active {
		return s, nil
	}
	if _, dup := repo.activeHolder(s.Key(), s.ID); active && dup {
		return schedule.Session{}, schedule.ErrSessionExists
	}
	s.Active = active
	s.UpdatedAt = time.Now().UTC()
	repo.t.session[id] = s
	return s, nil
}

func (repo *scheduleRepository) DeleteSession(ctx context.Context, id int) error {
	if _, ok := repo.t.session[id]; !ok {
		return schedule.ErrSessionNotFound
	}
	delete(repo.t.session, id)
	return nil
}

func (repo *scheduleRepository) DeleteSessionsByProfessor(ctx context.Context, professorID int) (int, error) {
	var cnt int
	for id, s := range repo.t.session {
		if s.ProfessorID == professorID {
			delete(repo.t.session, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *scheduleRepository) QuerySessions(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Session, error) {
	sessions := make([]schedule.Session, 0, len(repo.t.session))
	for _, s := range repo.t.session {
		if filter.ActiveOnly && !s.Active {
			continue
		}
		if filter.ProfessorID != 0 && s.ProfessorID != filter.ProfessorID {
			continue
		}
		if filter.Course != nil && s.Course != "" && s.Course != *filter.Course {
			continue
		}
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		if a.Weekday != b.Weekday {
			return a.Weekday < b.Weekday
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
	return sessions, nil
}
