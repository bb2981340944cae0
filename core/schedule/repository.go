package schedule

import (
	"context"

	"github.com/skapefps/Unimap-sub001/core"
)

var (
	// errors
	ErrSessionNotFound = core.NewNotFoundError("session")
	ErrRoomNotFound    = core.NewNotFoundError("room")
	ErrSessionExists   = core.NewConflictError("an active session with the same attributes already exists")
)

type Repository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id int) (Room, error)
	QueryRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id int) error

	// CreateSession fails with ErrSessionExists when an active session holds the same Key,
	// and with a store error when the room or professor does not exist.
	CreateSession(ctx context.Context, sess Session) (Session, error)
	GetSession(ctx context.Context, id int) (Session, error)
	FindActiveSession(ctx context.Context, key Key) (Session, error)
	// SetSessionActive fails with ErrSessionExists when reactivating would duplicate an active Key.
	SetSessionActive(ctx context.Context, id int, active bool) (Session, error)
	DeleteSession(ctx context.Context, id int) error
	DeleteSessionsByProfessor(ctx context.Context, professorID int) (int, error)
	// QuerySessions returns sessions ordered by weekday, then start time.
	QuerySessions(ctx context.Context, filter QueryFilter) ([]Session, error)
}
