// Package admission admits batches of recurring weekly sessions and answers
// which sessions a student can see.
package admission

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/skapefps/Unimap-sub001/core"
	"github.com/skapefps/Unimap-sub001/core/schedule"
	"github.com/skapefps/Unimap-sub001/core/store"
)

type Service struct {
	store     store.Store
	validator *core.Validator
	logger    core.Logger
}

func NewService(st store.Store, v *core.Validator, logger core.Logger) *Service {
	return &Service{store: st, validator: v, logger: logger}
}

// parseWeekdays maps codes to weekdays in request order, dropping repeats.
func parseWeekdays(codes []string) ([]schedule.Weekday, []core.FieldError) {
	if len(codes) == 0 {
		return nil, []core.FieldError{{Field: "weekdays", Error: "at least one weekday is required"}}
	}
	var flds []core.FieldError
	days := make([]schedule.Weekday, 0, len(codes))
	seen := make(map[schedule.Weekday]bool, len(codes))
	for _, code := range codes {
		day, err := schedule.ParseWeekday(code)
		if err != nil {
			flds = append(flds, core.FieldError{Field: "weekdays", Error: fmt.Sprintf("unknown weekday %q", code)})
			continue
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	return days, flds
}

func (svc *Service) validate(ns *schedule.NewSession, codes []string) ([]schedule.Weekday, error) {
	ns.Clean()
	var flds []core.FieldError
	if err := svc.validator.Struct(ns); err != nil {
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		if !ok {
			return nil, err
		}
		flds = append(flds, vErr.Fields...)
	}
	days, dayFlds := parseWeekdays(codes)
	flds = append(flds, dayFlds...)
	if len(flds) > 0 {
		return nil, core.NewValidationError(nil, flds...)
	}
	return days, nil
}

// AdmitSessions creates one active session per weekday. A weekday whose key is already
// held by an active session is reported as a duplicate. Each weekday commits on its own,
// so a store failure on one weekday is reported in Failed and does not stop the others.
// Only request validation fails the whole batch.
func (svc *Service) AdmitSessions(ctx context.Context, ns schedule.NewSession, weekdays []string) (Result, error) {
	days, err := svc.validate(&ns, weekdays)
	if err != nil {
		return Result{}, err
	}

	res := newResult()
	for _, day := range days {
		sess := ns.Session(day)
		var dup bool
		err := svc.store.Atomic(ctx, func(tx store.Tx) error {
			found, err := tx.Sessions().FindActiveSession(ctx, sess.Key())
			switch {
			case err == nil:
				sess, dup = found, true
				return nil
			case errors.Cause(err) != schedule.ErrSessionNotFound:
				return errors.Wrap(err, "finding active session")
			}
			sess, err = tx.Sessions().CreateSession(ctx, sess)
			return errors.Wrap(err, "inserting session")
		})

		switch {
		case err != nil:
			res.Failed = append(res.Failed, svc.failure(day, err))
		case dup:
			res.Duplicates = append(res.Duplicates, sess)
		default:
			res.Created = append(res.Created, sess)
		}
	}
	res.finish()
	return res, nil
}

func (svc *Service) failure(day schedule.Weekday, err error) Failure {
	if core.IsConflict(err) {
		return Failure{Weekday: day, Reason: errors.Cause(err).Error(), Conflict: true}
	}
	svc.logger.Error("admitting session", err, map[string]interface{}{"weekday": day.String()})
	return Failure{Weekday: day, Reason: "could not store the session"}
}

// Cancel deactivates a session. Canceling a canceled session is a no-op.
func (svc *Service) Cancel(ctx context.Context, sessionID int) (schedule.Session, error) {
	return svc.setActive(ctx, sessionID, false)
}

// Reactivate activates a canceled session. It fails with a conflict when another
// active session already holds the same key.
func (svc *Service) Reactivate(ctx context.Context, sessionID int) (schedule.Session, error) {
	return svc.setActive(ctx, sessionID, true)
}

func (svc *Service) setActive(ctx context.Context, sessionID int, active bool) (schedule.Session, error) {
	var sess schedule.Session
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		sess, err = tx.Sessions().SetSessionActive(ctx, sessionID, active)
		return errors.Wrap(err, "updating session status")
	})
	if err != nil {
		return schedule.Session{}, err
	}
	return sess, nil
}

// Delete hard-deletes one session.
func (svc *Service) Delete(ctx context.Context, sessionID int) error {
	return svc.store.Atomic(ctx, func(tx store.Tx) error {
		return errors.Wrap(tx.Sessions().DeleteSession(ctx, sessionID), "deleting session")
	})
}

// ListVisibleSessions returns the sessions the student can see, by weekday then start time.
func (svc *Service) ListVisibleSessions(ctx context.Context, student schedule.Student) ([]schedule.Session, error) {
	student.Course = core.CleanString(student.Course)
	if err := svc.validator.Struct(student); err != nil {
		return nil, err
	}

	var sessions []schedule.Session
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		sessions, err = tx.Sessions().QuerySessions(ctx, schedule.QueryFilter{ActiveOnly: true, Course: &student.Course})
		return errors.Wrap(err, "querying sessions")
	})
	if err != nil {
		return nil, err
	}

	visible := make([]schedule.Session, 0, len(sessions))
	for _, s := range sessions {
		if schedule.Visible(s, student) {
			visible = append(visible, s)
		}
	}
	return visible, nil
}

func (svc *Service) QuerySessions(ctx context.Context, filter schedule.QueryFilter) ([]schedule.Session, error) {
	var sessions []schedule.Session
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		sessions, err = tx.Sessions().QuerySessions(ctx, filter)
		return errors.Wrap(err, "querying sessions")
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (svc *Service) CreateRoom(ctx context.Context, nr schedule.NewRoom) (schedule.Room, error) {
	if err := nr.Validate(svc.validator); err != nil {
		return schedule.Room{}, err
	}
	var room schedule.Room
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		room, err = tx.Sessions().CreateRoom(ctx, schedule.Room{Name: nr.Name})
		return errors.Wrap(err, "inserting room")
	})
	if err != nil {
		return schedule.Room{}, err
	}
	return room, nil
}

func (svc *Service) QueryRooms(ctx context.Context) ([]schedule.Room, error) {
	var rooms []schedule.Room
	err := svc.store.Atomic(ctx, func(tx store.Tx) error {
		var err error
		rooms, err = tx.Sessions().QueryRooms(ctx)
		return errors.Wrap(err, "querying rooms")
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}
