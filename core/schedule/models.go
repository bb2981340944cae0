package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/skapefps/Unimap-sub001/core"
)

type Room struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewRoom struct {
	Name string `json:"name" validate:"required"`
}

func (nr *NewRoom) Validate(v *core.Validator) error {
	nr.Name = core.CleanString(nr.Name)
	return v.Struct(nr)
}

// Session is one recurring weekly class occurrence.
// ProfessorID references a roster entry, not an identity.
type Session struct {
	ID          int       `json:"id"`
	Discipline  string    `json:"discipline"`
	ProfessorID int       `json:"professor_id"`
	RoomID      int       `json:"room_id"`
	Course      string    `json:"course"`
	Cohort      string    `json:"cohort"`
	Start       string    `json:"start"` // HH:MM
	End         string    `json:"end"`   // HH:MM
	Weekday     Weekday   `json:"weekday"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// Key identifies a session for duplicate detection. Only one active session may hold a Key.
type Key struct {
	ProfessorID int
	Discipline  string
	RoomID      int
	Course      string
	Cohort      string
	Start       string
	End         string
	Weekday     Weekday
}

func (s Session) Key() Key {
	return Key{
		ProfessorID: s.ProfessorID,
		Discipline:  s.Discipline,
		RoomID:      s.RoomID,
		Course:      s.Course,
		Cohort:      s.Cohort,
		Start:       s.Start,
		End:         s.End,
		Weekday:     s.Weekday,
	}
}

// NewSession holds every session attribute but the weekday; admission fans it out per weekday.
type NewSession struct {
	Discipline  string `json:"discipline" validate:"required"`
	ProfessorID int    `json:"professor_id" validate:"required,gt=0"`
	RoomID      int    `json:"room_id" validate:"required,gt=0"`
	Course      string `json:"course" validate:"required"`
	Cohort      string `json:"cohort" validate:"required"`
	Start       string `json:"start" validate:"required,hhmm"`
	End         string `json:"end" validate:"required,hhmm"`
}

func (ns *NewSession) Clean() {
	ns.Discipline = core.CleanString(ns.Discipline)
	ns.Course = core.CleanString(ns.Course)
	ns.Cohort = core.CleanString(ns.Cohort)
	ns.Start = core.CleanString(ns.Start)
	ns.End = core.CleanString(ns.End)
}

func (ns NewSession) Session(day Weekday) Session {
	return Session{
		Discipline:  ns.Discipline,
		ProfessorID: ns.ProfessorID,
		RoomID:      ns.RoomID,
		Course:      ns.Course,
		Cohort:      ns.Cohort,
		Start:       ns.Start,
		End:         ns.End,
		Weekday:     day,
		Active:      true,
	}
}

// Student is the academic profile used to decide session visibility.
type Student struct {
	Course string `json:"course" query:"course"`
	Period int    `json:"period" query:"period" validate:"gte=0"`
}

// CohortTag is the cohort label of the student's period, e.g. period 3 -> "T3".
func (s Student) CohortTag() string {
	return "T" + strconv.Itoa(s.Period)
}

// Visible reports whether the student can see the session.
// Empty course or cohort on the session match everyone; cohorts match by substring
// so combined labels like "T3/T4" reach both periods.
func Visible(s Session, student Student) bool {
	if !s.Active {
		return false
	}
	if s.Course != "" && s.Course != student.Course {
		return false
	}
	return s.Cohort == "" || strings.Contains(s.Cohort, student.CohortTag())
}

type QueryFilter struct {
	ProfessorID int
	ActiveOnly  bool
	// Course restricts to sessions of that course or with no course at all.
	Course *string
}
