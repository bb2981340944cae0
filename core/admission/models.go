package admission

import "github.com/skapefps/Unimap-sub001/core/schedule"

// Result messages.
const (
	MsgCreated       = "sessions created"
	MsgPartial       = "some sessions were created"
	MsgAllDuplicates = "the sessions already exist"
	MsgNoneCreated   = "no session could be created"
)

// Failure is a weekday whose insert failed. Conflict is set when a concurrent
// admission took the key between the duplicate check and the insert.
type Failure struct {
	Weekday  schedule.Weekday `json:"weekday"`
	Reason   string           `json:"reason"`
	Conflict bool             `json:"conflict"`
}

// Result reports each requested weekday in exactly one of Created, Duplicates or Failed,
// in request order. Success is true iff at least one session was created.
type Result struct {
	Created    []schedule.Session `json:"created"`
	Duplicates []schedule.Session `json:"duplicates"`
	Failed     []Failure          `json:"failed"`
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
}

func newResult() Result {
	return Result{
		Created:    make([]schedule.Session, 0),
		Duplicates: make([]schedule.Session, 0),
		Failed:     make([]Failure, 0),
	}
}

func (r *Result) finish() {
	r.Success = len(r.Created) > 0
	switch {
	case r.Success && len(r.Duplicates) == 0 && len(r.Failed) == 0:
		r.Message = MsgCreated
	case r.Success:
		r.Message = MsgPartial
	case len(r.Failed) == 0:
		r.Message = MsgAllDuplicates
	default:
		r.Message = MsgNoneCreated
	}
}

func (r Result) CreatedWeekdays() []schedule.Weekday {
	return weekdays(r.Created)
}

func (r Result) DuplicateWeekdays() []schedule.Weekday {
	return weekdays(r.Duplicates)
}

func (r Result) FailedWeekdays() []schedule.Weekday {
	days := make([]schedule.Weekday, 0, len(r.Failed))
	for _, f := range r.Failed {
		days = append(days, f.Weekday)
	}
	return days
}

func weekdays(sessions []schedule.Session) []schedule.Weekday {
	days := make([]schedule.Weekday, 0, len(sessions))
	for _, s := range sessions {
		days = append(days, s.Weekday)
	}
	return days
}
