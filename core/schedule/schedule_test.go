package schedule

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skapefps/Unimap-sub001/core"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		code string
		want Weekday
	}{
		{"1", Monday}, {" 3 ", Wednesday}, {"5", Friday},
		{"mon", Monday}, {"Tuesday", Tuesday}, {"WED", Wednesday},
		{"segunda", Monday}, {"terça", Tuesday}, {"terca-feira", Tuesday},
		{"quarta", Wednesday}, {"qui", Thursday}, {"Sexta-Feira", Friday},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseWeekday(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "0", "6", "7", "sat", "sabado", "domingo", "-1"} {
		_, err := ParseWeekday(bad)
		assert.Equal(t, ErrUnknownWeekday, errors.Cause(err), bad)
	}
}

func TestWeekday_String(t *testing.T) {
	assert.Equal(t, "Mon", Monday.String())
	assert.Equal(t, "Fri", Friday.String())
	assert.Equal(t, "Weekday(9)", Weekday(9).String())
}

func TestWeekdayCode_UnmarshalJSON(t *testing.T) {
	var codes []WeekdayCode
	require.NoError(t, json.Unmarshal([]byte(`[1, "wed", "segunda"]`), &codes))
	assert.Equal(t, []string{"1", "wed", "segunda"}, CodesToStrings(codes))

	assert.Error(t, json.Unmarshal([]byte(`[true]`), &codes))
}

func TestVisible(t *testing.T) {
	cs3 := Session{Course: "CS", Cohort: "T3", Active: true}
	open := Session{Active: true}

	tests := []struct {
		name    string
		session Session
		student Student
		want    bool
	}{
		{"same course and period", cs3, Student{Course: "CS", Period: 3}, true},
		{"other period", cs3, Student{Course: "CS", Period: 4}, false},
		{"other course", cs3, Student{Course: "EE", Period: 3}, false},
		{"open session, any student", open, Student{Course: "EE", Period: 7}, true},
		{"open session, empty profile", open, Student{}, true},
		{"combined cohort label", Session{Course: "CS", Cohort: "T3/T4", Active: true}, Student{Course: "CS", Period: 4}, true},
		{"empty course, matching cohort", Session{Cohort: "T2", Active: true}, Student{Course: "EE", Period: 2}, true},
		{"empty cohort, matching course", Session{Course: "CS", Active: true}, Student{Course: "CS", Period: 9}, true},
		{"canceled", Session{Course: "CS", Cohort: "T3"}, Student{Course: "CS", Period: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.session, tt.student))
		})
	}
}

func TestNewSession_validation(t *testing.T) {
	v := core.NewValidator()
	InitValidators(v.Validate(), v.Translator())

	valid := NewSession{
		Discipline: "Algorithms", ProfessorID: 1, RoomID: 1,
		Course: "CS", Cohort: "T3", Start: "08:00", End: "10:00",
	}
	require.NoError(t, v.Struct(valid))

	fieldOf := func(err error) []string {
		vErr, ok := err.(*core.ValidationError)
		require.True(t, ok, "got %T", err)
		flds := make([]string, 0, len(vErr.Fields))
		for _, f := range vErr.Fields {
			flds = append(flds, f.Field)
		}
		return flds
	}

	inverted := valid
	inverted.Start, inverted.End = "10:00", "08:00"
	assert.Equal(t, []string{"end"}, fieldOf(v.Struct(inverted)))

	same := valid
	same.End = same.Start
	assert.Equal(t, []string{"end"}, fieldOf(v.Struct(same)))

	missing := NewSession{Start: "08:00", End: "10:00"}
	assert.ElementsMatch(t,
		[]string{"discipline", "professor_id", "room_id", "course", "cohort"},
		fieldOf(v.Struct(missing)))

	badTime := valid
	badTime.Start = "8h"
	assert.Equal(t, []string{"start"}, fieldOf(v.Struct(badTime)))
}
