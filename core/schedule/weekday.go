package schedule

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Weekday is a teaching day, Monday=1 through Friday=5.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

var (
	ErrUnknownWeekday = errors.New("unknown weekday")

	weekdayNames = [...]string{"", "Mon", "Tue", "Wed", "Thu", "Fri"}

	// accepted codes, lower-cased and without accents
	weekdayCodes = map[string]Weekday{
		"mon": Monday, "monday": Monday, "seg": Monday, "segunda": Monday, "segunda-feira": Monday,
		"tue": Tuesday, "tuesday": Tuesday, "ter": Tuesday, "terca": Tuesday, "terca-feira": Tuesday,
		"wed": Wednesday, "wednesday": Wednesday, "qua": Wednesday, "quarta": Wednesday, "quarta-feira": Wednesday,
		"thu": Thursday, "thursday": Thursday, "qui": Thursday, "quinta": Thursday, "quinta-feira": Thursday,
		"fri": Friday, "friday": Friday, "sex": Friday, "sexta": Friday, "sexta-feira": Friday,
	}
)

func (d Weekday) Valid() bool { return d >= Monday && d <= Friday }

func (d Weekday) String() string {
	if !d.Valid() {
		return "Weekday(" + strconv.Itoa(int(d)) + ")"
	}
	return weekdayNames[d]
}

// ParseWeekday maps every accepted weekday code to its Weekday:
// digits 1-5, english names and abbreviations, portuguese names and abbreviations.
// Anything else fails with ErrUnknownWeekday.
func ParseWeekday(code string) (Weekday, error) {
	c := strings.ToLower(strings.TrimSpace(code))
	if n, err := strconv.Atoi(c); err == nil {
		if d := Weekday(n); d.Valid() {
			return d, nil
		}
		return 0, errors.Wrapf(ErrUnknownWeekday, "%q", code)
	}
	c = strings.NewReplacer("ç", "c", "c\u0327", "c").Replace(c) // terça
	if d, ok := weekdayCodes[c]; ok {
		return d, nil
	}
	return 0, errors.Wrapf(ErrUnknownWeekday, "%q", code)
}

// WeekdayCode is a raw weekday code as sent by clients: a JSON string or number.
type WeekdayCode string

func (c *WeekdayCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = WeekdayCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = WeekdayCode(n.String())
	return nil
}

func CodesToStrings(codes []WeekdayCode) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, string(c))
	}
	return out
}
