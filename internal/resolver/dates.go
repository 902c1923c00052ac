// Package resolver answers closed classes of customer questions
// deterministically, so the generation service is never invoked for them.
package resolver

import (
	"fmt"
	"strings"
	"time"
)

// Salon conversations run on the salon's wall clock, not server time.
const defaultTimezone = "America/Sao_Paulo"

var weekdayNames = map[time.Weekday]string{
	time.Sunday:    "domingo",
	time.Monday:    "segunda-feira",
	time.Tuesday:   "terça-feira",
	time.Wednesday: "quarta-feira",
	time.Thursday:  "quinta-feira",
	time.Friday:    "sexta-feira",
	time.Saturday:  "sábado",
}

// dateInterrogatives mark a message as a date question rather than a
// scheduling utterance that merely mentions a day.
var dateInterrogatives = []string{
	"que dia",
	"qual dia",
	"que data",
	"qual data",
	"cai em que",
	"e que dia",
	"sera que dia",
}

// DateAnswer is the result of a relative-date resolution.
type DateAnswer struct {
	Matched bool
	Text    string
}

// DateResolver answers relative-date questions against a fixed timezone.
type DateResolver struct {
	loc *time.Location
	now func() time.Time
}

// NewDateResolver creates a resolver in the salon timezone. The clock is
// injectable for tests.
func NewDateResolver(now func() time.Time) *DateResolver {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		loc = time.FixedZone("BRT", -3*60*60)
	}
	if now == nil {
		now = time.Now
	}
	return &DateResolver{loc: loc, now: now}
}

// Resolve answers "hoje", "amanhã" and "depois de amanhã" date questions.
// Matched is false for anything not structurally recognized as a date
// question, so the caller falls through to classification.
func (r *DateResolver) Resolve(normalized string) DateAnswer {
	if !containsAny(normalized, dateInterrogatives) {
		return DateAnswer{}
	}

	today := r.now().In(r.loc)
	switch {
	case strings.Contains(normalized, "depois de amanha"):
		d := today.AddDate(0, 0, 2)
		return DateAnswer{Matched: true, Text: fmt.Sprintf("Depois de amanhã é %s, dia %s.", weekdayNames[d.Weekday()], d.Format("02/01"))}
	case strings.Contains(normalized, "amanha"):
		d := today.AddDate(0, 0, 1)
		return DateAnswer{Matched: true, Text: fmt.Sprintf("Amanhã é %s, dia %s.", weekdayNames[d.Weekday()], d.Format("02/01"))}
	case strings.Contains(normalized, "hoje"):
		return DateAnswer{Matched: true, Text: fmt.Sprintf("Hoje é %s, dia %s.", weekdayNames[today.Weekday()], today.Format("02/01"))}
	}
	return DateAnswer{}
}

// Location returns the salon timezone used for date math.
func (r *DateResolver) Location() *time.Location {
	return r.loc
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
