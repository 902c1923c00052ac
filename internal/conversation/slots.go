package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date/time extraction for the scheduling sub-flow. Input is normalized
// text (lowercased, diacritics folded), so "amanhã" arrives as "amanha".

// Ordered so a message naming two weekdays resolves deterministically.
var weekdayNames = []struct {
	name string
	day  time.Weekday
}{
	{"segunda", time.Monday},
	{"terca", time.Tuesday},
	{"quarta", time.Wednesday},
	{"quinta", time.Thursday},
	{"sexta", time.Friday},
	{"sabado", time.Saturday},
	{"domingo", time.Sunday},
}

var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
	dayOfMonthRe  = regexp.MustCompile(`\bdia (\d{1,2})\b`)
	clockTimeRe   = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	hourMarkRe    = regexp.MustCompile(`\b(\d{1,2})h(\d{2})?\b`)
	plainHourRe   = regexp.MustCompile(`\b(?:as )?(\d{1,2}) horas?\b`)
	periodHourRe  = regexp.MustCompile(`\b(\d{1,2}) da (?:manha|tarde|noite)\b`)
)

// parseDate extracts an appointment date from normalized text and returns
// it as YYYY-MM-DD in the given location. Relative words win over numeric
// forms so "amanha dia 15" follows the customer's words, not the digits.
func parseDate(normalized string, now time.Time, loc *time.Location) (string, bool) {
	today := now.In(loc)

	switch {
	case strings.Contains(normalized, "depois de amanha"):
		return isoDate(today.AddDate(0, 0, 2)), true
	case strings.Contains(normalized, "amanha"):
		return isoDate(today.AddDate(0, 0, 1)), true
	case strings.Contains(normalized, "hoje"):
		return isoDate(today), true
	}

	for _, wd := range weekdayNames {
		if !strings.Contains(normalized, wd.name) {
			continue
		}
		ahead := (int(wd.day) - int(today.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7 // "sexta" said on a Friday means next Friday
		}
		return isoDate(today.AddDate(0, 0, ahead)), true
	}

	startOfToday := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)

	if m := numericDateRe.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		if !validDayMonth(day, month) {
			return "", false
		}
		candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
		if m[3] == "" && candidate.Before(startOfToday) {
			candidate = candidate.AddDate(1, 0, 0)
		}
		return isoDate(candidate), true
	}

	if m := dayOfMonthRe.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		if day < 1 || day > 31 {
			return "", false
		}
		candidate := time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, loc)
		if candidate.Before(startOfToday) {
			candidate = candidate.AddDate(0, 1, 0)
		}
		return isoDate(candidate), true
	}

	return "", false
}

// parseClock extracts an appointment time as HH:MM from normalized text.
func parseClock(normalized string) (string, bool) {
	if strings.Contains(normalized, "meio-dia") || strings.Contains(normalized, "meio dia") {
		return "12:00", true
	}

	if m := clockTimeRe.FindStringSubmatch(normalized); m != nil {
		return clockFromParts(m[1], m[2], normalized)
	}
	if m := hourMarkRe.FindStringSubmatch(normalized); m != nil {
		return clockFromParts(m[1], m[2], normalized)
	}
	if m := plainHourRe.FindStringSubmatch(normalized); m != nil {
		return clockFromParts(m[1], "", normalized)
	}
	if m := periodHourRe.FindStringSubmatch(normalized); m != nil {
		return clockFromParts(m[1], "", normalized)
	}
	return "", false
}

func clockFromParts(hourStr, minStr, normalized string) (string, bool) {
	hour, _ := strconv.Atoi(hourStr)
	min := 0
	if minStr != "" {
		min, _ = strconv.Atoi(minStr)
	}
	if hour > 23 || min > 59 {
		return "", false
	}
	// "3 da tarde" and "8 da noite" are afternoon/evening hours.
	if hour < 12 && (strings.Contains(normalized, "da tarde") || strings.Contains(normalized, "da noite")) {
		hour += 12
	}
	return fmt.Sprintf("%02d:%02d", hour, min), true
}

// periodRe needs word boundaries: "amanha" contains "manha" but does not
// mention the morning.
var periodRe = regexp.MustCompile(`\b(manha|tarde|noite)\b`)

// mentionedPeriod reports which day period a message refers to, used to
// remember what the customer already turned down.
func mentionedPeriod(normalized string) string {
	if m := periodRe.FindStringSubmatch(normalized); m != nil {
		return m[1]
	}
	return ""
}

func isoDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func validDayMonth(day, month int) bool {
	return day >= 1 && day <= 31 && month >= 1 && month <= 12
}
