package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Slot extraction helpers. Each helper scans a free-text utterance for one
// kind of value and returns the zero value when nothing is found.

var (
	emailPattern    = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	isoDatePattern  = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	clockPattern    = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	meridiemPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	durationPattern = regexp.MustCompile(`(?i)\b(\d+)\s*(minutes?|mins?|hours?|hrs?|h|m)\b`)
	tzTokenPattern  = regexp.MustCompile(`\b[A-Za-z_]+/[A-Za-z_]+(?:/[A-Za-z_]+)?\b`)
	quotedPattern   = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	namePattern     = regexp.MustCompile(`\b(?:with|for)\s+([A-Z][a-zA-Z'.\-]*(?:\s+[A-Z][a-zA-Z'.\-]*)*)`)
)

// FindEmail returns the first email address in the text.
func FindEmail(text string) string {
	return emailPattern.FindString(text)
}

// FindDate returns the first date in the text as YYYY-MM-DD. It understands
// ISO dates as well as the words "today" and "tomorrow", resolved against
// now in the given location.
func FindDate(text string, now time.Time, loc *time.Location) string {
	if m := isoDatePattern.FindString(text); m != "" {
		if _, err := time.Parse("2006-01-02", m); err == nil {
			return m
		}
	}

	lower := strings.ToLower(text)
	local := now.In(loc)
	switch {
	case strings.Contains(lower, "day after tomorrow"):
		return local.AddDate(0, 0, 2).Format("2006-01-02")
	case strings.Contains(lower, "tomorrow"):
		return local.AddDate(0, 0, 1).Format("2006-01-02")
	case strings.Contains(lower, "today"):
		return local.Format("2006-01-02")
	}

	// Weekday names resolve to the next occurrence.
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if strings.Contains(lower, strings.ToLower(wd.String())) {
			days := (int(wd) - int(local.Weekday()) + 7) % 7
			if days == 0 {
				days = 7
			}
			return local.AddDate(0, 0, days).Format("2006-01-02")
		}
	}

	return ""
}

// FindTime returns the first clock time in the text as HH:MM in 24-hour
// notation. Both "14:30" and "2:30pm" forms are understood.
func FindTime(text string) string {
	if m := meridiemPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if hour >= 1 && hour <= 12 && minute < 60 {
			if strings.EqualFold(m[3], "pm") && hour != 12 {
				hour += 12
			}
			if strings.EqualFold(m[3], "am") && hour == 12 {
				hour = 0
			}
			return twoDigit(hour) + ":" + twoDigit(minute)
		}
	}

	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour < 24 && minute < 60 {
			return twoDigit(hour) + ":" + twoDigit(minute)
		}
	}

	return ""
}

// FindTimeZone returns the first valid IANA timezone name in the text,
// such as "Europe/Berlin". Candidate tokens are verified against the
// timezone database before being accepted.
func FindTimeZone(text string) string {
	for _, candidate := range tzTokenPattern.FindAllString(text, -1) {
		if _, err := time.LoadLocation(candidate); err == nil {
			return candidate
		}
	}
	if strings.Contains(text, "UTC") {
		return "UTC"
	}
	return ""
}

// FindDurationMinutes returns the first duration in the text in minutes,
// or 0 when none is present.
func FindDurationMinutes(text string) int {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}

	unit := strings.ToLower(m[2])
	if strings.HasPrefix(unit, "h") {
		return n * 60
	}
	return n
}

// FindAttendeeName returns the capitalized name following "with" or "for",
// as in "book a meeting with Jane Doe".
func FindAttendeeName(text string) string {
	m := namePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// FindQuotedTitle returns the first single- or double-quoted phrase.
func FindQuotedTitle(text string) string {
	m := quotedPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// FindReason returns the cancellation reason when the text names one,
// e.g. "cancel ... because I'm double booked".
func FindReason(text string) string {
	lower := strings.ToLower(text)
	for _, marker := range []string{"because", "reason:", "reason is", "due to"} {
		if idx := strings.Index(lower, marker); idx >= 0 {
			reason := strings.TrimSpace(text[idx+len(marker):])
			reason = strings.Trim(reason, " .")
			if reason != "" {
				return reason
			}
		}
	}
	return ""
}

func twoDigit(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
