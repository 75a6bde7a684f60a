// Package calendar aggregates manual events, automation tasks and externally
// synced events into a single month-grid view model.
package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/minseo-dev/worklight/internal/models"
)

// Source tags where a calendar event came from.
type Source string

const (
	SourceManual     Source = "manual"
	SourceAutomation Source = "automation"
	SourceExternal   Source = "external"
)

// Date is a calendar date with no time zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// String renders the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ClockTime is an optional wall-clock time for an event.
type ClockTime struct {
	Hour   int
	Minute int
}

// String renders the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Event is the normalized, comparable shape shared by all three sources.
type Event struct {
	ID          string
	Title       string
	Date        Date
	Time        *ClockTime
	Description string
	Source      Source
	// StatusLabel is only meaningful for automation-sourced events.
	StatusLabel string
}

// Sources holds the currently loaded source collections. Whichever lists
// have arrived are used as-is; missing data is just an empty slice.
type Sources struct {
	Manual     []models.ManualEvent
	Automation []models.AutomationTask
	External   []models.ExternalEvent
}

// NormalizeManual converts a user-created event. The date must parse; the
// time is kept when it parses and dropped otherwise, since the editor that
// produced the record is not trusted to validate it.
func NormalizeManual(e models.ManualEvent) (Event, bool) {
	d, ok := ParseDate(e.Date)
	if !ok {
		return Event{}, false
	}
	return Event{
		ID:          e.ID,
		Title:       e.Title,
		Date:        d,
		Time:        parseClock(e.Time),
		Description: e.Description,
		Source:      SourceManual,
	}, true
}

// NormalizeTask converts an automation task by splitting its scheduled_at
// timestamp into date and clock components. Tasks without a parseable
// scheduled_at are unparseable for calendar purposes and are excluded from
// the grid; they remain visible in list views owned elsewhere.
func NormalizeTask(t models.AutomationTask) (Event, bool) {
	d, ct, ok := SplitTimestamp(t.ScheduledAt)
	if !ok {
		return Event{}, false
	}
	return Event{
		ID:          t.TaskID,
		Title:       t.Title,
		Date:        d,
		Time:        ct,
		Source:      SourceAutomation,
		StatusLabel: string(t.Status),
	}, true
}

// NormalizeExternal converts a synced event. Full timestamps win; a
// date-only field means all-day ("no time" but still placed on its date).
func NormalizeExternal(e models.ExternalEvent) (Event, bool) {
	if d, ct, ok := SplitTimestamp(e.StartAt); ok {
		return Event{
			ID:          e.ID,
			Title:       e.Summary,
			Date:        d,
			Time:        ct,
			Description: e.Description,
			Source:      SourceExternal,
		}, true
	}
	d, ok := ParseDate(e.Date)
	if !ok {
		return Event{}, false
	}
	return Event{
		ID:          e.ID,
		Title:       e.Summary,
		Date:        d,
		Description: e.Description,
		Source:      SourceExternal,
	}, true
}

// ParseDate parses a YYYY-MM-DD string and rejects impossible dates.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return Date{}, false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return Date{}, false
	}
	if month < 1 || month > 12 || day < 1 {
		return Date{}, false
	}
	// Round-trip through time.Date to reject e.g. Feb 30.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Date{}, false
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, true
}

// SplitTimestamp splits an ISO-like timestamp ("2025-07-20T14:00:00", a
// space separator is tolerated) into its date and clock parts. A bare date
// yields a nil clock.
func SplitTimestamp(s string) (Date, *ClockTime, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil, false
	}
	datePart := s
	timePart := ""
	if i := strings.IndexAny(s, "T "); i >= 0 {
		datePart = s[:i]
		timePart = s[i+1:]
	}
	d, ok := ParseDate(datePart)
	if !ok {
		return Date{}, nil, false
	}
	return d, parseClock(timePart), true
}

// parseClock parses "HH:MM" or "HH:MM:SS"; anything else is treated as no
// time rather than an error.
func parseClock(s string) *ClockTime {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return nil
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil
	}
	return &ClockTime{Hour: hour, Minute: minute}
}
