// Package ics turns ICS calendar subscriptions into external events for
// the calendar view. Feeds are fetched with conditional requests, parsed
// with golang-ical, and recurring entries are expanded into the visible
// month range.
package ics

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// FeedEvent is one VEVENT as parsed from a feed, before recurrence
// expansion.
type FeedEvent struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
	RawRRule    string
	ExDates     []time.Time
}

// ParseFeed parses an ICS payload. Individual events that fail to parse
// are logged and skipped; only an unreadable payload is an error.
func ParseFeed(body []byte) ([]FeedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	events := make([]FeedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		ev, perr := parseEvent(ve)
		if perr != nil {
			log.Printf("skipping unparseable feed event: %v", perr)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseEvent(ve *ical.VEvent) (FeedEvent, error) {
	var out FeedEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	out.Start = start
	if end, err := ve.GetEndAt(); err == nil {
		out.End = end
	} else {
		out.End = start
	}

	// All-day when DTSTART is VALUE=DATE or has no time component.
	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			out.AllDay = true
		}
		if !strings.Contains(p.Value, "T") {
			out.AllDay = true
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

// parseICSTime parses basic ICS DATE / DATE-TIME / UTC forms.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}
