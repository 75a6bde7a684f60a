package ics

import (
	"log"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/minseo-dev/worklight/internal/models"
)

// occurrenceCap bounds how many instances a single recurring event may
// contribute, so a malformed rule cannot blow up the month view.
const occurrenceCap = 500

// Expand turns parsed feed events into external events within [from, to).
// Recurring events are expanded occurrence by occurrence; events with an
// unparseable RRULE contribute nothing beyond a log line.
func Expand(events []FeedEvent, calendarName string, from, to time.Time) []models.ExternalEvent {
	out := make([]models.ExternalEvent, 0, len(events))

	for _, ev := range events {
		if ev.RawRRule == "" {
			if ev.Start.Before(to) && !ev.Start.Before(from) {
				out = append(out, toExternal(ev, ev.Start, calendarName, 0))
			}
			continue
		}

		r, err := rrule.StrToRRule(ev.RawRRule)
		if err != nil {
			log.Printf("skipping bad RRULE for %s: %v", ev.UID, err)
			continue
		}
		r.DTStart(ev.Start)

		var set rrule.Set
		set.RRule(r)
		for _, ex := range ev.ExDates {
			set.ExDate(ex.In(ev.Start.Location()))
		}

		times := set.Between(from.In(ev.Start.Location()), to.In(ev.Start.Location()), true)
		if len(times) > occurrenceCap {
			times = times[:occurrenceCap]
		}
		for i, occ := range times {
			out = append(out, toExternal(ev, occ, calendarName, i))
		}
	}
	return out
}

// toExternal converts one occurrence into the backend-shaped external
// event the normalizer consumes: a full timestamp for timed events, a bare
// date for all-day ones.
func toExternal(ev FeedEvent, start time.Time, calendarName string, n int) models.ExternalEvent {
	id := ev.UID
	if n > 0 {
		id = ev.UID + "#" + start.Format("20060102")
	}
	out := models.ExternalEvent{
		ID:           id,
		Summary:      ev.Summary,
		Description:  ev.Description,
		CalendarName: calendarName,
	}
	if ev.AllDay {
		out.Date = start.Format("2006-01-02")
	} else {
		out.StartAt = start.Format("2006-01-02T15:04:05")
	}
	return out
}
