package calendar

import "time"

// GridCells is the fixed size of the month grid: 6 weeks of 7 days.
const GridCells = 42

// GridCell is one day cell in the 42-cell month grid. Cells are derived on
// every rebuild and never persisted.
type GridCell struct {
	Date    Date
	InMonth bool
	IsToday bool
	// HasEntry marks manual or external events on this date.
	HasEntry bool
	// HasAutomation marks automation tasks scheduled on this date.
	HasAutomation bool
}

// DayEvents partitions the events of a single date by source. Each list
// preserves the source collection's original relative order.
type DayEvents struct {
	Manual     []Event
	Automation []Event
	External   []Event
}

// Total returns the number of events across all three partitions.
func (d DayEvents) Total() int {
	return len(d.Manual) + len(d.Automation) + len(d.External)
}

// BuildGrid lays out the month containing the anchor into 42 cells, padded
// with adjacent-month days. Weeks start on Sunday. Unparseable source
// records are skipped; they never fail the build.
func BuildGrid(year int, month time.Month, src Sources, now time.Time) [GridCells]GridCell {
	var grid [GridCells]GridCell

	type dayMarks struct {
		entry      bool
		automation bool
	}
	marks := make(map[Date]dayMarks)

	for _, e := range src.Manual {
		if ev, ok := NormalizeManual(e); ok {
			m := marks[ev.Date]
			m.entry = true
			marks[ev.Date] = m
		}
	}
	for _, e := range src.External {
		if ev, ok := NormalizeExternal(e); ok {
			m := marks[ev.Date]
			m.entry = true
			marks[ev.Date] = m
		}
	}
	for _, t := range src.Automation {
		if ev, ok := NormalizeTask(t); ok {
			m := marks[ev.Date]
			m.automation = true
			marks[ev.Date] = m
		}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := DateOf(now)

	for i := 0; i < GridCells; i++ {
		day := start.AddDate(0, 0, i)
		d := DateOf(day)
		m := marks[d]
		grid[i] = GridCell{
			Date:          d,
			InMonth:       day.Month() == month && day.Year() == year,
			IsToday:       d == today,
			HasEntry:      m.entry,
			HasAutomation: m.automation,
		}
	}
	return grid
}

// EventsForDate returns the normalized events whose date equals d,
// partitioned by source. Ordering within each partition follows the source
// collection, not time of day.
func EventsForDate(d Date, src Sources) DayEvents {
	var out DayEvents
	for _, e := range src.Manual {
		if ev, ok := NormalizeManual(e); ok && ev.Date == d {
			out.Manual = append(out.Manual, ev)
		}
	}
	for _, t := range src.Automation {
		if ev, ok := NormalizeTask(t); ok && ev.Date == d {
			out.Automation = append(out.Automation, ev)
		}
	}
	for _, e := range src.External {
		if ev, ok := NormalizeExternal(e); ok && ev.Date == d {
			out.External = append(out.External, ev)
		}
	}
	return out
}
