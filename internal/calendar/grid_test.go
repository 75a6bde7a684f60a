package calendar

import (
	"testing"
	"time"

	"github.com/minseo-dev/worklight/internal/models"
)

func TestBuildGridAlwaysFortyTwoCells(t *testing.T) {
	now := time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)

	months := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2025, time.July, 31},
		{2025, time.February, 28},
		{2024, time.February, 29}, // leap year
		{2025, time.June, 30},
		{2025, time.December, 31},
	}

	for _, m := range months {
		grid := BuildGrid(m.year, m.month, Sources{}, now)
		if len(grid) != GridCells {
			t.Fatalf("%d-%d: expected %d cells, got %d", m.year, m.month, GridCells, len(grid))
		}

		inMonth := 0
		for _, c := range grid {
			if c.InMonth {
				inMonth++
			}
		}
		if inMonth != m.days {
			t.Errorf("%d-%d: expected %d in-month cells, got %d", m.year, m.month, m.days, inMonth)
		}

		// Cells must be contiguous consecutive days.
		for i := 1; i < GridCells; i++ {
			prev := time.Date(grid[i-1].Date.Year, grid[i-1].Date.Month, grid[i-1].Date.Day, 0, 0, 0, 0, time.UTC)
			if DateOf(prev.AddDate(0, 0, 1)) != grid[i].Date {
				t.Fatalf("%d-%d: cells %d and %d are not consecutive days", m.year, m.month, i-1, i)
			}
		}

		// Week starts on Sunday.
		first := time.Date(grid[0].Date.Year, grid[0].Date.Month, grid[0].Date.Day, 0, 0, 0, 0, time.UTC)
		if first.Weekday() != time.Sunday {
			t.Errorf("%d-%d: grid starts on %s, want Sunday", m.year, m.month, first.Weekday())
		}
	}
}

func TestBuildGridToday(t *testing.T) {
	now := time.Date(2025, time.July, 20, 9, 0, 0, 0, time.UTC)
	grid := BuildGrid(2025, time.July, Sources{}, now)

	count := 0
	for _, c := range grid {
		if c.IsToday {
			count++
			if c.Date.String() != "2025-07-20" {
				t.Errorf("wrong today cell: %s", c.Date)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one today cell, got %d", count)
	}

	// A different month contains no today cell.
	grid = BuildGrid(2025, time.March, Sources{}, now)
	for _, c := range grid {
		if c.IsToday {
			t.Errorf("March grid should not mark today, got %s", c.Date)
		}
	}
}

func TestGridMarkersMatchDayQuery(t *testing.T) {
	src := Sources{
		Manual: []models.ManualEvent{
			{ID: "m1", Title: "Dentist", Date: "2025-07-03", Time: "10:00"},
			{ID: "m2", Title: "Broken", Date: "garbage"},
		},
		Automation: []models.AutomationTask{
			{TaskID: "t1", Title: "Newsletter", ScheduledAt: "2025-07-03T08:00:00", Status: models.TaskStatusPending},
			{TaskID: "t2", Title: "Post", ScheduledAt: "2025-07-10T14:00:00", Status: models.TaskStatusScheduled},
			{TaskID: "t3", Title: "No schedule"},
		},
		External: []models.ExternalEvent{
			{ID: "e1", Summary: "Conference", Date: "2025-07-18"},
		},
	}

	now := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	grid := BuildGrid(2025, time.July, src, now)

	for _, cell := range grid {
		day := EventsForDate(cell.Date, src)
		wantEntry := len(day.Manual)+len(day.External) > 0
		wantAutomation := len(day.Automation) > 0
		if cell.HasEntry != wantEntry {
			t.Errorf("%s: HasEntry=%v but day query has %d manual/external", cell.Date, cell.HasEntry, len(day.Manual)+len(day.External))
		}
		if cell.HasAutomation != wantAutomation {
			t.Errorf("%s: HasAutomation=%v but day query has %d automation", cell.Date, cell.HasAutomation, len(day.Automation))
		}
	}
}

func TestEventsForDatePartitions(t *testing.T) {
	src := Sources{
		Manual: []models.ManualEvent{
			{ID: "m1", Title: "Lunch", Date: "2025-07-20", Time: "12:00"},
			{ID: "m2", Title: "Elsewhere", Date: "2025-07-21"},
		},
		Automation: []models.AutomationTask{
			{TaskID: "t1", Title: "인스타그램 신상품 포스팅", ScheduledAt: "2025-07-20T14:00:00", Status: models.TaskStatusScheduled},
		},
		External: []models.ExternalEvent{
			{ID: "e1", Summary: "Standup", StartAt: "2025-07-20T09:00:00"},
		},
	}

	d, _ := ParseDate("2025-07-20")
	day := EventsForDate(d, src)

	if len(day.Manual) != 1 || day.Manual[0].ID != "m1" {
		t.Errorf("expected one manual event m1, got %v", day.Manual)
	}
	if len(day.Automation) != 1 {
		t.Fatalf("expected one automation event, got %d", len(day.Automation))
	}
	if day.Automation[0].Title != "인스타그램 신상품 포스팅" {
		t.Errorf("unexpected automation title %q", day.Automation[0].Title)
	}
	if day.Automation[0].Time == nil || day.Automation[0].Time.String() != "14:00" {
		t.Errorf("expected normalized time 14:00, got %v", day.Automation[0].Time)
	}
	if len(day.External) != 1 || day.External[0].ID != "e1" {
		t.Errorf("expected one external event e1, got %v", day.External)
	}

	// No cross-contamination for a date with only automation.
	grid := BuildGrid(2025, time.July, Sources{Automation: src.Automation}, time.Now())
	for _, cell := range grid {
		if cell.Date == d {
			if !cell.HasAutomation {
				t.Error("expected HasAutomation=true for 2025-07-20")
			}
			if cell.HasEntry {
				t.Error("expected HasEntry=false for 2025-07-20 with only automation")
			}
		}
	}
}

func TestEventsForDatePreservesInsertionOrder(t *testing.T) {
	// Later clock time listed first stays first: ordering follows the
	// source collection, not time of day.
	src := Sources{
		Manual: []models.ManualEvent{
			{ID: "m-late", Title: "Evening", Date: "2025-07-20", Time: "20:00"},
			{ID: "m-early", Title: "Morning", Date: "2025-07-20", Time: "07:00"},
		},
	}
	d, _ := ParseDate("2025-07-20")
	day := EventsForDate(d, src)
	if len(day.Manual) != 2 {
		t.Fatalf("expected 2 manual events, got %d", len(day.Manual))
	}
	if day.Manual[0].ID != "m-late" || day.Manual[1].ID != "m-early" {
		t.Errorf("insertion order not preserved: %s, %s", day.Manual[0].ID, day.Manual[1].ID)
	}
}
