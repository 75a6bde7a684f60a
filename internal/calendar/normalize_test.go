package calendar

import (
	"testing"

	"github.com/minseo-dev/worklight/internal/models"
)

func TestNormalizeManual(t *testing.T) {
	ev, ok := NormalizeManual(models.ManualEvent{
		ID:    "m1",
		Title: "Team sync",
		Date:  "2025-07-20",
		Time:  "09:30",
	})
	if !ok {
		t.Fatal("expected manual event to normalize")
	}
	if ev.Source != SourceManual {
		t.Errorf("expected source manual, got %s", ev.Source)
	}
	if ev.Date.String() != "2025-07-20" {
		t.Errorf("expected date 2025-07-20, got %s", ev.Date)
	}
	if ev.Time == nil || ev.Time.String() != "09:30" {
		t.Errorf("expected time 09:30, got %v", ev.Time)
	}
}

func TestNormalizeManualBadDate(t *testing.T) {
	for _, date := range []string{"", "not-a-date", "2025-02-30", "2025-13-01"} {
		if _, ok := NormalizeManual(models.ManualEvent{ID: "m", Date: date}); ok {
			t.Errorf("expected date %q to be unparseable", date)
		}
	}
}

func TestNormalizeManualBadTimeKeepsEvent(t *testing.T) {
	ev, ok := NormalizeManual(models.ManualEvent{ID: "m1", Date: "2025-07-20", Time: "half past nine"})
	if !ok {
		t.Fatal("a bad time must not drop the event")
	}
	if ev.Time != nil {
		t.Errorf("expected nil time, got %v", ev.Time)
	}
}

func TestNormalizeTask(t *testing.T) {
	ev, ok := NormalizeTask(models.AutomationTask{
		TaskID:      "t1",
		Title:       "인스타그램 신상품 포스팅",
		TaskType:    models.TaskTypeSocialPost,
		Status:      models.TaskStatusScheduled,
		ScheduledAt: "2025-07-20T14:00:00",
	})
	if !ok {
		t.Fatal("expected scheduled task to normalize")
	}
	if ev.Date.String() != "2025-07-20" {
		t.Errorf("expected date 2025-07-20, got %s", ev.Date)
	}
	if ev.Time == nil || ev.Time.String() != "14:00" {
		t.Errorf("expected time 14:00, got %v", ev.Time)
	}
	if ev.Source != SourceAutomation {
		t.Errorf("expected source automation, got %s", ev.Source)
	}
	if ev.StatusLabel != "scheduled" {
		t.Errorf("expected status label scheduled, got %s", ev.StatusLabel)
	}
}

func TestNormalizeTaskWithoutSchedule(t *testing.T) {
	if _, ok := NormalizeTask(models.AutomationTask{TaskID: "t1", Title: "unscheduled"}); ok {
		t.Error("a task with no scheduled_at must be excluded from the grid")
	}
}

func TestNormalizeExternal(t *testing.T) {
	// Full timestamp wins.
	ev, ok := NormalizeExternal(models.ExternalEvent{ID: "e1", Summary: "Flight", StartAt: "2025-07-21 08:15:00"})
	if !ok {
		t.Fatal("expected timestamped external event to normalize")
	}
	if ev.Date.String() != "2025-07-21" || ev.Time == nil || ev.Time.String() != "08:15" {
		t.Errorf("unexpected normalization: %s %v", ev.Date, ev.Time)
	}

	// Date-only is an all-day event: placed on its date, no time.
	ev, ok = NormalizeExternal(models.ExternalEvent{ID: "e2", Summary: "Holiday", Date: "2025-07-22"})
	if !ok {
		t.Fatal("expected all-day external event to normalize")
	}
	if ev.Time != nil {
		t.Errorf("all-day event should have no time, got %v", ev.Time)
	}

	// Neither field present.
	if _, ok := NormalizeExternal(models.ExternalEvent{ID: "e3", Summary: "Mystery"}); ok {
		t.Error("expected external event without any date to be unparseable")
	}
}

func TestSplitTimestamp(t *testing.T) {
	d, ct, ok := SplitTimestamp("2025-12-31T23:59:59")
	if !ok || d.String() != "2025-12-31" || ct == nil || ct.String() != "23:59" {
		t.Errorf("unexpected split: %v %v %v", d, ct, ok)
	}

	d, ct, ok = SplitTimestamp("2025-01-05")
	if !ok || d.String() != "2025-01-05" {
		t.Errorf("bare date should parse, got %v %v", d, ok)
	}
	if ct != nil {
		t.Errorf("bare date should have nil clock, got %v", ct)
	}

	if _, _, ok := SplitTimestamp(""); ok {
		t.Error("empty timestamp should not parse")
	}
}
