package draft

import (
	"errors"
	"testing"
)

func TestStageEventMerges(t *testing.T) {
	c := NewCache()

	c.StageEvent(EventDraft{Title: "Lunch"})
	c.StageEvent(EventDraft{Date: "2025-07-20"})
	merged := c.StageEvent(EventDraft{Time: "12:00"})

	if merged.Title != "Lunch" || merged.Date != "2025-07-20" || merged.Time != "12:00" {
		t.Errorf("unexpected merged draft: %+v", merged)
	}

	// Staging an empty field does not wipe an earlier one.
	merged = c.StageEvent(EventDraft{Description: "with the team"})
	if merged.Title != "Lunch" {
		t.Errorf("empty field overwrote title: %+v", merged)
	}
}

func TestCommitEventClearsOnSuccess(t *testing.T) {
	c := NewCache()
	c.StageEvent(EventDraft{Title: "Lunch", Date: "2025-07-20"})

	var submitted EventDraft
	err := c.CommitEvent(func(d EventDraft) error {
		submitted = d
		return nil
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if submitted.Title != "Lunch" {
		t.Errorf("submit saw wrong draft: %+v", submitted)
	}
	if c.Event() != nil {
		t.Error("draft should be cleared after a confirmed commit")
	}
}

func TestCommitEventKeepsDraftOnFailure(t *testing.T) {
	c := NewCache()
	c.StageEvent(EventDraft{Title: "Lunch", Date: "2025-07-20"})

	wantErr := errors.New("backend down")
	err := c.CommitEvent(func(EventDraft) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected submit error, got %v", err)
	}
	if d := c.Event(); d == nil || d.Title != "Lunch" {
		t.Error("draft must stay staged after a failed commit")
	}
}

func TestCommitWithoutDraft(t *testing.T) {
	c := NewCache()
	if err := c.CommitEvent(func(EventDraft) error { return nil }); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}
	if err := c.CommitPayload(func(PayloadDraft) error { return nil }); !errors.Is(err, ErrNoDraft) {
		t.Errorf("expected ErrNoDraft, got %v", err)
	}
}

func TestDiscardEvent(t *testing.T) {
	c := NewCache()
	c.StageEvent(EventDraft{Title: "Lunch"})
	c.DiscardEvent()
	if c.Event() != nil {
		t.Error("discard should clear the draft")
	}
}

func TestPayloadDraftLifecycle(t *testing.T) {
	c := NewCache()
	c.StagePayload("task-1", `{"caption":"hello"}`)

	// One in-flight edit per type: restaging replaces.
	c.StagePayload("task-2", `{"caption":"bye"}`)
	if p := c.Payload(); p == nil || p.TaskID != "task-2" {
		t.Fatalf("expected payload for task-2, got %+v", p)
	}

	err := c.CommitPayload(func(p PayloadDraft) error {
		if p.TaskID != "task-2" {
			t.Errorf("submit saw wrong task: %s", p.TaskID)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	if c.Payload() != nil {
		t.Error("payload draft should be cleared after commit")
	}
}

func TestEventAndPayloadAreIndependent(t *testing.T) {
	c := NewCache()
	c.StageEvent(EventDraft{Title: "Lunch"})
	c.StagePayload("task-1", "{}")

	c.DiscardPayload()
	if c.Event() == nil {
		t.Error("discarding the payload draft must not touch the event draft")
	}
}
