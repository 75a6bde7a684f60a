// Package draft holds transient, in-progress edits before they are
// submitted to the backend. Drafts live in memory only; the backend is the
// system of record, so nothing here survives a restart.
package draft

import "errors"

// ErrNoDraft is returned when commit is called with nothing staged.
var ErrNoDraft = errors.New("no draft staged")

// EventDraft is an in-progress new calendar event.
type EventDraft struct {
	Title       string
	Date        string
	Time        string
	Description string
}

// PayloadDraft is an in-progress edit of an automation task's raw payload.
type PayloadDraft struct {
	TaskID string
	Raw    string
}

// Cache holds at most one in-flight draft per editable entity type.
type Cache struct {
	event   *EventDraft
	payload *PayloadDraft
}

// NewCache creates an empty draft cache.
func NewCache() *Cache {
	return &Cache{}
}

// StageEvent merges the non-empty fields of partial into the current event
// draft, creating one if needed, and returns the merged result.
func (c *Cache) StageEvent(partial EventDraft) EventDraft {
	if c.event == nil {
		c.event = &EventDraft{}
	}
	if partial.Title != "" {
		c.event.Title = partial.Title
	}
	if partial.Date != "" {
		c.event.Date = partial.Date
	}
	if partial.Time != "" {
		c.event.Time = partial.Time
	}
	if partial.Description != "" {
		c.event.Description = partial.Description
	}
	return *c.event
}

// Event returns the staged event draft, or nil.
func (c *Cache) Event() *EventDraft {
	if c.event == nil {
		return nil
	}
	cp := *c.event
	return &cp
}

// CommitEvent hands the staged event to submit and clears the draft only on
// success. On failure the draft stays staged so the user can retry or
// discard; nothing is ever shown as committed until the backend confirms.
func (c *Cache) CommitEvent(submit func(EventDraft) error) error {
	if c.event == nil {
		return ErrNoDraft
	}
	if err := submit(*c.event); err != nil {
		return err
	}
	c.event = nil
	return nil
}

// DiscardEvent clears the event draft without committing.
func (c *Cache) DiscardEvent() {
	c.event = nil
}

// StagePayload replaces the staged task-payload edit. Staging a payload for
// a different task drops the previous edit: one in-flight edit per type.
func (c *Cache) StagePayload(taskID, raw string) {
	c.payload = &PayloadDraft{TaskID: taskID, Raw: raw}
}

// Payload returns the staged payload draft, or nil.
func (c *Cache) Payload() *PayloadDraft {
	if c.payload == nil {
		return nil
	}
	cp := *c.payload
	return &cp
}

// CommitPayload hands the staged payload to submit and clears it only on
// success, mirroring CommitEvent.
func (c *Cache) CommitPayload(submit func(PayloadDraft) error) error {
	if c.payload == nil {
		return ErrNoDraft
	}
	if err := submit(*c.payload); err != nil {
		return err
	}
	c.payload = nil
	return nil
}

// DiscardPayload clears the payload draft without committing.
func (c *Cache) DiscardPayload() {
	c.payload = nil
}
