// Package models defines the core domain types for Worklight.
package models

import (
	"encoding/json"
	"fmt"
)

// TaskType identifies the kind of work an automation task performs.
type TaskType string

const (
	TaskTypeSocialPost TaskType = "social-post"
	TaskTypeEmail      TaskType = "email"
	TaskTypeBlog       TaskType = "blog"
)

// TaskStatus represents the backend lifecycle state of an automation task.
type TaskStatus string

const (
	TaskStatusDraft     TaskStatus = "draft"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusScheduled TaskStatus = "scheduled"
	TaskStatusPublished TaskStatus = "published"
	TaskStatusError     TaskStatus = "error"
)

// AutomationTask is a backend-scheduled unit of work (scheduled social post,
// email or blog draft) surfaced to the calendar as an event. It is consumed
// read-only except when the user edits its payload in the detail editor.
type AutomationTask struct {
	TaskID      string     `json:"task_id"`
	Title       string     `json:"title"`
	TaskType    TaskType   `json:"task_type"`
	Status      TaskStatus `json:"status"`
	CreatedAt   string     `json:"created_at"`
	ScheduledAt string     `json:"scheduled_at,omitempty"`
	TaskData    TaskData   `json:"task_data,omitempty"`
}

// TaskData is the per-type payload of an automation task. Exactly one of the
// typed fields is set, selected by the task's TaskType. Payloads of unknown
// types are carried through Raw so an edit round trip never drops data.
type TaskData struct {
	SocialPost *SocialPostData
	Email      *EmailData
	Blog       *BlogData
	Raw        json.RawMessage
}

// SocialPostData is the payload of a social-post task.
type SocialPostData struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags,omitempty"`
	ImageURL string   `json:"image_url,omitempty"`
}

// EmailData is the payload of an email task.
type EmailData struct {
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Recipients []string `json:"recipients,omitempty"`
}

// BlogData is the payload of a blog task.
type BlogData struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Keywords []string `json:"keywords,omitempty"`
}

// UnmarshalJSON keeps the raw payload; DecodeData resolves the typed view
// once the surrounding task's type is known.
func (d *TaskData) UnmarshalJSON(data []byte) error {
	d.Raw = append(d.Raw[:0], data...)
	return nil
}

// MarshalJSON writes the typed payload if one is set, otherwise the raw one.
func (d TaskData) MarshalJSON() ([]byte, error) {
	switch {
	case d.SocialPost != nil:
		return json.Marshal(d.SocialPost)
	case d.Email != nil:
		return json.Marshal(d.Email)
	case d.Blog != nil:
		return json.Marshal(d.Blog)
	case len(d.Raw) > 0:
		return d.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// DecodeData resolves the task's raw payload into the typed variant matching
// its TaskType. Unknown types keep the raw payload untouched.
func (t *AutomationTask) DecodeData() error {
	if len(t.TaskData.Raw) == 0 {
		return nil
	}
	switch t.TaskType {
	case TaskTypeSocialPost:
		var p SocialPostData
		if err := json.Unmarshal(t.TaskData.Raw, &p); err != nil {
			return fmt.Errorf("decode social-post payload: %w", err)
		}
		t.TaskData.SocialPost = &p
	case TaskTypeEmail:
		var p EmailData
		if err := json.Unmarshal(t.TaskData.Raw, &p); err != nil {
			return fmt.Errorf("decode email payload: %w", err)
		}
		t.TaskData.Email = &p
	case TaskTypeBlog:
		var p BlogData
		if err := json.Unmarshal(t.TaskData.Raw, &p); err != nil {
			return fmt.Errorf("decode blog payload: %w", err)
		}
		t.TaskData.Blog = &p
	}
	return nil
}

// ManualEvent is a calendar entry created directly through Worklight's own
// editor. Date and Time are kept verbatim as the user entered them.
type ManualEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExternalEvent is an event synced in from a third-party calendar
// integration, read-only from this layer's perspective. StartAt carries a
// full timestamp; Date alone means an all-day event.
type ExternalEvent struct {
	ID           string `json:"id"`
	Summary      string `json:"summary"`
	Description  string `json:"description,omitempty"`
	StartAt      string `json:"start_at,omitempty"`
	Date         string `json:"date,omitempty"`
	CalendarName string `json:"calendar_name,omitempty"`
}

// RunStatus represents the overall state of an agent run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusError     RunStatus = "error"
)

// AgentRun is one agent query: the data-gathering steps it performs and,
// once finished, the final answer.
type AgentRun struct {
	RunID     string       `json:"run_id"`
	AgentType string       `json:"agent_type"`
	Status    RunStatus    `json:"status"`
	Steps     []StepUpdate `json:"steps,omitempty"`
	Answer    string       `json:"answer,omitempty"`
}

// StepUpdate reports the backend-observed status of one data-gathering step.
type StepUpdate struct {
	ServiceID string `json:"service_id"`
	Status    string `json:"status"`
}
