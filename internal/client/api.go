package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/minseo-dev/worklight/internal/models"
)

// --- Automation Task Operations ---

// ListAutomationTasks fetches the user's automation tasks.
func (c *Client) ListAutomationTasks(userID string) ([]models.AutomationTask, error) {
	body, err := c.get("/users/" + escape(userID) + "/tasks")
	if err != nil {
		return nil, err
	}

	var tasks []models.AutomationTask
	if err := json.Unmarshal(body, &tasks); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	for i := range tasks {
		// Best effort: an undecodable payload still lists and edits raw.
		_ = tasks[i].DecodeData()
	}
	return tasks, nil
}

// CreateAutomationTask creates a task and returns the backend's record.
func (c *Client) CreateAutomationTask(userID string, task models.AutomationTask) (*models.AutomationTask, error) {
	body, err := c.post("/users/"+escape(userID)+"/tasks", task)
	if err != nil {
		return nil, err
	}

	var created models.AutomationTask
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decode created task: %w", err)
	}
	return &created, nil
}

// UpdateAutomationTask replaces a task record, payload included.
func (c *Client) UpdateAutomationTask(userID string, task models.AutomationTask) error {
	_, err := c.do(http.MethodPut, "/users/"+escape(userID)+"/tasks/"+escape(task.TaskID), task)
	return err
}

// DeleteAutomationTask removes a task.
func (c *Client) DeleteAutomationTask(userID, taskID string) error {
	_, err := c.do(http.MethodDelete, "/users/"+escape(userID)+"/tasks/"+escape(taskID), nil)
	return err
}

// --- Calendar Operations ---

// ListExternalEvents fetches externally synced events for a month range.
// from and to are YYYY-MM-DD bounds, inclusive.
func (c *Client) ListExternalEvents(userID, from, to string) ([]models.ExternalEvent, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	body, err := c.get("/users/" + escape(userID) + "/calendar/external?" + q.Encode())
	if err != nil {
		return nil, err
	}

	var events []models.ExternalEvent
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("decode external events: %w", err)
	}
	return events, nil
}

// CreateManualEvent submits a user-created event. The event is only shown
// as committed after this call confirms; until then it lives in the draft
// cache.
func (c *Client) CreateManualEvent(userID string, ev models.ManualEvent) (*models.ManualEvent, error) {
	body, err := c.post("/users/"+escape(userID)+"/calendar/events", ev)
	if err != nil {
		return nil, err
	}

	var created models.ManualEvent
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("decode created event: %w", err)
	}
	return &created, nil
}

// --- Agent Operations ---

type startRunRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// StartAgentRun submits a chat message and returns the new run, including
// its agent type so the caller can build the matching step tracker.
func (c *Client) StartAgentRun(userID, conversationID, message string) (*models.AgentRun, error) {
	body, err := c.post("/agent/runs", startRunRequest{
		UserID:         userID,
		ConversationID: conversationID,
		Message:        message,
	})
	if err != nil {
		return nil, err
	}

	var run models.AgentRun
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("decode agent run: %w", err)
	}
	return &run, nil
}

// GetAgentRun polls a run for step updates and, once finished, the answer.
func (c *Client) GetAgentRun(runID string) (*models.AgentRun, error) {
	body, err := c.get("/agent/runs/" + escape(runID))
	if err != nil {
		return nil, err
	}

	var run models.AgentRun
	if err := json.Unmarshal(body, &run); err != nil {
		return nil, fmt.Errorf("decode agent run: %w", err)
	}
	return &run, nil
}

// --- Feedback ---

type feedbackRequest struct {
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`
	Rating         int    `json:"rating"`
	Comment        string `json:"comment,omitempty"`
	Category       string `json:"category,omitempty"`
}

// SubmitFeedback sends a rating for a conversation. Fire and forget: the
// caller surfaces success or failure once and never retries.
func (c *Client) SubmitFeedback(userID, conversationID string, rating int, comment, category string) error {
	_, err := c.post("/feedback", feedbackRequest{
		UserID:         userID,
		ConversationID: conversationID,
		Rating:         rating,
		Comment:        comment,
		Category:       category,
	})
	return err
}
