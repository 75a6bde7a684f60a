package client

import (
	"log"

	"github.com/minseo-dev/worklight/internal/models"
	"github.com/minseo-dev/worklight/internal/store"
)

// Loader fetches backend collections and falls back to the offline cache
// when the backend is unreachable. Fresh fetches refresh the cache. Reads
// never surface a hard error to the UI: an empty collection plus FromCache
// is the worst case.
type Loader struct {
	client *Client
	store  *store.Store
}

// NewLoader creates a loader over a client and an offline store. A nil
// store is allowed; the loader then runs online-only with no fallback.
func NewLoader(c *Client, s *store.Store) *Loader {
	return &Loader{client: c, store: s}
}

// Tasks returns the user's automation tasks, fromCache=true when the
// backend could not be reached and the cached collection was served.
func (l *Loader) Tasks(userID string) (tasks []models.AutomationTask, fromCache bool, err error) {
	tasks, err = l.client.ListAutomationTasks(userID)
	if err == nil {
		if l.store != nil {
			if cacheErr := l.store.ReplaceTasks(userID, tasks); cacheErr != nil {
				log.Printf("task cache refresh failed: %v", cacheErr)
			}
		}
		return tasks, false, nil
	}
	if l.store == nil {
		return nil, false, err
	}

	log.Printf("task fetch failed, using cache: %v", err)
	cached, cacheErr := l.store.Tasks(userID)
	if cacheErr != nil {
		return nil, true, err
	}
	return cached, true, nil
}

// ExternalEvents returns externally synced events for a date range, with
// the same cache-fallback behavior as Tasks.
func (l *Loader) ExternalEvents(userID, from, to string) (events []models.ExternalEvent, fromCache bool, err error) {
	events, err = l.client.ListExternalEvents(userID, from, to)
	if err == nil {
		if l.store != nil {
			if cacheErr := l.store.ReplaceExternalEvents(userID, events); cacheErr != nil {
				log.Printf("event cache refresh failed: %v", cacheErr)
			}
		}
		return events, false, nil
	}
	if l.store == nil {
		return nil, false, err
	}

	log.Printf("external event fetch failed, using cache: %v", err)
	cached, cacheErr := l.store.ExternalEvents(userID)
	if cacheErr != nil {
		return nil, true, err
	}
	return cached, true, nil
}

// ManualEvents returns the locally recorded manual events. These never come
// from the backend, so there is no fetch to fail and nothing without a
// store.
func (l *Loader) ManualEvents(userID string) ([]models.ManualEvent, error) {
	if l.store == nil {
		return nil, nil
	}
	return l.store.ManualEvents(userID)
}
