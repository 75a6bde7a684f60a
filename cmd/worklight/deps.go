package main

import (
	"context"
	"log"
	"time"

	"github.com/minseo-dev/worklight/internal/calendar"
	"github.com/minseo-dev/worklight/internal/client"
	"github.com/minseo-dev/worklight/internal/config"
	"github.com/minseo-dev/worklight/internal/ics"
	"github.com/minseo-dev/worklight/internal/session"
	"github.com/minseo-dev/worklight/internal/store"
)

// loadAppConfig reads ~/.worklight/config.yaml and applies the --api
// override.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigFromHome()
	if err != nil {
		return nil, err
	}
	if apiAddr != "" {
		cfg.APIAddr = apiAddr
	}
	return cfg, nil
}

// openStore opens the offline cache. Failure is not fatal for read paths;
// callers get a nil store and run online-only.
func openStore(cfg *config.Config) *store.Store {
	path, err := cfg.CachePath()
	if err != nil {
		log.Printf("offline cache disabled: %v", err)
		return nil
	}
	st, err := store.New(path)
	if err != nil {
		log.Printf("offline cache disabled: %v", err)
		return nil
	}
	return st
}

// currentUserID resolves the signed-in user, falling back to a local
// default so the client still works against self-hosted backends without
// auth.
func currentUserID(sessions *session.Manager) string {
	if sessions != nil {
		if id := sessions.UserID(); id != "" {
			return id
		}
	}
	return "local"
}

// loadSources fetches all three event sources for the cursor's 42-cell
// range, ICS feeds included.
func loadSources(cfg *config.Config, loader *client.Loader, userID string, cursor calendar.Cursor) (calendar.Sources, bool, error) {
	first := time.Date(cursor.Year, cursor.Month, 1, 0, 0, 0, 0, time.Local)
	from := first.AddDate(0, 0, -int(first.Weekday()))
	to := from.AddDate(0, 0, calendar.GridCells)

	tasks, tasksCached, err := loader.Tasks(userID)
	if err != nil {
		return calendar.Sources{}, false, err
	}
	external, extCached, err := loader.ExternalEvents(
		userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return calendar.Sources{}, false, err
	}
	manual, err := loader.ManualEvents(userID)
	if err != nil {
		return calendar.Sources{}, false, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	fetcher := ics.NewFetcher()
	for _, sub := range cfg.Calendars {
		events, err := fetcher.Events(ctx, sub, from, to)
		if err != nil {
			log.Printf("calendar feed %s: %v", sub.Name, err)
			continue
		}
		external = append(external, events...)
	}

	return calendar.Sources{
		Manual:     manual,
		Automation: tasks,
		External:   external,
	}, tasksCached || extCached, nil
}
