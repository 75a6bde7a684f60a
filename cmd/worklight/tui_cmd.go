package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/minseo-dev/worklight/internal/client"
	"github.com/minseo-dev/worklight/internal/progress"
	"github.com/minseo-dev/worklight/internal/session"
	"github.com/minseo-dev/worklight/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive calendar",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	sessions, err := session.NewManager()
	if err != nil {
		log.Printf("session unavailable: %v", err)
	}

	steps, err := progress.LoadConfigFromHome()
	if err != nil {
		return fmt.Errorf("load agent step config: %w", err)
	}

	st := openStore(cfg)
	if st != nil {
		defer st.Close()
	}

	api := client.New(cfg.APIAddr)
	if !api.CheckHealth() {
		log.Printf("backend %s unreachable, starting with cached data", cfg.APIAddr)
	}

	app := tui.New(tui.Options{
		API:           api,
		Store:         st,
		Sessions:      sessions,
		Steps:         steps,
		Subscriptions: cfg.Calendars,
		UserID:        currentUserID(sessions),
	})
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
