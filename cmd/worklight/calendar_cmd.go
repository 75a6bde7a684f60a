package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/minseo-dev/worklight/internal/calendar"
	"github.com/minseo-dev/worklight/internal/client"
	"github.com/minseo-dev/worklight/internal/session"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the month calendar",
	RunE:  runCalendar,
}

var calendarMonth string

func init() {
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show (YYYY-MM, default: current)")
}

func runCalendar(cmd *cobra.Command, args []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	cursor := calendar.NewCursor(time.Now())
	if calendarMonth != "" {
		t, err := time.Parse("2006-01", calendarMonth)
		if err != nil {
			return fmt.Errorf("invalid --month %q, want YYYY-MM", calendarMonth)
		}
		cursor = calendar.NewCursor(t)
	}

	sessions, err := session.NewManager()
	if err != nil {
		log.Printf("session unavailable: %v", err)
	}
	userID := currentUserID(sessions)

	st := openStore(cfg)
	if st != nil {
		defer st.Close()
	}
	loader := client.NewLoader(client.New(cfg.APIAddr), st)

	src, fromCache, err := loadSources(cfg, loader, userID, cursor)
	if err != nil {
		return fmt.Errorf("load calendar: %w", err)
	}

	printMonth(cursor, src, time.Now())
	if fromCache {
		fmt.Println("\n(offline: showing cached data)")
	}
	return nil
}

// printMonth renders the 42-cell grid as plain text. The today cell is
// bracketed; markers follow the day number.
func printMonth(cursor calendar.Cursor, src calendar.Sources, now time.Time) {
	fmt.Printf("       %s\n", cursor.String())
	fmt.Println("  Su    Mo    Tu    We    Th    Fr    Sa")

	grid := calendar.BuildGrid(cursor.Year, cursor.Month, src, now)
	for row := 0; row < 6; row++ {
		for col := 0; col < 7; col++ {
			cell := grid[row*7+col]

			marks := ""
			if cell.HasAutomation {
				marks += "*"
			}
			if cell.HasEntry {
				marks += "+"
			}

			day := fmt.Sprintf("%2d", cell.Date.Day)
			if !cell.InMonth {
				day = "  "
			}
			if cell.IsToday {
				fmt.Printf("[%s]%-3s", day, marks)
			} else {
				fmt.Printf(" %s %-3s", day, marks)
			}
		}
		fmt.Println()
	}
	fmt.Println("\n  * automation   + events")
}
