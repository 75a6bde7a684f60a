package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/minseo-dev/worklight/internal/calendar"
)

var weekdayHeader = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

func (a *App) renderMonth() string {
	var b strings.Builder

	b.WriteString("\n  " + sectionStyle.Render(a.cursor.String()) + "\n\n")

	if a.loading {
		b.WriteString("  Loading calendar...\n")
		return b.String()
	}

	b.WriteString("  ")
	for _, wd := range weekdayHeader {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" %s    ", wd)))
	}
	b.WriteString("\n")

	grid := calendar.BuildGrid(a.cursor.Year, a.cursor.Month, a.src, a.now())
	for row := 0; row < 6; row++ {
		b.WriteString("  ")
		for col := 0; col < 7; col++ {
			cell := grid[row*7+col]
			b.WriteString(a.renderCell(cell))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n  " + helpStyle.Render("● automation   ◆ events") + "\n")

	day := calendar.EventsForDate(a.selected, a.src)
	b.WriteString(fmt.Sprintf("\n  %s: %d event(s)\n",
		a.selected.String(), day.Total()))

	return b.String()
}

// renderCell draws one fixed-width grid cell: day number plus markers.
func (a *App) renderCell(cell calendar.GridCell) string {
	marks := " "
	switch {
	case cell.HasAutomation && cell.HasEntry:
		marks = "●◆"
	case cell.HasAutomation:
		marks = "●"
	case cell.HasEntry:
		marks = "◆"
	}
	text := fmt.Sprintf("%2d%-3s", cell.Date.Day, marks)

	style := lipgloss.NewStyle()
	if !cell.InMonth {
		style = outMonthStyle
	}
	if cell.IsToday {
		style = todayStyle
	}
	if cell.Date == a.selected {
		style = selectedStyle
	}
	return style.Render(text) + "  "
}

func (a *App) renderDay() string {
	var b strings.Builder
	day := calendar.EventsForDate(a.selected, a.src)

	b.WriteString("\n  " + sectionStyle.Render(a.selected.String()) + "\n")
	if day.Total() == 0 {
		b.WriteString("\n  No events. Press e to add one.\n")
		return b.String()
	}

	idx := 0
	section := func(name string, events []calendar.Event) {
		if len(events) == 0 {
			return
		}
		b.WriteString("\n  " + sectionStyle.Render(name) + "\n")
		for _, ev := range events {
			b.WriteString(a.renderDayLine(ev, idx == a.dayIdx) + "\n")
			idx++
		}
	}
	section("Manual", day.Manual)
	section("Scheduled automations", day.Automation)
	section("External calendars", day.External)

	return b.String()
}

func (a *App) renderDayLine(ev calendar.Event, selected bool) string {
	clock := "--:--"
	if ev.Time != nil {
		clock = ev.Time.String()
	}
	line := fmt.Sprintf("%s  %s", clock, ev.Title)
	if ev.StatusLabel != "" {
		line += "  " + formatTaskStatus(ev.StatusLabel)
	}
	if ev.Description != "" {
		desc := ev.Description
		if len(desc) > 40 {
			desc = desc[:40] + "..."
		}
		line += "  " + mutedStyle.Render(desc)
	}

	if selected {
		return selectedStyle.Render("  ▶ " + line)
	}
	return "    " + line
}

func formatTaskStatus(status string) string {
	switch status {
	case "draft":
		return mutedStyle.Render("○ DRAFT")
	case "pending":
		return lipgloss.NewStyle().Foreground(warningColor).Render("◐ PENDING")
	case "scheduled":
		return lipgloss.NewStyle().Foreground(primaryColor).Render("◑ SCHEDULED")
	case "published":
		return lipgloss.NewStyle().Foreground(successColor).Render("● PUBLISHED")
	case "error":
		return lipgloss.NewStyle().Foreground(errorColor).Render("✗ ERROR")
	default:
		return status
	}
}
