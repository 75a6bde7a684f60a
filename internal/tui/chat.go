package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/minseo-dev/worklight/internal/models"
	"github.com/minseo-dev/worklight/internal/progress"
)

func (a *App) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Leaving the view stops the poll loop; the tick handler checks
		// the mode before scheduling another fetch.
		a.mode = "month"
		return a, nil

	case "enter":
		question := strings.TrimSpace(a.chatInput.Value())
		if question == "" {
			return a, nil
		}
		if a.runStatus == models.RunStatusRunning && a.runID != "" {
			a.message = "A query is already running"
			return a, nil
		}
		a.question = question
		a.answer = ""
		a.answerView.SetContent("")
		a.chatInput.SetValue("")
		return a, a.startRun(question)

	case "f":
		if a.answer != "" {
			return a, a.sendFeedback(5, "answer")
		}

	case "F":
		if a.answer != "" {
			return a, a.sendFeedback(1, "answer")
		}

	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		a.answerView, cmd = a.answerView.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.chatInput, cmd = a.chatInput.Update(msg)
	return a, cmd
}

func (a *App) startRun(question string) tea.Cmd {
	api := a.api
	userID := a.userID
	convID := a.conversationID
	return func() tea.Msg {
		run, err := api.StartAgentRun(userID, convID, question)
		if err != nil {
			return errMsg{err}
		}
		return runStartedMsg{run}
	}
}

func (a *App) renderChat() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionStyle.Render("Assistant") + "\n\n")

	if a.question != "" {
		b.WriteString("  " + lipgloss.NewStyle().Bold(true).Render("You: ") + a.question + "\n\n")
	}

	if a.tracker != nil {
		b.WriteString(a.renderProgress())
	}

	if a.answer != "" {
		b.WriteString("\n  " + sectionStyle.Render("Answer") + "\n")
		b.WriteString(a.answerView.View() + "\n")
	} else if a.runStatus == models.RunStatusRunning {
		b.WriteString("\n  " + mutedStyle.Render("Gathering data...") + "\n")
	}

	b.WriteString("\n  " + inputBoxStyle.Render(a.chatInput.View()) + "\n")
	return b.String()
}

// renderProgress draws the per-service step list and a fraction bar. A step
// that errored still counts toward completion; the run is reported as
// degraded rather than failed.
func (a *App) renderProgress() string {
	var b strings.Builder

	for _, step := range a.tracker.Steps() {
		color := lipgloss.Color(step.Color)
		if step.Color == "" {
			color = mutedColor
		}
		glyph := stepGlyph(step.Status)
		b.WriteString(fmt.Sprintf("  %s %s\n",
			lipgloss.NewStyle().Foreground(color).Render(glyph),
			step.Label))
	}

	const barWidth = 24
	filled := int(a.tracker.Fraction() * barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	b.WriteString(fmt.Sprintf("  %s %3.0f%%\n",
		lipgloss.NewStyle().Foreground(primaryColor).Render(bar),
		a.tracker.Fraction()*100))

	if a.tracker.Done() && a.tracker.Degraded() {
		b.WriteString("  " + lipgloss.NewStyle().Foreground(warningColor).
			Render("Some services failed; the answer may be partial.") + "\n")
	}
	return b.String()
}

func stepGlyph(s progress.Status) string {
	switch s {
	case progress.StatusPending:
		return "○"
	case progress.StatusActive:
		return "◐"
	case progress.StatusCompleted:
		return "●"
	case progress.StatusError:
		return "✗"
	default:
		return "?"
	}
}
