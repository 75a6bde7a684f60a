package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/minseo-dev/worklight/internal/draft"
	"github.com/minseo-dev/worklight/internal/models"
)

const (
	fieldTitle = iota
	fieldDate
	fieldTime
	fieldDescription
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Date", "Time", "Description"}

func (a *App) initEditorFields() {
	a.fields = make([]textinput.Model, fieldCount)
	for i := range a.fields {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = 48
		a.fields[i] = ti
	}
	a.fields[fieldTitle].Placeholder = "Event title"
	a.fields[fieldDate].Placeholder = "YYYY-MM-DD"
	a.fields[fieldTime].Placeholder = "HH:MM (optional)"
	a.fields[fieldDescription].Placeholder = "Notes (optional)"
}

func (a *App) resetEditorFields() {
	for i := range a.fields {
		a.fields[i].SetValue("")
		a.fields[i].Blur()
	}
	a.fieldIdx = 0
}

// openEditor enters the editor, prefilled from a previously staged draft
// when one survived a failed save, otherwise from the selected date.
func (a *App) openEditor() {
	a.resetEditorFields()
	if d := a.drafts.Event(); d != nil {
		a.fields[fieldTitle].SetValue(d.Title)
		a.fields[fieldDate].SetValue(d.Date)
		a.fields[fieldTime].SetValue(d.Time)
		a.fields[fieldDescription].SetValue(d.Description)
	} else {
		a.fields[fieldDate].SetValue(a.selected.String())
	}
	a.fields[fieldTitle].Focus()
	a.mode = "editor"
}

func (a *App) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.drafts.DiscardEvent()
		a.resetEditorFields()
		a.mode = "day"
		a.message = "Draft discarded"
		return a, nil

	case "tab", "down":
		a.focusField((a.fieldIdx + 1) % fieldCount)
		return a, nil

	case "shift+tab", "up":
		a.focusField((a.fieldIdx + fieldCount - 1) % fieldCount)
		return a, nil

	case "enter":
		if a.saving {
			return a, nil
		}
		a.stageFields()
		d := a.drafts.Event()
		if d == nil || d.Title == "" || d.Date == "" {
			a.message = "Error: title and date are required"
			return a, nil
		}
		a.saving = true
		return a, a.saveEvent()
	}

	var cmd tea.Cmd
	a.fields[a.fieldIdx], cmd = a.fields[a.fieldIdx].Update(msg)
	return a, cmd
}

func (a *App) focusField(idx int) {
	a.stageFields()
	a.fields[a.fieldIdx].Blur()
	a.fieldIdx = idx
	a.fields[a.fieldIdx].Focus()
}

// stageFields writes the current input values into the draft cache, so the
// in-progress event survives view switches and failed saves.
func (a *App) stageFields() {
	a.drafts.StageEvent(draft.EventDraft{
		Title:       strings.TrimSpace(a.fields[fieldTitle].Value()),
		Date:        strings.TrimSpace(a.fields[fieldDate].Value()),
		Time:        strings.TrimSpace(a.fields[fieldTime].Value()),
		Description: strings.TrimSpace(a.fields[fieldDescription].Value()),
	})
}

// saveEvent commits the staged draft. The draft is cleared only when the
// backend accepts it; on failure it stays staged and the editor keeps its
// values.
func (a *App) saveEvent() tea.Cmd {
	drafts := a.drafts
	api := a.api
	st := a.store
	userID := a.userID

	return func() tea.Msg {
		var title string
		err := drafts.CommitEvent(func(d draft.EventDraft) error {
			title = d.Title
			ev := models.ManualEvent{
				Title:       d.Title,
				Date:        d.Date,
				Time:        d.Time,
				Description: d.Description,
			}
			created, err := api.CreateManualEvent(userID, ev)
			if err != nil {
				return err
			}
			if st != nil {
				_, err = st.AddManualEvent(userID, *created)
				return err
			}
			return nil
		})
		if err != nil {
			return errMsg{err}
		}
		return eventSavedMsg{title: title}
	}
}

func (a *App) renderEditor() string {
	var b strings.Builder
	b.WriteString("\n  " + sectionStyle.Render("New event") + "\n\n")

	for i, field := range a.fields {
		label := fieldLabels[i]
		if i == a.fieldIdx {
			b.WriteString("  " + selectedStyle.Render(" "+label+" ") + "\n")
		} else {
			b.WriteString("  " + mutedStyle.Render(label) + "\n")
		}
		b.WriteString("  " + inputBoxStyle.Render(field.View()) + "\n")
	}

	if a.saving {
		b.WriteString("\n  Saving...\n")
	}
	return b.String()
}
