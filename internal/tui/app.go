// Package tui provides the interactive terminal UI for worklight.
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/minseo-dev/worklight/internal/calendar"
	"github.com/minseo-dev/worklight/internal/client"
	"github.com/minseo-dev/worklight/internal/draft"
	"github.com/minseo-dev/worklight/internal/ics"
	"github.com/minseo-dev/worklight/internal/models"
	"github.com/minseo-dev/worklight/internal/progress"
	"github.com/minseo-dev/worklight/internal/session"
	"github.com/minseo-dev/worklight/internal/store"
)

var (
	// Colors
	primaryColor = lipgloss.Color("#7C3AED")
	successColor = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#6B7280")
	fgColor      = lipgloss.Color("#F9FAFB")
	cyanColor    = lipgloss.Color("#06B6D4")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#374151")).
			Foreground(fgColor).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(fgColor).
			Bold(true)

	todayStyle = lipgloss.NewStyle().
			Foreground(cyanColor).
			Bold(true)

	outMonthStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(cyanColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// App is the main TUI application model.
type App struct {
	api      *client.Client
	loader   *client.Loader
	store    *store.Store
	drafts   *draft.Cache
	sessions *session.Manager
	stepCfg  *progress.Config
	fetcher  *ics.Fetcher
	subs     []ics.Subscription
	userID   string

	mode string // "month", "day", "editor", "chat"

	cursor    calendar.Cursor
	selected  calendar.Date
	src       calendar.Sources
	fromCache bool
	loading   bool

	// day view
	dayIdx int

	// editor
	fields   []textinput.Model
	fieldIdx int
	saving   bool

	// chat
	chatInput      textinput.Model
	answerView     viewport.Model
	tracker        *progress.Tracker
	runID          string
	runStatus      models.RunStatus
	answer         string
	question       string
	conversationID string

	width   int
	height  int
	message string
}

// Options carries the wiring the TUI needs. Store and session may be nil;
// the app then runs online-only and signed out.
type Options struct {
	API           *client.Client
	Store         *store.Store
	Sessions      *session.Manager
	Steps         *progress.Config
	Subscriptions []ics.Subscription
	UserID        string
}

// New creates a new TUI application.
func New(opts Options) *App {
	now := time.Now()

	ci := textinput.New()
	ci.Placeholder = "Ask the assistant anything"
	ci.CharLimit = 512
	ci.Width = 80

	steps := opts.Steps
	if steps == nil {
		steps = progress.DefaultConfig()
	}

	userID := opts.UserID
	if userID == "" && opts.Sessions != nil {
		userID = opts.Sessions.UserID()
	}

	a := &App{
		api:       opts.API,
		loader:    client.NewLoader(opts.API, opts.Store),
		store:     opts.Store,
		drafts:    draft.NewCache(),
		sessions:  opts.Sessions,
		stepCfg:   steps,
		fetcher:   ics.NewFetcher(),
		subs:      opts.Subscriptions,
		userID:    userID,
		mode:      "month",
		cursor:    calendar.NewCursor(now),
		selected:  calendar.DateOf(now),
		chatInput: ci,
	}
	a.answerView = viewport.New(80, 10)
	a.initEditorFields()
	return a
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadCalendar())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.mode {
		case "month":
			return a.updateMonth(msg)
		case "day":
			return a.updateDay(msg)
		case "editor":
			return a.updateEditor(msg)
		case "chat":
			return a.updateChat(msg)
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.chatInput.Width = msg.Width - 6
		a.answerView.Width = msg.Width - 4
		a.answerView.Height = max(5, msg.Height-16)

	case calendarLoadedMsg:
		a.loading = false
		a.src = msg.src
		a.fromCache = msg.fromCache
		if msg.fromCache {
			a.message = "offline: showing cached data"
		}

	case eventSavedMsg:
		a.saving = false
		a.drafts.DiscardEvent()
		a.resetEditorFields()
		a.mode = "day"
		a.message = fmt.Sprintf("✓ Saved %q", msg.title)
		return a, a.loadCalendar()

	case eventDeletedMsg:
		a.message = "✓ Event removed"
		return a, a.loadCalendar()

	case runStartedMsg:
		a.runID = msg.run.RunID
		a.runStatus = msg.run.Status
		a.tracker = progress.NewTracker(a.stepCfg.StepsFor(msg.run.AgentType))
		a.tracker.Apply(msg.run.Steps)
		return a, a.tickCmd()

	case runPolledMsg:
		a.runStatus = msg.run.Status
		if a.tracker != nil {
			a.tracker.Apply(msg.run.Steps)
		}
		if msg.run.Status != models.RunStatusRunning {
			a.answer = msg.run.Answer
			a.answerView.SetContent(wrap(a.answer, a.answerView.Width))
			return a, nil
		}
		if a.mode == "chat" {
			// Schedule the next tick only after the current poll lands.
			return a, a.tickCmd()
		}

	case tickMsg:
		if a.mode == "chat" && a.runID != "" && a.runStatus == models.RunStatusRunning {
			return a, a.pollRun()
		}

	case feedbackSentMsg:
		a.message = "✓ Feedback sent"

	case errMsg:
		a.loading = false
		a.saving = false
		a.message = "Error: " + msg.err.Error()
	}

	// Non-key messages (cursor blink and friends) still go to whichever
	// input is focused.
	switch a.mode {
	case "editor":
		var cmd tea.Cmd
		a.fields[a.fieldIdx], cmd = a.fields[a.fieldIdx].Update(msg)
		return a, cmd
	case "chat":
		var cmd tea.Cmd
		a.chatInput, cmd = a.chatInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateMonth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		a.cursor.Prev()
		a.clampSelection()
		return a, a.loadCalendar()
	case "right", "l":
		a.cursor.Next()
		a.clampSelection()
		return a, a.loadCalendar()
	case "up", "k":
		return a, a.moveSelection(-7)
	case "down", "j":
		return a, a.moveSelection(7)
	case "shift+tab":
		return a, a.moveSelection(-1)
	case "tab":
		return a, a.moveSelection(1)
	case "t":
		now := time.Now()
		a.cursor = calendar.NewCursor(now)
		a.selected = calendar.DateOf(now)
		return a, a.loadCalendar()
	case "r":
		return a, a.loadCalendar()
	case "enter":
		a.mode = "day"
		a.dayIdx = 0
	case "e":
		a.openEditor()
	case "c":
		return a, a.openChat()
	case "q":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) updateDay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	day := calendar.EventsForDate(a.selected, a.src)

	switch msg.String() {
	case "esc":
		a.mode = "month"
	case "left", "h":
		return a, a.moveSelection(-1)
	case "right", "l":
		return a, a.moveSelection(1)
	case "up", "k":
		if a.dayIdx > 0 {
			a.dayIdx--
		}
	case "down", "j":
		if a.dayIdx < day.Total()-1 {
			a.dayIdx++
		}
	case "e":
		a.openEditor()
	case "d":
		if ev, ok := selectedDayEvent(day, a.dayIdx); ok && ev.Source == calendar.SourceManual {
			return a, a.deleteManualEvent(ev.ID)
		}
		a.message = "Only manual events can be removed here"
	case "r":
		return a, a.loadCalendar()
	}
	return a, nil
}

// clampSelection pulls the selected day back into the cursor month after a
// month jump, keeping the day-of-month when it exists.
func (a *App) clampSelection() {
	day := a.selected.Day
	last := time.Date(a.cursor.Year, a.cursor.Month+1, 0, 0, 0, 0, 0, time.Local).Day()
	if day > last {
		day = last
	}
	a.selected = calendar.Date{Year: a.cursor.Year, Month: a.cursor.Month, Day: day}
}

// moveSelection shifts the selected day. Crossing a month boundary moves the
// cursor with it and refetches that month's data.
func (a *App) moveSelection(days int) tea.Cmd {
	t := time.Date(a.selected.Year, a.selected.Month, a.selected.Day, 0, 0, 0, 0, time.Local)
	a.selected = calendar.DateOf(t.AddDate(0, 0, days))
	if !a.cursor.Contains(a.selected) {
		a.cursor = calendar.Cursor{Year: a.selected.Year, Month: a.selected.Month}
		return a.loadCalendar()
	}
	return nil
}

func selectedDayEvent(day calendar.DayEvents, idx int) (calendar.Event, bool) {
	all := make([]calendar.Event, 0, day.Total())
	all = append(all, day.Manual...)
	all = append(all, day.Automation...)
	all = append(all, day.External...)
	if idx < 0 || idx >= len(all) {
		return calendar.Event{}, false
	}
	return all[idx], true
}

// gridRange returns the date span covered by the 42-cell grid for the
// current cursor month.
func (a *App) gridRange() (time.Time, time.Time) {
	first := time.Date(a.cursor.Year, a.cursor.Month, 1, 0, 0, 0, 0, time.Local)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	return start, start.AddDate(0, 0, calendar.GridCells)
}

func (a *App) loadCalendar() tea.Cmd {
	a.loading = true
	userID := a.userID
	loader := a.loader
	fetcher := a.fetcher
	subs := a.subs
	from, to := a.gridRange()

	return func() tea.Msg {
		tasks, tasksCached, err := loader.Tasks(userID)
		if err != nil {
			return errMsg{err}
		}
		external, extCached, err := loader.ExternalEvents(
			userID, from.Format("2006-01-02"), to.Format("2006-01-02"))
		if err != nil {
			return errMsg{err}
		}
		manual, err := loader.ManualEvents(userID)
		if err != nil {
			return errMsg{err}
		}

		// ICS subscriptions are additive; a broken feed costs a log line,
		// not the whole view.
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		for _, sub := range subs {
			events, err := fetcher.Events(ctx, sub, from, to)
			if err != nil {
				log.Printf("calendar feed %s: %v", sub.Name, err)
				continue
			}
			external = append(external, events...)
		}

		return calendarLoadedMsg{
			src: calendar.Sources{
				Manual:     manual,
				Automation: tasks,
				External:   external,
			},
			fromCache: tasksCached || extCached,
		}
	}
}

func (a *App) deleteManualEvent(id string) tea.Cmd {
	st := a.store
	userID := a.userID
	return func() tea.Msg {
		if st == nil {
			return errMsg{fmt.Errorf("no local store configured")}
		}
		if err := st.DeleteManualEvent(userID, id); err != nil {
			return errMsg{err}
		}
		return eventDeletedMsg{}
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a *App) pollRun() tea.Cmd {
	api := a.api
	runID := a.runID
	return func() tea.Msg {
		run, err := api.GetAgentRun(runID)
		if err != nil {
			return errMsg{err}
		}
		return runPolledMsg{run}
	}
}

func (a *App) sendFeedback(rating int, category string) tea.Cmd {
	api := a.api
	userID := a.userID
	convID := a.conversationID
	return func() tea.Msg {
		if err := api.SubmitFeedback(userID, convID, rating, "", category); err != nil {
			return errMsg{err}
		}
		return feedbackSentMsg{}
	}
}

func (a *App) openChat() tea.Cmd {
	a.mode = "chat"
	if a.conversationID == "" {
		a.conversationID = uuid.New().String()
	}
	a.chatInput.Focus()
	// Leaving the view dropped the tick loop; a still-running query needs
	// it re-armed or it would stay "running" forever.
	if a.runID != "" && a.runStatus == models.RunStatusRunning {
		return tea.Batch(textinput.Blink, a.tickCmd())
	}
	return textinput.Blink
}

// View implements tea.Model
func (a *App) View() string {
	var b strings.Builder

	user := mutedStyle.Render("○ not signed in")
	if a.sessions != nil {
		if u := a.sessions.User(); u != nil {
			user = lipgloss.NewStyle().Foreground(successColor).Render("● " + u.Name)
		}
	}
	source := ""
	if a.fromCache {
		source = "  " + lipgloss.NewStyle().Foreground(warningColor).Render("[offline]")
	}

	header := titleStyle.Render("☀ worklight") + "  " + user + source
	b.WriteString(header + "\n")
	b.WriteString(strings.Repeat("─", max(a.width, 20)) + "\n")

	switch a.mode {
	case "month":
		b.WriteString(a.renderMonth())
	case "day":
		b.WriteString(a.renderDay())
	case "editor":
		b.WriteString(a.renderEditor())
	case "chat":
		b.WriteString(a.renderChat())
	}

	if a.message != "" {
		msgStyle := lipgloss.NewStyle().Foreground(successColor)
		if strings.HasPrefix(a.message, "Error") {
			msgStyle = lipgloss.NewStyle().Foreground(errorColor)
		}
		b.WriteString("\n" + msgStyle.Render(a.message))
	}
	b.WriteString("\n")

	var status string
	switch a.mode {
	case "month":
		status = " ←→:month | ↑↓:week | Tab:day | Enter:detail | e:new | c:chat | t:today | r:refresh | q:quit"
	case "day":
		status = " ←→:day | ↑↓:select | e:new | d:delete | Esc:back"
	case "editor":
		status = " Tab:next field | Enter:save | Esc:discard"
	case "chat":
		status = " Enter:ask | f:helpful | F:not helpful | Esc:back"
	}
	b.WriteString(statusBarStyle.Width(max(a.width, len(status))).Render(status))

	return b.String()
}

func (a *App) now() time.Time {
	return time.Now()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// wrap does simple word wrapping for the answer viewport.
func wrap(s string, width int) string {
	if width < 10 {
		width = 10
	}
	var b strings.Builder
	for _, line := range strings.Split(s, "\n") {
		length := 0
		for _, word := range strings.Fields(line) {
			if length > 0 && length+1+len(word) > width {
				b.WriteString("\n")
				length = 0
			} else if length > 0 {
				b.WriteString(" ")
				length++
			}
			b.WriteString(word)
			length += len(word)
		}
		b.WriteString("\n")
	}
	return b.String()
}

type calendarLoadedMsg struct {
	src       calendar.Sources
	fromCache bool
}

type eventSavedMsg struct {
	title string
}

type eventDeletedMsg struct{}

type runStartedMsg struct {
	run *models.AgentRun
}

type runPolledMsg struct {
	run *models.AgentRun
}

type feedbackSentMsg struct{}

type tickMsg time.Time

type errMsg struct {
	err error
}
