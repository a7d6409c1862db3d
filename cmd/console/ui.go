package main

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/jwebster45206/wod-sheets/internal/services/events"
	"github.com/jwebster45206/wod-sheets/pkg/actor"
	"github.com/jwebster45206/wod-sheets/pkg/chat"
	"github.com/jwebster45206/wod-sheets/pkg/sheet"
	"github.com/jwebster45206/wod-sheets/pkg/track"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "Type /help for commands..."

// choice is one entry in the sheet picker: an existing sheet or a template
// to create a new sheet from.
type choice struct {
	label    string
	sheetID  uuid.UUID
	template string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	api          *APIClient
	session      *sheet.Session
	view         *sheet.View
	log          []chat.Message
	logViewport  viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	status       string
	loading      bool

	// Sheet picker state
	showPicker    bool
	choices       []choice
	selected      int
	loadingPicker bool

	showQuitModal bool

	events      chan SSEEvent
	stopEvents  context.CancelFunc
	eventsError error
}

type choicesLoadedMsg struct {
	choices []choice
	err     error
}

type sessionOpenedMsg struct {
	session *sheet.Session
	view    *sheet.View
	log     []chat.Message
	err     error
}

type viewMsg struct {
	view *sheet.View
	err  error
}

type rollMsg struct {
	message chat.Message
	err     error
}

type statusMsg struct {
	text string
	err  error
}

type eventMsg SSEEvent

type eventsClosedMsg struct{ err error }

var (
	logPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(3)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	headlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, api *APIClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 200
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	logVp := viewport.New(50, 20)
	logVp.MouseWheelEnabled = true

	return ConsoleUI{
		config:        cfg,
		api:           api,
		textarea:      ta,
		logViewport:   logVp,
		metaViewport:  viewport.New(20, 20),
		showPicker:    true,
		loadingPicker: true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadChoices()
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showPicker {
		return m.updatePicker(msg)
	}

	var tiCmd, vpCmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.render()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()
			if input == "" {
				return m, nil
			}
			return m.handleCommand(input)
		}

	case rollMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.addLog(msg.message)
		}
		m.render()
		return m, m.refreshView()

	case viewMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.view = msg.view
		}
		m.render()

	case statusMsg:
		m.loading = false
		m.err = msg.err
		m.status = msg.text
		m.render()
		return m, m.refreshView()

	case eventMsg:
		cmd := m.handleEvent(SSEEvent(msg))
		m.render()
		return m, tea.Batch(cmd, m.waitForEvent())

	case eventsClosedMsg:
		m.eventsError = msg.err
		m.render()
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.logViewport, vpCmd = m.logViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd, err := parseCommand(input)
	if err != nil {
		m.err = err
		m.render()
		return m, nil
	}
	m.err, m.status = nil, ""

	switch cmd.name {
	case "help":
		m.status = helpText
		m.render()
		return m, nil
	case "copy":
		if len(m.log) == 0 {
			m.status = "Nothing to copy yet."
		} else if err := clipboard.WriteAll(chat.Format(m.log[len(m.log)-1])); err != nil {
			m.err = fmt.Errorf("clipboard: %w", err)
		} else {
			m.status = "Last roll copied to clipboard."
		}
		m.render()
		return m, nil
	case "lock":
		m.loading = true
		return m, m.toggleLock()
	case "step":
		m.loading = true
		return m, m.step(cmd.track, cmd.index)
	default:
		m.loading = true
		return m, m.roll(cmd.roll)
	}
}

// handleEvent applies an event from the stream. Rolls made elsewhere are
// appended; rolls this console made are already in the log.
func (m *ConsoleUI) handleEvent(e SSEEvent) tea.Cmd {
	var ev events.Event
	if err := json.Unmarshal(e.Data, &ev); err != nil {
		return nil
	}
	switch ev.Type {
	case events.EventTypeRollCompleted:
		raw, err := json.Marshal(ev.Data["message"])
		if err != nil {
			return nil
		}
		var msg chat.Message
		if err := json.Unmarshal(raw, &msg); err == nil {
			m.addLog(msg)
		}
	case events.EventTypeSheetUpdated, events.EventTypeSheetLocked:
		return m.refreshView()
	}
	return nil
}

func (m *ConsoleUI) addLog(msg chat.Message) {
	if slices.ContainsFunc(m.log, func(x chat.Message) bool { return x.ID == msg.ID }) {
		return
	}
	m.log = append(m.log, msg)
}

func (m *ConsoleUI) resize() {
	logWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - logWidth - 6
	m.logViewport.Width = logWidth - 2
	m.logViewport.Height = m.height - 6
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 2
	m.textarea.SetWidth(logWidth - 4)
	m.ready = true
}

func (m *ConsoleUI) render() {
	width := max(m.logViewport.Width-6, 20)
	m.logViewport.SetContent(renderLog(m.log, width, m.status, m.err))
	m.logViewport.GotoBottom()
	if m.view != nil {
		m.metaViewport.SetContent(renderSheet(m.view, m.eventsError))
	}
}

// renderLog draws the roll log oldest first, followed by any status line.
func renderLog(log []chat.Message, width int, status string, err error) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ROLL LOG") + "\n\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, msg := range log {
		lines := strings.Split(chat.Format(msg), "\n")
		b.WriteString(speakerStyle.Render(lines[0]) + "\n")
		for _, line := range lines[1:] {
			if strings.HasSuffix(line, "!") {
				line = headlineStyle.Render(line)
			}
			b.WriteString(wordwrap.String(line, width) + "\n")
		}
		b.WriteString("\n")
	}

	if status != "" {
		b.WriteString(wordwrap.String(status, width) + "\n\n")
	}
	if err != nil {
		b.WriteString(errorStyle.Render("Error: "+err.Error()) + "\n")
	}
	return b.String()
}

var boxGlyphs = map[track.State]string{
	track.Empty:   "☐",
	track.Full:    "■",
	track.Half:    "◩",
	track.Crossed: "☒",
}

func renderBoxes(boxes []track.State) string {
	var b strings.Builder
	for _, s := range boxes {
		b.WriteString(boxGlyphs[s])
	}
	return b.String()
}

// renderSheet draws the side panel: tracks, derived pools and lock state.
func renderSheet(v *sheet.View, eventsErr error) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(v.Sheet.Name)) + "\n")
	b.WriteString(string(v.Sheet.Type) + "\n\n")

	lock := "unlocked"
	if v.Session.Locked {
		lock = "locked"
	}
	b.WriteString("Sheet: " + lock + "\n\n")

	names := make([]string, 0, len(v.Tracks))
	for name := range v.Tracks {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(fmt.Sprintf("%s\n%s\n\n", name, renderBoxes(v.Tracks[name].Boxes)))
	}

	if s := v.Sheet; s.Type == actor.LineVampire || s.Type == actor.LineGhoul {
		b.WriteString(fmt.Sprintf("Hunger: %d\n", s.Hunger.Value))
	}
	if v.Sheet.Type == actor.LineWerewolf {
		b.WriteString(fmt.Sprintf("Rage: %d\n", v.Sheet.Rage.Value))
	}

	if len(v.Pools) > 0 {
		b.WriteString("\nPools:\n")
		keys := make([]string, 0, len(v.Pools))
		for k := range v.Pools {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("• %s: %d\n", k, v.Pools[k]))
		}
	}

	if eventsErr != nil {
		b.WriteString("\n" + errorStyle.Render("Live updates off") + "\n")
	}
	return b.String()
}

func (m ConsoleUI) loadChoices() tea.Cmd {
	return func() tea.Msg {
		sheets, err := m.api.ListSheets()
		if err != nil {
			return choicesLoadedMsg{err: err}
		}
		templates, err := m.api.ListTemplates()
		if err != nil {
			return choicesLoadedMsg{err: err}
		}
		var out []choice
		for _, s := range sheets {
			id, err := uuid.Parse(s.ID)
			if err != nil {
				continue
			}
			out = append(out, choice{label: fmt.Sprintf("%s (%s)", s.Name, s.Type), sheetID: id})
		}
		for _, t := range templates {
			out = append(out, choice{label: "New " + t, template: t})
		}
		return choicesLoadedMsg{choices: out}
	}
}

func (m ConsoleUI) openChoice(c choice) tea.Cmd {
	return func() tea.Msg {
		id := c.sheetID
		if c.template != "" {
			s, err := m.api.CreateSheet(c.template, "")
			if err != nil {
				return sessionOpenedMsg{err: err}
			}
			id = s.ID
		}
		sess, err := m.api.OpenSession(id)
		if err != nil {
			return sessionOpenedMsg{err: err}
		}
		view, err := m.api.View(sess.ID)
		if err != nil {
			return sessionOpenedMsg{err: err}
		}
		log, err := m.api.Log(id, m.config.LogLimit)
		if err != nil {
			return sessionOpenedMsg{err: err}
		}
		slices.Reverse(log)
		return sessionOpenedMsg{session: sess, view: view, log: log}
	}
}

func (m ConsoleUI) refreshView() tea.Cmd {
	if m.session == nil {
		return nil
	}
	return func() tea.Msg {
		v, err := m.api.View(m.session.ID)
		return viewMsg{v, err}
	}
}

func (m ConsoleUI) roll(req sheet.RollRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := m.api.Roll(m.session.ID, req)
		if err != nil {
			return rollMsg{err: err}
		}
		return rollMsg{message: res.Message}
	}
}

func (m ConsoleUI) toggleLock() tea.Cmd {
	return func() tea.Msg {
		locked, err := m.api.ToggleLock(m.session.ID)
		if err != nil {
			return statusMsg{err: err}
		}
		if locked {
			return statusMsg{text: "Sheet locked."}
		}
		return statusMsg{text: "Sheet unlocked."}
	}
}

func (m ConsoleUI) step(name string, index int) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.api.Step(m.session.ID, name, index)
		if err != nil {
			return statusMsg{err: err}
		}
		if !resp.Applied {
			return statusMsg{text: fmt.Sprintf("Box %d of %s cannot change right now.", index+1, name)}
		}
		return statusMsg{text: fmt.Sprintf("%s: %s", name, renderBoxes(resp.Track.Boxes))}
	}
}

// startEvents subscribes to the sheet's event stream in the background.
func (m *ConsoleUI) startEvents(sheetID uuid.UUID) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.stopEvents = cancel
	m.events = make(chan SSEEvent, 16)

	ch, api := m.events, m.api
	listen := func() tea.Msg {
		err := api.listenToSSE(ctx, sheetID, ch)
		close(ch)
		return eventsClosedMsg{err: err}
	}
	return tea.Batch(listen, m.waitForEvent())
}

func (m ConsoleUI) waitForEvent() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(e)
	}
}

func (m ConsoleUI) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case choicesLoadedMsg:
		m.loadingPicker = false
		m.err = msg.err
		m.choices = msg.choices

	case sessionOpenedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session, m.view, m.log = msg.session, msg.view, msg.log
		m.showPicker = false
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.render()
		m.textarea.Focus()
		return m, tea.Batch(textarea.Blink, m.startEvents(msg.session.SheetID))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.loadingPicker {
				return m, tea.Quit
			}
			m.showQuitModal = true
		case tea.KeyUp:
			if m.selected > 0 {
				m.selected--
			}
		case tea.KeyDown:
			if m.selected < len(m.choices)-1 {
				m.selected++
			}
		case tea.KeyEnter:
			if !m.loading && m.err == nil && len(m.choices) > 0 {
				m.loading = true
				return m, m.openChoice(m.choices[m.selected])
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m.quit()
		default:
			switch msg.String() {
			case "y", "Y":
				return m.quit()
			case "n", "N":
				m.showQuitModal = false
				if m.showPicker {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}
	return m, nil
}

func (m ConsoleUI) quit() (tea.Model, tea.Cmd) {
	if m.stopEvents != nil {
		m.stopEvents()
	}
	return m, tea.Quit
}

func (m ConsoleUI) renderModal(title, body string, width int) string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	content := modalTitleStyle.Render(title) + "\n\n" + body
	modal := modalStyle.Width(width).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderPicker() string {
	switch {
	case m.loadingPicker:
		return m.renderModal("Loading Sheets...", loadingStyle.Render("Please wait..."), 60)
	case m.err != nil:
		return m.renderModal("Error", errorStyle.Render(m.err.Error())+"\n\nPress Ctrl+C to exit", 60)
	case m.loading:
		return m.renderModal("Opening Sheet...", loadingStyle.Render("Please wait..."), 60)
	}

	var body strings.Builder
	if len(m.choices) == 0 {
		body.WriteString("No sheets or templates found.\n")
	}
	for i, c := range m.choices {
		if i == m.selected {
			body.WriteString(modalSelectedItemStyle.Render("▶ "+c.label) + "\n")
		} else {
			body.WriteString(modalItemStyle.Render("  "+c.label) + "\n")
		}
	}
	body.WriteString("\n" + promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	return m.renderModal("Select a Sheet", body.String(), 60)
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderModal("Quit?", "Are you sure you want to quit?\n\n"+
			promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"), 50)
	}
	if m.showPicker {
		return m.renderPicker()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	logWidth := int(float64(m.width)*0.65) - 4
	metaWidth := m.width - logWidth - 6

	input := m.textarea.View()
	if m.loading {
		input = loadingStyle.Render("Rolling...")
	}

	logPanel := logPanelStyle.Width(logWidth).Height(m.height - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.logViewport.View(),
			separatorStyle.Render(strings.Repeat("─", max(logWidth-4, 1))),
			input,
		),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(m.metaViewport.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, logPanel, metaPanel)
}
