// Package ui renders the leadglass dashboard with Bubble Tea. It is the
// render boundary: everything it shows comes out of the state store, and
// every view switch hands a sync invocation to the controller.
package ui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mpetrenko/leadglass/internal/backend"
	"github.com/mpetrenko/leadglass/internal/lead"
	"github.com/mpetrenko/leadglass/internal/notify"
	"github.com/mpetrenko/leadglass/internal/prefs"
	"github.com/mpetrenko/leadglass/internal/state"
	"github.com/mpetrenko/leadglass/internal/syncer"
)

const uiTick = time.Second

// Options configures the UI.
type Options struct {
	Context    context.Context
	Client     *backend.Client
	Controller *syncer.Controller
	Store      *state.Store
	Prefs      prefs.Prefs
	PrefsPath  string
	Log        *zap.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	client    *backend.Client
	ctrl      *syncer.Controller
	store     *state.Store
	log       *zap.Logger
	prefs     prefs.Prefs
	prefsPath string

	theme  Theme
	view   state.Dataset
	width  int
	height int
	ready  bool

	snapshot state.Snapshot
	selected map[state.Dataset]int

	showHelp      bool
	edit          *editModal
	confirmDelete bool

	status      string
	statusLevel statusLevel
	statusUntil time.Time
}

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusError
)

// New creates the root model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return Model{
		ctx:       ctx,
		client:    opts.Client,
		ctrl:      opts.Controller,
		store:     opts.Store,
		log:       log,
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
		theme:     GetTheme(opts.Prefs.Theme),
		view:      state.Results,
		selected:  make(map[state.Dataset]int),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
		m.syncCmd(state.Results),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		m.snapshot = m.store.Snapshot()
		m.clampSelection()
		return m, tickCmd()

	case syncedMsg:
		m.snapshot = m.store.Snapshot()
		m.clampSelection()
		return m, nil

	case mutationMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("%s failed: %v", msg.action, msg.err), statusError)
			return m, nil
		}
		m.setStatus(msg.action+" saved", statusSuccess)
		// The mutation invalidated the cache; re-sync what the user sees.
		return m, tea.Batch(m.syncCmd(state.Results), m.syncCmd(state.Contacts), m.syncCmd(state.History))

	case notifyMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("notification failed: %v", msg.err), statusError)
		} else {
			m.setStatus("summary sent to Telegram", statusSuccess)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.edit != nil {
		return m.renderEditModal()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.edit != nil {
		return m.handleEditKey(msg)
	}
	if m.confirmDelete {
		return m.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "1":
		return m.switchView(state.Results)
	case "2":
		return m.switchView(state.History)
	case "3":
		return m.switchView(state.Contacts)
	case "tab":
		next := state.Dataset((int(m.view) + 1) % 3)
		return m.switchView(next)
	case "shift+tab":
		prev := state.Dataset((int(m.view) + 2) % 3)
		return m.switchView(prev)

	case "r":
		m.setStatus("refreshing "+m.view.String(), statusInfo)
		return m, m.syncCmd(m.view)

	case "s":
		if m.view != state.Contacts {
			return m, nil
		}
		dir := m.store.ToggleContactSort()
		m.prefs.SortDirection = dir.String()
		m.savePrefs()
		m.snapshot = m.store.Snapshot()
		return m, nil

	case "e":
		if rec := m.selectedRecord(); rec != nil {
			m.edit = newEditModal(*rec)
		}
		return m, nil

	case "x":
		if m.selectedRecord() != nil {
			m.confirmDelete = true
		}
		return m, nil

	case "m":
		return m, m.notifyCmd()

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case "j", "down":
		m.moveSelection(1)
		return m, nil
	case "k", "up":
		m.moveSelection(-1)
		return m, nil
	case "g", "home":
		m.selected[m.view] = 0
		return m, nil
	case "G", "end":
		m.selected[m.view] = maxInt(0, m.rowCount()-1)
		return m, nil
	}

	return m, nil
}

// switchView is a navigation event: it changes the visible dataset and
// always starts a sync cycle for it.
func (m Model) switchView(d state.Dataset) (tea.Model, tea.Cmd) {
	m.view = d
	return m, m.syncCmd(d)
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmDelete = false
		rec := m.selectedRecord()
		if rec == nil {
			return m, nil
		}
		return m, m.deleteCmd(rec.ID)
	default:
		m.confirmDelete = false
		return m, nil
	}
}

func (m *Model) moveSelection(delta int) {
	count := m.rowCount()
	if count == 0 {
		return
	}
	next := m.selected[m.view] + delta
	if next < 0 {
		next = 0
	}
	if next > count-1 {
		next = count - 1
	}
	m.selected[m.view] = next
}

func (m *Model) clampSelection() {
	for _, d := range []state.Dataset{state.Results, state.History, state.Contacts} {
		count := m.datasetLen(d)
		if count == 0 {
			m.selected[d] = 0
		} else if m.selected[d] > count-1 {
			m.selected[d] = count - 1
		}
	}
}

func (m Model) rowCount() int {
	return m.datasetLen(m.view)
}

func (m Model) datasetLen(d state.Dataset) int {
	switch d {
	case state.History:
		return len(m.snapshot.History)
	case state.Contacts:
		return len(m.snapshot.Contacts)
	default:
		return len(m.snapshot.Results)
	}
}

// selectedRecord returns the record under the cursor for record-backed
// views, nil for the history view.
func (m Model) selectedRecord() *lead.Record {
	var rows []lead.Record
	switch m.view {
	case state.Results:
		rows = m.snapshot.Results
	case state.Contacts:
		rows = m.snapshot.Contacts
	default:
		return nil
	}
	idx := m.selected[m.view]
	if idx < 0 || idx >= len(rows) {
		return nil
	}
	rec := rows[idx]
	return &rec
}

func (m *Model) setStatus(text string, level statusLevel) {
	m.status = text
	m.statusLevel = level
	m.statusUntil = time.Now().Add(5 * time.Second)
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("save prefs failed", zap.Error(err))
	}
}

// Messages

type tickMsg time.Time

type syncedMsg state.Dataset

type mutationMsg struct {
	action string
	err    error
}

type notifyMsg struct {
	err error
}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(uiTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// syncCmd runs one sync cycle off the UI goroutine. The controller writes
// into the store; the follow-up message pulls the fresh snapshot in.
func (m Model) syncCmd(d state.Dataset) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		ctrl.Sync(ctx, d)
		return syncedMsg(d)
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	client, ctrl, ctx := m.client, m.ctrl, m.ctx
	return func() tea.Msg {
		if err := client.DeleteResult(ctx, id); err != nil {
			return mutationMsg{action: "delete", err: err}
		}
		ctrl.InvalidateAll()
		return mutationMsg{action: "delete"}
	}
}

// notifyCmd sends a dataset summary to the configured Telegram chat.
// Malformed settings fail synchronously without touching the network.
func (m Model) notifyCmd() tea.Cmd {
	if !m.prefs.Notifications {
		return func() tea.Msg {
			return notifyMsg{err: fmt.Errorf("notifications are disabled in prefs")}
		}
	}
	token, chatID := m.prefs.TelegramToken, m.prefs.TelegramChatID
	if err := notify.ValidateToken(token); err != nil {
		return func() tea.Msg { return notifyMsg{err: err} }
	}
	if err := notify.ValidateChatID(chatID); err != nil {
		return func() tea.Msg { return notifyMsg{err: err} }
	}

	ctx := m.ctx
	message := fmt.Sprintf(
		"<b>leadglass summary</b>\nResults: %d\nTasks: %d\nContacts: %d",
		len(m.snapshot.Results), len(m.snapshot.History), len(m.snapshot.Contacts),
	)
	return func() tea.Msg {
		client, err := notify.NewClient(token)
		if err != nil {
			return notifyMsg{err: err}
		}
		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return notifyMsg{err: client.Send(sendCtx, chatID, message)}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if opts.Context != nil {
		go func() {
			<-opts.Context.Done()
			p.Quit()
		}()
	}
	_, err := p.Run()
	return err
}
