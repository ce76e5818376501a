package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"refactorizer/internal/config"
	"refactorizer/internal/diffs"
	"refactorizer/internal/git"
	"refactorizer/internal/logging"
	"refactorizer/internal/model"
	"refactorizer/internal/provider"
	"refactorizer/internal/refactor"
)

// — spinner —————————————————————————————————————————————————————————————————

var spinnerFrames = []string{"|", "/", "-", "\\"}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// — messages ————————————————————————————————————————————————————————————————

// epicMsg carries an action produced by background work. gen ties it to the
// session that started the work so results arriving after a close are dropped.
type epicMsg struct {
	gen    int
	action refactor.Action
}

// previewMsg carries the result of a diff preview load. load ties it to
// the load that started it; going back from the preview starts a new one.
type previewMsg struct {
	gen    int
	load   int
	action refactor.Action
}

type fileAppliedMsg struct {
	gen   int
	index int
	err   error
}

// — options —————————————————————————————————————————————————————————————————

// Options configures one run of the UI.
type Options struct {
	Location model.Location
	UI       refactor.UI
	// InlineID skips the pick list and opens the freeform refactoring with
	// this ID directly.
	InlineID string
	Config   config.Config
	Logger   *logging.Logger

	// Collaborators; zero values use the real implementations.
	Detect    func(model.Editor) provider.Provider
	Dirty     func(paths []string) ([]string, error)
	ApplyFile func(model.FileDiff) error
}

func (o *Options) setDefaults() {
	if o.UI == "" {
		o.UI = refactor.UIGeneric
	}
	if o.Logger == nil {
		o.Logger = logging.Discard()
	}
	if o.Detect == nil {
		popts := provider.Options{
			Gopls:   o.Config.Gopls,
			Gofmt:   o.Config.Gofmt,
			Timeout: o.Config.Timeout,
		}
		o.Detect = func(e model.Editor) provider.Provider {
			return provider.Detect(e, popts)
		}
	}
	if o.Dirty == nil {
		o.Dirty = git.AnyDirty
	}
	if o.ApplyFile == nil {
		o.ApplyFile = diffs.ApplyFile
	}
}

// — model ———————————————————————————————————————————————————————————————————

// Model is the bubbletea model driving one refactoring session. It is the
// only caller of refactor.Reduce, and bubbletea's event loop serializes
// every dispatch.
type Model struct {
	opts    Options
	session refactor.Session

	gen       int
	sessionID string
	ctx       context.Context
	cancel    context.CancelFunc
	closing   bool
	// preview load currently waited on
	load int
	// writing is set once Apply has started writing files.
	writing bool

	width        int
	height       int
	spinnerFrame int

	list     list.Model
	inputs   []textinput.Model
	focus    int
	viewport viewport.Model
	progress progress.Model
	inputErr string

	applying model.Response
	err      error
	summary  string
}

// New returns a Model for opts.
func New(opts Options) Model {
	opts.setDefaults()

	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Refactorings"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = titleStyle

	return Model{
		opts:     opts,
		session:  refactor.Closed{},
		ctx:      context.Background(),
		cancel:   func() {},
		list:     l,
		viewport: viewport.New(0, 0),
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Session returns the current session state.
func (m Model) Session() refactor.Session { return m.session }

// Err returns the error that ended the session, if any.
func (m Model) Err() error { return m.err }

// Summary returns the closing status line.
func (m Model) Summary() string { return m.summary }

// — tea.Model ———————————————————————————————————————————————————————————————

func (m Model) Init() tea.Cmd {
	if m.opts.InlineID != "" {
		return tea.Batch(m.inlineCmd(), tickCmd())
	}
	return tea.Batch(m.emit(refactor.OpenSession{UI: m.opts.UI}), tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.progress.Width = min(msg.Width-8, 60)
		return m, nil

	case tickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, tickCmd()

	case epicMsg:
		if msg.gen != m.gen {
			m.opts.Logger.Debug("dropped stale action", "action", msg.action.Type(), "gen", msg.gen)
			return m, nil
		}
		return m.dispatch(msg.action)

	case previewMsg:
		if msg.gen != m.gen || msg.load != m.load || !m.loadingPreview() {
			m.opts.Logger.Debug("dropped stale preview", "action", msg.action.Type(), "load", msg.load)
			return m, nil
		}
		return m.dispatch(msg.action)

	case fileAppliedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.fileApplied(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.abort()
		}
	}

	open, ok := m.session.(refactor.Open)
	if !ok {
		return m, nil
	}
	switch phase := open.Phase.(type) {
	case refactor.Pick:
		return m.updatePick(msg, phase)
	case refactor.Rename:
		return m.updateRename(msg, phase)
	case refactor.Freeform:
		return m.updateFreeform(msg, phase)
	case refactor.Confirm:
		return m.updateConfirm(msg, phase)
	case refactor.DiffPreview:
		return m.updateDiffPreview(msg, phase)
	case refactor.Progress:
		return m, nil
	default:
		return m.updateWaiting(msg)
	}
}

// dispatch reduces action into the session and runs the work it triggers.
func (m Model) dispatch(action refactor.Action) (Model, tea.Cmd) {
	from := refactor.Describe(m.session)
	m.session = refactor.Reduce(m.session, action)
	m.opts.Logger.Debug("dispatch",
		"session", m.sessionID,
		"action", action.Type(),
		"from", from,
		"to", refactor.Describe(m.session),
	)
	return m.react(action)
}

// loadingPreview reports whether the session waits for a diff preview.
func (m Model) loadingPreview() bool {
	open, ok := m.session.(refactor.Open)
	if !ok {
		return false
	}
	preview, ok := open.Phase.(refactor.DiffPreview)
	return ok && preview.Loading
}

// emit returns a command delivering action for the current session.
func (m Model) emit(action refactor.Action) tea.Cmd {
	gen := m.gen
	return func() tea.Msg {
		return epicMsg{gen: gen, action: action}
	}
}

// abort closes an open session or quits when there is none.
func (m Model) abort() (tea.Model, tea.Cmd) {
	if _, open := m.session.(refactor.Open); open && !m.closing {
		m.summary = "cancelled"
		return m.dispatch(refactor.Close{})
	}
	return m, tea.Quit
}

// — key handling per phase ——————————————————————————————————————————————————

func (m Model) updateWaiting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && (key.String() == "esc" || key.String() == "q") {
		return m.abort()
	}
	return m, nil
}

func (m Model) updatePick(msg tea.Msg, pick refactor.Pick) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			return m.abort()
		case "enter":
			item, ok := m.list.SelectedItem().(refactoringItem)
			if !ok {
				return m, nil
			}
			if item.r.Disabled {
				m.inputErr = item.r.Title() + " is not available here"
				return m, nil
			}
			m.inputErr = ""
			return m.dispatch(refactor.PickedRefactor{Refactoring: item.r})
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateRename(msg tea.Msg, rename refactor.Rename) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m.abort()
		case "enter":
			name := m.inputs[0].Value()
			if err := provider.ValidateIdentifier(name); err != nil {
				m.inputErr = name + " is not a valid identifier"
				return m, nil
			}
			m.inputErr = ""
			return m.dispatch(refactor.ExecuteRefactor{
				Provider: rename.Provider,
				Request: provider.Request{
					Kind: model.KindRename,
					Rename: provider.RenameRequest{
						Editor:  rename.Editor,
						Point:   rename.OriginalPoint,
						Symbol:  rename.SymbolAtPoint,
						NewName: name,
					},
				},
			})
		}
	}
	return m.updateInputs(msg)
}

func (m Model) updateFreeform(msg tea.Msg, ff refactor.Freeform) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m.abort()
		case "tab", "down":
			return m.focusInput(m.focus + 1)
		case "shift+tab", "up":
			return m.focusInput(m.focus - 1)
		case "enter", "ctrl+s":
			if key.String() == "enter" && m.focus < len(m.inputs)-1 {
				return m.focusInput(m.focus + 1)
			}
			args, err := m.freeformArgs(ff.Refactoring)
			if err != nil {
				m.inputErr = err.Error()
				return m, nil
			}
			m.inputErr = ""
			return m.dispatch(refactor.ExecuteRefactor{
				Provider: ff.Provider,
				Request: provider.Request{
					Kind: model.KindFreeform,
					Freeform: provider.FreeformRequest{
						Editor:      ff.Editor,
						Range:       ff.OriginalRange,
						Refactoring: ff.Refactoring,
						Args:        args,
					},
				},
			})
		}
	}
	return m.updateInputs(msg)
}

func (m Model) updateConfirm(msg tea.Msg, confirm refactor.Confirm) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y", "enter":
		return m.dispatch(refactor.Apply{Response: confirm.Response})
	case "d", "p":
		return m.dispatch(refactor.LoadDiffPreview{PreviousPhase: confirm, Response: confirm.Response})
	case "n", "N", "esc", "q":
		return m.abort()
	}
	return m, nil
}

func (m Model) updateDiffPreview(msg tea.Msg, preview refactor.DiffPreview) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "b", "backspace":
			return m.dispatch(refactor.BackFromDiffPreview{Phase: preview.PreviousPhase})
		case "q":
			return m.abort()
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// — inputs ——————————————————————————————————————————————————————————————————

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.focus < 0 || m.focus >= len(m.inputs) {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) focusInput(i int) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	i = (i + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Blur()
	m.focus = i
	cmd := m.inputs[i].Focus()
	return m, cmd
}

// freeformArgs collects and validates the form values of r.
func (m Model) freeformArgs(r model.Refactoring) (map[string]string, error) {
	args := make(map[string]string, len(r.Args))
	for i, arg := range r.Args {
		value := m.inputs[i].Value()
		if value == "" {
			value = arg.Default
		}
		if err := arg.Validate(value); err != nil {
			return nil, err
		}
		args[arg.Name] = value
	}
	return args, nil
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.SetValue(value)
	return ti
}

// resetSession starts a new generation so late results of the previous
// session are ignored.
func (m *Model) resetSession() {
	m.cancel()
	m.gen++
	m.sessionID = uuid.NewString()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.closing = false
	m.writing = false
	m.applying = model.Response{}
	m.inputs = nil
	m.focus = 0
	m.inputErr = ""
}
