package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"refactorizer/internal/diffs"
	"refactorizer/internal/model"
	"refactorizer/internal/provider"
	"refactorizer/internal/refactor"
)

var (
	// ErrNoProvider means no provider handles the file's type.
	ErrNoProvider = errors.New("no refactoring provider for this file")
	// ErrNoRefactorings means the provider offered nothing at the location.
	ErrNoRefactorings = errors.New("no refactorings available here")
)

// react runs the follow-up work for an action that has just been reduced.
// It is the only place that starts I/O; results come back as actions.
func (m Model) react(action refactor.Action) (Model, tea.Cmd) {
	switch action := action.(type) {
	case refactor.Errored:
		return m.failed(action)

	case refactor.OpenSession:
		m.resetSession()
		return m, m.fetchRefactoringsCmd()

	case refactor.GotRefactorings:
		return m.gotRefactorings(action)

	case refactor.PickedRefactor, refactor.InlinePickedRefactor:
		if _, inline := action.(refactor.InlinePickedRefactor); inline {
			m.resetSession()
		}
		cmd := m.setupInputs()
		return m, cmd

	case refactor.ExecuteRefactor:
		return m, m.executeCmd(action)

	case refactor.LoadDiffPreview:
		m.load++
		return m, m.loadDiffPreviewCmd(action.Response)

	case refactor.DisplayDiffPreview:
		m.viewport.SetContent(renderDiffs(action.Diffs, m.viewport.Width))
		m.viewport.GotoTop()
		return m, nil

	case refactor.BackFromDiffPreview:
		m.load++
		return m, nil

	case refactor.Apply:
		if m.writing {
			m.opts.Logger.Debug("apply already running", "session", m.sessionID)
			return m, nil
		}
		m.writing = true
		m.applying = action.Response
		m.opts.Logger.Info("applying edits", "session", m.sessionID, "files", len(action.Response.Edits))
		var cmd tea.Cmd
		m, cmd = m.dispatch(refactor.ReportProgress{Payload: model.ProgressPayload{
			Message: "Applying edits",
			Max:     len(action.Response.Edits),
		}})
		return m, tea.Batch(cmd, m.applyFileCmd(0))

	case refactor.Close:
		m.cancel()
		m.gen++
		if m.summary == "" && m.err == nil {
			m.summary = "closed"
		}
		m.opts.Logger.Info("session closed", "session", m.sessionID, "summary", m.summary, "err", m.err)
		return m, tea.Quit
	}
	return m, nil
}

// failed records the error and closes the session it belonged to.
func (m Model) failed(action refactor.Errored) (Model, tea.Cmd) {
	m.err = action
	m.opts.Logger.Error("refactoring step failed",
		"session", m.sessionID,
		"action", action.Failed,
		"err", action.Err,
	)
	if _, open := m.session.(refactor.Open); !open {
		return m, tea.Quit
	}
	if m.closing {
		return m, nil
	}
	m.closing = true
	return m, m.emit(refactor.Close{})
}

func (m Model) gotRefactorings(action refactor.GotRefactorings) (Model, tea.Cmd) {
	if len(action.AvailableRefactorings) == 0 {
		return m, m.emit(refactor.Errored{Failed: refactor.ActionGotRefactorings, Err: ErrNoRefactorings})
	}

	if open, ok := m.session.(refactor.Open); ok && open.UI == refactor.UIRename {
		for _, r := range action.AvailableRefactorings {
			if r.Kind == model.KindRename && !r.Disabled {
				return m, m.emit(refactor.PickedRefactor{Refactoring: r})
			}
		}
		return m, m.emit(refactor.Errored{
			Failed: refactor.ActionGotRefactorings,
			Err:    fmt.Errorf("%w: nothing to rename at %s", ErrNoRefactorings, action.OriginalRange.Start),
		})
	}

	items := make([]list.Item, len(action.AvailableRefactorings))
	for i, r := range action.AvailableRefactorings {
		items[i] = refactoringItem{r: r}
	}
	cmd := m.list.SetItems(items)
	m.list.Select(0)
	return m, cmd
}

// setupInputs builds the form for the phase a pick just entered.
func (m *Model) setupInputs() tea.Cmd {
	open, ok := m.session.(refactor.Open)
	if !ok {
		return nil
	}
	m.focus = 0
	m.inputErr = ""
	switch phase := open.Phase.(type) {
	case refactor.Rename:
		ti := newInput("new name", phase.SymbolAtPoint.Text)
		m.inputs = []textinput.Model{ti}
	case refactor.Freeform:
		m.inputs = make([]textinput.Model, len(phase.Refactoring.Args))
		for i, arg := range phase.Refactoring.Args {
			placeholder := arg.Description
			if arg.Type == model.ArgEnum {
				placeholder = fmt.Sprintf("one of %v", arg.Options)
			}
			m.inputs[i] = newInput(placeholder, arg.Default)
		}
	default:
		m.inputs = nil
	}
	if len(m.inputs) == 0 {
		return nil
	}
	return tea.Batch(m.inputs[0].Focus(), textinput.Blink)
}

// — commands ————————————————————————————————————————————————————————————————

func (m Model) fetchRefactoringsCmd() tea.Cmd {
	gen, ctx, loc := m.gen, m.ctx, m.opts.Location
	detect := m.opts.Detect
	return func() tea.Msg {
		p := detect(loc.Editor)
		if p == nil {
			return epicMsg{gen: gen, action: refactor.Errored{Failed: refactor.ActionOpen, Err: ErrNoProvider}}
		}
		available, err := p.Refactorings(ctx, loc.Editor, loc.Range)
		if err != nil {
			return epicMsg{gen: gen, action: refactor.Errored{Failed: refactor.ActionOpen, Err: err}}
		}
		return epicMsg{gen: gen, action: refactor.GotRefactorings{
			Provider:              p,
			Editor:                loc.Editor,
			OriginalRange:         loc.Range,
			AvailableRefactorings: available,
		}}
	}
}

// inlineCmd opens a session straight into the freeform refactoring
// named by InlineID.
func (m Model) inlineCmd() tea.Cmd {
	gen, ctx, loc, id := m.gen, m.ctx, m.opts.Location, m.opts.InlineID
	detect := m.opts.Detect
	return func() tea.Msg {
		fail := func(err error) tea.Msg {
			return epicMsg{gen: gen, action: refactor.Errored{Failed: refactor.ActionInlinePickedRefactor, Err: err}}
		}
		p := detect(loc.Editor)
		if p == nil {
			return fail(ErrNoProvider)
		}
		available, err := p.Refactorings(ctx, loc.Editor, loc.Range)
		if err != nil {
			return fail(err)
		}
		for _, r := range available {
			if r.ID == id && r.Kind == model.KindFreeform {
				return epicMsg{gen: gen, action: refactor.InlinePickedRefactor{
					Provider:      p,
					Editor:        loc.Editor,
					OriginalRange: loc.Range,
					Refactoring:   r,
				}}
			}
		}
		return fail(fmt.Errorf("%w: no freeform refactoring %q", ErrNoRefactorings, id))
	}
}

func (m Model) executeCmd(action refactor.ExecuteRefactor) tea.Cmd {
	gen, ctx, opts := m.gen, m.ctx, m.opts
	return func() tea.Msg {
		resp, err := provider.Execute(ctx, action.Provider, action.Request)
		if err != nil {
			return epicMsg{gen: gen, action: refactor.Errored{Failed: refactor.ActionExecute, Err: err}}
		}
		if needsConfirm(opts, resp) {
			return epicMsg{gen: gen, action: refactor.ConfirmResponse{Response: resp}}
		}
		return epicMsg{gen: gen, action: refactor.Apply{Response: resp}}
	}
}

// needsConfirm decides whether resp is shown before it is applied.
func needsConfirm(opts Options, resp model.Response) bool {
	if opts.Config.AlwaysConfirm || len(resp.Edits) > opts.Config.ConfirmThreshold {
		return true
	}
	dirty, err := opts.Dirty(resp.Paths())
	if err != nil {
		opts.Logger.Warn("dirty check failed, asking for confirmation", "err", err)
		return true
	}
	return len(dirty) > 0
}

// loadDiffPreviewCmd checks every edit still applies to the file on disk
// before showing it.
func (m Model) loadDiffPreviewCmd(resp model.Response) tea.Cmd {
	gen, load := m.gen, m.load
	return func() tea.Msg {
		for _, fd := range resp.Edits {
			orig, err := os.ReadFile(fd.Path)
			if err != nil {
				return previewMsg{gen: gen, load: load, action: refactor.Errored{Failed: refactor.ActionLoadDiffPreview, Err: err}}
			}
			if _, err := diffs.Apply(orig, fd); err != nil {
				return previewMsg{gen: gen, load: load, action: refactor.Errored{
					Failed: refactor.ActionLoadDiffPreview,
					Err:    fmt.Errorf("%s changed since the refactoring was computed: %w", fd.Path, err),
				}}
			}
		}
		return previewMsg{gen: gen, load: load, action: refactor.DisplayDiffPreview{Diffs: resp.Edits}}
	}
}

func (m Model) applyFileCmd(i int) tea.Cmd {
	gen, apply := m.gen, m.opts.ApplyFile
	fd := m.applying.Edits[i]
	return func() tea.Msg {
		return fileAppliedMsg{gen: gen, index: i, err: apply(fd)}
	}
}

// fileApplied reports progress and moves on to the next file, closing the
// session after the last one.
func (m Model) fileApplied(msg fileAppliedMsg) (tea.Model, tea.Cmd) {
	total := len(m.applying.Edits)
	if msg.err != nil {
		err := msg.err
		if msg.index > 0 {
			written := m.applying.Paths()[:msg.index]
			err = fmt.Errorf("%d of %d files already written (%s): %w",
				msg.index, total, strings.Join(written, ", "), msg.err)
		}
		return m.dispatch(refactor.Errored{Failed: refactor.ActionApply, Err: err})
	}

	m, cmd := m.dispatch(refactor.ReportProgress{Payload: model.ProgressPayload{
		Message: "Applied " + m.applying.Edits[msg.index].Path,
		Value:   msg.index + 1,
		Max:     total,
	}})
	if msg.index+1 < total {
		return m, tea.Batch(cmd, m.applyFileCmd(msg.index+1))
	}
	m.summary = diffs.Summary(m.applying.Edits)
	m.closing = true
	return m, tea.Batch(cmd, m.emit(refactor.Close{}))
}
