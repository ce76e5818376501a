package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"refactorizer/internal/diffs"
	"refactorizer/internal/model"
	"refactorizer/internal/refactor"
)

// — styles ——————————————————————————————————————————————————————————————————

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginLeft(2)

	dimStyle  = lipgloss.NewStyle().Faint(true)
	boldStyle = lipgloss.NewStyle().Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	hunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	helpStyle = lipgloss.NewStyle().
			Faint(true).
			PaddingLeft(2)

	labelStyle = lipgloss.NewStyle().Faint(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 3).
			Width(64)

	confirmModalStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("214")).
				Padding(1, 3).
				Width(64)
)

// — list item ———————————————————————————————————————————————————————————————

type refactoringItem struct {
	r model.Refactoring
}

func (i refactoringItem) Title() string {
	if i.r.Disabled {
		return dimStyle.Render(i.r.Title())
	}
	return i.r.Title()
}

func (i refactoringItem) Description() string { return i.r.Description }
func (i refactoringItem) FilterValue() string { return i.r.Title() }

// — view ————————————————————————————————————————————————————————————————————

func (m Model) View() string {
	if m.width == 0 {
		return ""
	}

	open, ok := m.session.(refactor.Open)
	if !ok {
		return m.renderClosed()
	}

	var body, help string
	switch phase := open.Phase.(type) {
	case refactor.GetRefactorings:
		body = m.renderWaiting("Finding refactorings at " + m.location())
		help = "Esc cancel"
	case refactor.Pick:
		body = m.list.View()
		if m.inputErr != "" {
			body += "\n" + errStyle.Render("  "+m.inputErr)
		}
		help = "↑/↓ navigate   Enter choose   Esc cancel"
	case refactor.Rename:
		return m.renderOver(modalStyle.Render(m.renderRename(phase)))
	case refactor.Freeform:
		return m.renderOver(modalStyle.Render(m.renderFreeform(phase)))
	case refactor.Execute:
		body = m.renderWaiting("Computing changes")
		help = "Esc cancel"
	case refactor.Confirm:
		return m.renderOver(confirmModalStyle.Render(m.renderConfirm(phase)))
	case refactor.DiffPreview:
		if phase.Loading {
			body = m.renderWaiting("Loading diff preview")
		} else {
			body = m.viewport.View()
		}
		help = "↑/↓ scroll   Esc back   q cancel"
	case refactor.Progress:
		body = m.renderProgress(phase.Payload)
		help = "Ctrl+C abort"
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderHelp(help))
}

func (m Model) location() string {
	loc := m.opts.Location
	return filepath.Base(loc.Editor.Path) + ":" + loc.Range.String()
}

func (m Model) renderWaiting(what string) string {
	return lipgloss.NewStyle().Padding(1, 2).Render(
		spinnerFrames[m.spinnerFrame] + " " + what + "…",
	)
}

func (m Model) renderClosed() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(errStyle.Render("Error: " + m.err.Error()))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(m.summary)
}

func (m Model) renderHelp(text string) string {
	sep := dimStyle.Render(strings.Repeat("─", m.width))
	return sep + "\n" + helpStyle.Render(text)
}

func (m Model) renderOver(modal string) string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal,
		lipgloss.WithWhitespaceBackground(lipgloss.Color("0")),
	)
}

func (m Model) renderRename(phase refactor.Rename) string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("Rename Symbol") + "\n\n")
	b.WriteString(labelStyle.Render("Symbol   ") + phase.SymbolAtPoint.Text + "\n")
	b.WriteString(labelStyle.Render("At       ") + filepath.Base(phase.Editor.Path) + ":" + phase.OriginalPoint.String() + "\n\n")
	b.WriteString("New name\n")
	if len(m.inputs) > 0 {
		b.WriteString(m.inputs[0].View() + "\n")
	}
	if m.inputErr != "" {
		b.WriteString("\n" + errStyle.Render(m.inputErr) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("Enter rename · Esc cancel"))
	return b.String()
}

func (m Model) renderFreeform(phase refactor.Freeform) string {
	r := phase.Refactoring
	var b strings.Builder
	b.WriteString(boldStyle.Render(r.Name) + "\n")
	if r.Description != "" {
		b.WriteString(dimStyle.Render(r.Description) + "\n")
	}
	b.WriteString("\n")
	for i, arg := range r.Args {
		label := arg.Name
		if i == m.focus {
			label = okStyle.Render("› " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(label + "\n")
		if i < len(m.inputs) {
			b.WriteString(m.inputs[i].View() + "\n")
		}
	}
	if len(r.Args) == 0 {
		b.WriteString(dimStyle.Render("No arguments.") + "\n")
	}
	if m.inputErr != "" {
		b.WriteString("\n" + errStyle.Render(m.inputErr) + "\n")
	}
	b.WriteString("\n" + dimStyle.Render("Tab next field · Enter run · Esc cancel"))
	return b.String()
}

func (m Model) renderConfirm(phase refactor.Confirm) string {
	edits := phase.Response.Edits
	var b strings.Builder
	b.WriteString(warnStyle.Render("Apply Changes?") + "\n\n")
	b.WriteString(diffs.Summary(edits) + "\n\n")
	for _, fd := range edits {
		b.WriteString(fmt.Sprintf("%s %s %s\n",
			okStyle.Render(fmt.Sprintf("+%d", fd.Added)),
			errStyle.Render(fmt.Sprintf("-%d", fd.Removed)),
			m.relative(fd.Path),
		))
	}
	b.WriteString("\n" + dimStyle.Render("y/Enter apply · d preview diff · n/Esc cancel"))
	return b.String()
}

func (m Model) renderProgress(p model.ProgressPayload) string {
	var b strings.Builder
	b.WriteString(boldStyle.Render("Applying changes") + "\n\n")
	b.WriteString(m.progress.ViewAs(p.Fraction()) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d  %s", p.Value, p.Max, p.Message)))
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}

func (m Model) relative(path string) string {
	if rel, err := filepath.Rel(m.opts.Location.Editor.Dir, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}

// renderDiffs renders the pending edits as markdown diff blocks for the
// preview viewport.
func renderDiffs(fds []model.FileDiff, width int) string {
	if width <= 0 {
		width = 80
	}
	var md strings.Builder
	for _, fd := range fds {
		fmt.Fprintf(&md, "#### `%s`\n\n+%d -%d\n\n```diff\n%s", fd.Path, fd.Added, fd.Removed, fd.Unified)
		if !strings.HasSuffix(fd.Unified, "\n") {
			md.WriteString("\n")
		}
		md.WriteString("```\n\n")
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return colourDiffs(fds)
	}
	out, err := r.Render(md.String())
	if err != nil {
		return colourDiffs(fds)
	}
	return strings.TrimRight(out, "\n")
}

// colourDiffs is the plain fallback of renderDiffs.
func colourDiffs(fds []model.FileDiff) string {
	var b strings.Builder
	for _, fd := range fds {
		b.WriteString(boldStyle.Render(fd.Path) + "  " +
			dimStyle.Render(fmt.Sprintf("+%d -%d", fd.Added, fd.Removed)) + "\n")
		for _, h := range fd.Hunks {
			b.WriteString(hunkStyle.Render(fmt.Sprintf("@@ -%d,%d +%d,%d @@ %s",
				h.OrigStart, h.OrigLines, h.NewStart, h.NewLines, h.Section)) + "\n")
			for _, line := range h.Body {
				switch {
				case strings.HasPrefix(line, "+"):
					b.WriteString(okStyle.Render(line))
				case strings.HasPrefix(line, "-"):
					b.WriteString(errStyle.Render(line))
				default:
					b.WriteString(line)
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
