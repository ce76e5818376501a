package refactor

import (
	"refactorizer/internal/model"
	"refactorizer/internal/provider"
)

// UI names the presentation that launched a session.
type UI string

const (
	UIGeneric UI = "generic"
	UIRename  UI = "rename"
)

// Session is either Closed or Open.
type Session interface {
	isSession()
}

// Closed means no refactoring is in progress.
type Closed struct{}

// Open is an active session with exactly one phase.
type Open struct {
	UI    UI
	Phase Phase
}

func (Closed) isSession() {}
func (Open) isSession()   {}

// PhaseType names a phase for logging and error messages.
type PhaseType string

const (
	PhaseGetRefactorings PhaseType = "get-refactorings"
	PhasePick            PhaseType = "pick"
	PhaseRename          PhaseType = "rename"
	PhaseFreeform        PhaseType = "freeform"
	PhaseExecute         PhaseType = "execute"
	PhaseConfirm         PhaseType = "confirm"
	PhaseDiffPreview     PhaseType = "diff-preview"
	PhaseProgress        PhaseType = "progress"
)

// Phase is the step of the flow an open session is in.
type Phase interface {
	PhaseType() PhaseType
}

// GetRefactorings waits for the provider's list of refactorings.
type GetRefactorings struct{}

// Pick waits for the user to choose one of AvailableRefactorings.
type Pick struct {
	Provider              provider.Provider
	Editor                model.Editor
	OriginalRange         model.Range
	AvailableRefactorings []model.Refactoring
}

// Rename collects a new name for SymbolAtPoint.
type Rename struct {
	Provider      provider.Provider
	Editor        model.Editor
	OriginalPoint model.Point
	SymbolAtPoint model.Symbol
}

// Freeform collects the arguments of a freeform refactoring.
type Freeform struct {
	Provider      provider.Provider
	Editor        model.Editor
	OriginalRange model.Range
	Refactoring   model.Refactoring
}

// Execute waits for the provider to compute the edits.
type Execute struct{}

// Confirm holds computed edits until the user accepts or rejects them.
type Confirm struct {
	Response model.Response
}

// DiffPreview shows the pending edits. PreviousPhase is restored on back.
type DiffPreview struct {
	Loading       bool
	Diffs         []model.FileDiff
	PreviousPhase Phase
}

// Progress reports edits being applied.
type Progress struct {
	Payload model.ProgressPayload
}

func (GetRefactorings) PhaseType() PhaseType { return PhaseGetRefactorings }
func (Pick) PhaseType() PhaseType            { return PhasePick }
func (Rename) PhaseType() PhaseType          { return PhaseRename }
func (Freeform) PhaseType() PhaseType        { return PhaseFreeform }
func (Execute) PhaseType() PhaseType         { return PhaseExecute }
func (Confirm) PhaseType() PhaseType         { return PhaseConfirm }
func (DiffPreview) PhaseType() PhaseType     { return PhaseDiffPreview }
func (Progress) PhaseType() PhaseType        { return PhaseProgress }

// Describe renders a session as "closed" or "open(<ui>/<phase>)".
func Describe(s Session) string {
	switch s := s.(type) {
	case nil, Closed:
		return "closed"
	case Open:
		if s.Phase == nil {
			return "open(" + string(s.UI) + "/<nil>)"
		}
		return "open(" + string(s.UI) + "/" + string(s.Phase.PhaseType()) + ")"
	default:
		return "unknown"
	}
}
