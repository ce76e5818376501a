package refactor

import (
	"refactorizer/internal/model"
	"refactorizer/internal/provider"
)

// ActionType discriminates actions.
type ActionType string

const (
	ActionOpen                 ActionType = "open"
	ActionGotRefactorings      ActionType = "got-refactorings"
	ActionClose                ActionType = "close"
	ActionBackFromDiffPreview  ActionType = "back-from-diff-preview"
	ActionPickedRefactor       ActionType = "picked-refactor"
	ActionInlinePickedRefactor ActionType = "inline-picked-refactor"
	ActionExecute              ActionType = "execute"
	ActionConfirm              ActionType = "confirm"
	ActionLoadDiffPreview      ActionType = "load-diff-preview"
	ActionDisplayDiffPreview   ActionType = "display-diff-preview"
	ActionProgress             ActionType = "progress"
	ActionApply                ActionType = "apply"
)

// Action is anything dispatched to Reduce. Types the reducer does not know
// leave the session untouched.
type Action interface {
	Type() ActionType
}

// OpenSession starts a normal session from the given UI.
type OpenSession struct {
	UI UI
}

// GotRefactorings delivers the provider's answer for the cursor or selection.
type GotRefactorings struct {
	Provider              provider.Provider
	Editor                model.Editor
	OriginalRange         model.Range
	AvailableRefactorings []model.Refactoring
}

// Close ends the session.
type Close struct{}

// BackFromDiffPreview restores Phase, normally DiffPreview.PreviousPhase.
type BackFromDiffPreview struct {
	Phase Phase
}

// PickedRefactor is the user's choice from the Pick list.
type PickedRefactor struct {
	Refactoring model.Refactoring
}

// InlinePickedRefactor opens a session straight into a freeform refactoring.
type InlinePickedRefactor struct {
	Provider      provider.Provider
	Editor        model.Editor
	OriginalRange model.Range
	Refactoring   model.Refactoring
}

// ExecuteRefactor asks for the edits of Request. Request is read by the
// orchestration layer only.
type ExecuteRefactor struct {
	Provider provider.Provider
	Request  provider.Request
}

// ConfirmResponse asks the user to accept Response before it is applied.
type ConfirmResponse struct {
	Response model.Response
}

// LoadDiffPreview switches to the diff preview while Response is rendered.
type LoadDiffPreview struct {
	PreviousPhase Phase
	Response      model.Response
}

// DisplayDiffPreview delivers the rendered diffs.
type DisplayDiffPreview struct {
	Diffs []model.FileDiff
}

// ReportProgress reports edits being applied.
type ReportProgress struct {
	Payload model.ProgressPayload
}

// Apply writes Response to disk. The reducer ignores it; progress and the
// final Close are reported as their own actions.
type Apply struct {
	Response model.Response
}

// Errored marks a failed step. The reducer leaves the session as it is and
// the orchestration layer decides what corrective action follows.
type Errored struct {
	Failed ActionType
	Err    error
}

func (OpenSession) Type() ActionType          { return ActionOpen }
func (GotRefactorings) Type() ActionType      { return ActionGotRefactorings }
func (Close) Type() ActionType                { return ActionClose }
func (BackFromDiffPreview) Type() ActionType  { return ActionBackFromDiffPreview }
func (PickedRefactor) Type() ActionType       { return ActionPickedRefactor }
func (InlinePickedRefactor) Type() ActionType { return ActionInlinePickedRefactor }
func (ExecuteRefactor) Type() ActionType      { return ActionExecute }
func (ConfirmResponse) Type() ActionType      { return ActionConfirm }
func (LoadDiffPreview) Type() ActionType      { return ActionLoadDiffPreview }
func (DisplayDiffPreview) Type() ActionType   { return ActionDisplayDiffPreview }
func (ReportProgress) Type() ActionType       { return ActionProgress }
func (Apply) Type() ActionType                { return ActionApply }
func (e Errored) Type() ActionType            { return e.Failed }

func (e Errored) Error() string {
	if e.Err == nil {
		return string(e.Failed) + ": failed"
	}
	return string(e.Failed) + ": " + e.Err.Error()
}

func (e Errored) Unwrap() error { return e.Err }
