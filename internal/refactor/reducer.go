package refactor

import (
	"refactorizer/internal/model"
	"refactorizer/internal/provider"
)

// Reduce returns the session that follows state once action is applied.
// A nil state is Closed. Errored and unrecognised actions return state as is.
// An action that the current session cannot accept panics with *InvariantError.
func Reduce(state Session, action Action) Session {
	if state == nil {
		state = Closed{}
	}
	if _, failed := action.(Errored); failed {
		return state
	}

	switch action := action.(type) {
	case OpenSession:
		return open(state, action)
	case GotRefactorings:
		return gotRefactorings(state, action)
	case Close:
		return closeSession(state)
	case BackFromDiffPreview:
		return backFromDiffPreview(state, action)
	case PickedRefactor:
		return pickedRefactor(state, action)
	case InlinePickedRefactor:
		return inlinePickedRefactor(state, action)
	case ExecuteRefactor:
		return execute(state)
	case ConfirmResponse:
		return confirm(state, action)
	case LoadDiffPreview:
		return loadDiffPreview(state, action)
	case DisplayDiffPreview:
		return displayDiffPreview(state, action)
	case ReportProgress:
		return progress(state, action)
	default:
		return state
	}
}

// mustBeOpen returns state as Open or panics.
func mustBeOpen(state Session, action ActionType) Open {
	open, ok := state.(Open)
	invariant(ok, action, state, "session is not open")
	return open
}

func open(state Session, action OpenSession) Session {
	_, closed := state.(Closed)
	invariant(closed, ActionOpen, state, "session is already open")
	return Open{UI: action.UI, Phase: GetRefactorings{}}
}

func gotRefactorings(state Session, action GotRefactorings) Session {
	cur := mustBeOpen(state, ActionGotRefactorings)
	_, waiting := cur.Phase.(GetRefactorings)
	invariant(waiting, ActionGotRefactorings, state, "expected phase %s", PhaseGetRefactorings)

	return Open{
		UI: cur.UI,
		Phase: Pick{
			Provider:              action.Provider,
			Editor:                action.Editor,
			OriginalRange:         action.OriginalRange,
			AvailableRefactorings: action.AvailableRefactorings,
		},
	}
}

func closeSession(state Session) Session {
	mustBeOpen(state, ActionClose)
	return Closed{}
}

func backFromDiffPreview(state Session, action BackFromDiffPreview) Session {
	cur := mustBeOpen(state, ActionBackFromDiffPreview)
	return Open{UI: cur.UI, Phase: action.Phase}
}

func pickedRefactor(state Session, action PickedRefactor) Session {
	cur := mustBeOpen(state, ActionPickedRefactor)
	pick, ok := cur.Phase.(Pick)
	invariant(ok, ActionPickedRefactor, state, "expected phase %s", PhasePick)

	return Open{
		UI:    cur.UI,
		Phase: refactoringPhase(ActionPickedRefactor, state, action.Refactoring, pick.Provider, pick.Editor, pick.OriginalRange),
	}
}

func inlinePickedRefactor(state Session, action InlinePickedRefactor) Session {
	_, closed := state.(Closed)
	invariant(closed, ActionInlinePickedRefactor, state, "session is already open")
	invariant(action.Refactoring.Kind == model.KindFreeform, ActionInlinePickedRefactor, state,
		"inline refactorings must be %s, got %q", model.KindFreeform, action.Refactoring.Kind)

	return Open{
		UI:    UIGeneric,
		Phase: refactoringPhase(ActionInlinePickedRefactor, state, action.Refactoring, action.Provider, action.Editor, action.OriginalRange),
	}
}

// refactoringPhase maps a chosen refactoring to the phase that collects its input.
func refactoringPhase(
	action ActionType,
	state Session,
	refactoring model.Refactoring,
	p provider.Provider,
	editor model.Editor,
	originalRange model.Range,
) Phase {
	switch refactoring.Kind {
	case model.KindRename:
		return Rename{
			Provider:      p,
			Editor:        editor,
			OriginalPoint: originalRange.Start,
			SymbolAtPoint: refactoring.SymbolAtPoint,
		}
	case model.KindFreeform:
		return Freeform{
			Provider:      p,
			Editor:        editor,
			OriginalRange: originalRange,
			Refactoring:   refactoring,
		}
	}
	invariant(false, action, state, "unexpected refactoring kind %q", refactoring.Kind)
	return nil
}

func execute(state Session) Session {
	cur := mustBeOpen(state, ActionExecute)
	return Open{UI: cur.UI, Phase: Execute{}}
}

func confirm(state Session, action ConfirmResponse) Session {
	cur := mustBeOpen(state, ActionConfirm)
	return Open{UI: cur.UI, Phase: Confirm{Response: action.Response}}
}

func loadDiffPreview(state Session, action LoadDiffPreview) Session {
	cur := mustBeOpen(state, ActionLoadDiffPreview)
	return Open{
		UI: cur.UI,
		Phase: DiffPreview{
			Loading:       true,
			Diffs:         []model.FileDiff{},
			PreviousPhase: action.PreviousPhase,
		},
	}
}

func displayDiffPreview(state Session, action DisplayDiffPreview) Session {
	cur := mustBeOpen(state, ActionDisplayDiffPreview)
	preview, ok := cur.Phase.(DiffPreview)
	invariant(ok, ActionDisplayDiffPreview, state, "expected phase %s", PhaseDiffPreview)

	// preview is a copy; the previous state's phase is left untouched.
	preview.Loading = false
	preview.Diffs = action.Diffs
	return Open{UI: cur.UI, Phase: preview}
}

func progress(state Session, action ReportProgress) Session {
	cur := mustBeOpen(state, ActionProgress)
	return Open{UI: cur.UI, Phase: Progress{Payload: action.Payload}}
}
