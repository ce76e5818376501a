package refactor

import "fmt"

// InvariantError is the panic value Reduce raises when an action arrives in a
// session that cannot accept it. It signals a sequencing bug in the caller.
type InvariantError struct {
	Action  ActionType
	Session string
	Reason  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("refactor: invariant violated: %s in %s: %s", e.Action, e.Session, e.Reason)
}

func invariant(cond bool, action ActionType, state Session, format string, args ...any) {
	if cond {
		return
	}
	panic(&InvariantError{
		Action:  action,
		Session: Describe(state),
		Reason:  fmt.Sprintf(format, args...),
	})
}
