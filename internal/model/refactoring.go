package model

import "fmt"

// Kind classifies a refactoring and decides which phase collects its input.
type Kind string

const (
	KindRename   Kind = "rename"
	KindFreeform Kind = "freeform"
)

// Symbol is the identifier a rename applies to.
type Symbol struct {
	Text  string
	Range Range
}

// ArgType is the input widget a freeform argument needs.
type ArgType string

const (
	ArgString  ArgType = "string"
	ArgBoolean ArgType = "boolean"
	ArgEnum    ArgType = "enum"
)

// FreeformArg describes one parameter of a freeform refactoring.
type FreeformArg struct {
	Name        string
	Description string
	Type        ArgType
	Default     string
	Options     []string // enum values
}

// Validate checks a user supplied value against the argument's type.
func (a FreeformArg) Validate(value string) error {
	switch a.Type {
	case ArgBoolean:
		if value != "true" && value != "false" {
			return fmt.Errorf("%s: expected true or false", a.Name)
		}
	case ArgEnum:
		for _, opt := range a.Options {
			if opt == value {
				return nil
			}
		}
		return fmt.Errorf("%s: expected one of %v", a.Name, a.Options)
	}
	return nil
}

// Refactoring is one entry of the list a provider offers for a location.
// Rename refactorings carry SymbolAtPoint; freeform ones carry the rest.
type Refactoring struct {
	Kind          Kind
	SymbolAtPoint Symbol

	ID          string
	Name        string
	Description string
	Range       Range
	Disabled    bool
	Args        []FreeformArg
}

// Title is the label shown in pick lists.
func (r Refactoring) Title() string {
	if r.Kind == KindRename {
		return fmt.Sprintf("Rename %q", r.SymbolAtPoint.Text)
	}
	return r.Name
}

// FileDiff is the pending change to one file, kept both as unified text and
// as counted hunks for rendering.
type FileDiff struct {
	Path    string // absolute path of the file being changed
	OldName string
	NewName string
	Unified string
	Added   int
	Removed int
	Hunks   []Hunk
}

// Hunk is one contiguous change region of a FileDiff.
type Hunk struct {
	OrigStart int // 1-based
	OrigLines int
	NewStart  int
	NewLines  int
	Section   string
	Body      []string // lines with their ' ', '+', '-' prefix
}

// Response is what a provider returns for an executed refactoring: the edits
// it would make, not yet written to disk.
type Response struct {
	Edits []FileDiff
}

// Paths lists the files a response touches.
func (r Response) Paths() []string {
	out := make([]string, 0, len(r.Edits))
	for _, e := range r.Edits {
		out = append(out, e.Path)
	}
	return out
}

// ProgressPayload reports how far applying a response has got.
type ProgressPayload struct {
	Message string
	Value   int
	Max     int
}

// Fraction returns progress in [0, 1].
func (p ProgressPayload) Fraction() float64 {
	if p.Max <= 0 {
		return 0
	}
	f := float64(p.Value) / float64(p.Max)
	if f > 1 {
		return 1
	}
	return f
}
