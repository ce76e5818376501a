package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/token"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"refactorizer/internal/model"
)

var (
	// ErrInvalidIdentifier rejects rename targets that are not Go identifiers.
	ErrInvalidIdentifier = errors.New("provider: invalid identifier")
	// ErrNoChanges means a refactoring ran but produced no edits.
	ErrNoChanges = errors.New("provider: refactoring produced no changes")
	// ErrUnknownRefactoring means a request names a refactoring the provider never offered.
	ErrUnknownRefactoring = errors.New("provider: unknown refactoring")
)

// Provider lists and computes refactorings for a buffer. Computing never
// writes to disk; the returned Response is applied separately.
type Provider interface {
	Name() string
	Refactorings(ctx context.Context, editor model.Editor, rng model.Range) ([]model.Refactoring, error)
	Rename(ctx context.Context, req RenameRequest) (model.Response, error)
	Refactor(ctx context.Context, req FreeformRequest) (model.Response, error)
}

// RenameRequest renames the symbol at Point to NewName.
type RenameRequest struct {
	Editor  model.Editor
	Point   model.Point
	Symbol  model.Symbol
	NewName string
}

// FreeformRequest runs a freeform refactoring with user supplied arguments.
type FreeformRequest struct {
	Editor      model.Editor
	Range       model.Range
	Refactoring model.Refactoring
	Args        map[string]string
}

// Request is either a rename or a freeform request, selected by Kind.
type Request struct {
	Kind     model.Kind
	Rename   RenameRequest
	Freeform FreeformRequest
}

// Execute dispatches req to the matching Provider method.
func Execute(ctx context.Context, p Provider, req Request) (model.Response, error) {
	var (
		resp model.Response
		err  error
	)
	switch req.Kind {
	case model.KindRename:
		resp, err = p.Rename(ctx, req.Rename)
	case model.KindFreeform:
		resp, err = p.Refactor(ctx, req.Freeform)
	default:
		return model.Response{}, fmt.Errorf("%w: kind %q", ErrUnknownRefactoring, req.Kind)
	}
	if err != nil {
		return model.Response{}, err
	}
	if len(resp.Edits) == 0 {
		return model.Response{}, ErrNoChanges
	}
	return resp, nil
}

// ValidateIdentifier checks that name can replace a Go identifier.
func ValidateIdentifier(name string) error {
	if !token.IsIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// Options configures the tools providers run.
type Options struct {
	Gopls   string
	Gofmt   string
	Timeout time.Duration
}

// Detect returns the Provider for the editor's file type, or nil when no
// provider handles it.
func Detect(editor model.Editor, opts Options) Provider {
	switch strings.ToLower(filepath.Ext(editor.Path)) {
	case ".go":
		return NewGo(opts)
	default:
		return nil
	}
}

// runFunc runs a tool in dir and returns its stdout.
type runFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%s %s: %s", name, firstArg(args), trimOutput(msg))
	}
	return out, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func trimOutput(s string) string {
	if len(s) > 200 {
		return s[:200] + "…"
	}
	return s
}
