package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"refactorizer/internal/model"
	"refactorizer/internal/outline"
)

// Go offers refactorings for Go files: renames through gopls, gopls code
// actions, and gofmt rewrite rules.
type Go struct {
	opts  Options
	gopls gopls
	gofmt gofmt
}

// NewGo returns a Go provider running the tools named in opts.
func NewGo(opts Options) *Go {
	return newGo(opts, execRun)
}

func newGo(opts Options, run runFunc) *Go {
	return &Go{
		opts:  opts,
		gopls: gopls{path: opts.Gopls, run: run},
		gofmt: gofmt{path: opts.Gofmt, run: run},
	}
}

func (g *Go) Name() string { return "go" }

func (g *Go) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.opts.Timeout)
}

// Refactorings lists what applies at rng. gopls failures only drop its code
// actions; a missing or unparsable file is an error.
func (g *Go) Refactorings(ctx context.Context, editor model.Editor, rng model.Range) ([]model.Refactoring, error) {
	src, err := os.ReadFile(editor.Path)
	if err != nil {
		return nil, fmt.Errorf("go provider: read %s: %w", editor.Path, err)
	}
	idx, err := outline.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("go provider: %w", err)
	}

	var out []model.Refactoring
	if sym, ok := idx.IdentifierAt(rng.Start); ok && sym.Name != "_" {
		out = append(out, model.Refactoring{
			Kind:          model.KindRename,
			ID:            "rename",
			Name:          "Rename",
			Description:   enclosing(idx, sym.Range),
			Range:         sym.Range,
			SymbolAtPoint: model.Symbol{Text: sym.Name, Range: sym.Range},
		})
	}

	tctx, cancel := g.withTimeout(ctx)
	defer cancel()
	actions, err := g.gopls.codeActions(tctx, editor, rng)
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	out = append(out, actions...)

	return append(out, rewriteRefactoring(rng)), nil
}

// enclosing describes where a symbol sits, e.g. "in func main".
func enclosing(idx *outline.Index, rng model.Range) string {
	if fn, ok := idx.Ranges.FindParentFunction(rng); ok {
		return "in func " + fn.Name
	}
	if typ, ok := idx.Ranges.FindStructuredObjectParent(rng); ok {
		return "in type " + typ.Name
	}
	if v, ok := idx.Ranges.FindOverlappingVariable(rng); ok {
		return "in " + string(v.Kind) + " " + v.Name
	}
	return "at package level"
}

// Rename computes the edits for renaming req.Symbol.
func (g *Go) Rename(ctx context.Context, req RenameRequest) (model.Response, error) {
	if err := ValidateIdentifier(req.NewName); err != nil {
		return model.Response{}, err
	}
	if req.NewName == req.Symbol.Text {
		return model.Response{}, ErrNoChanges
	}
	tctx, cancel := g.withTimeout(ctx)
	defer cancel()
	return g.gopls.rename(tctx, req)
}

// Refactor computes the edits for a freeform refactoring.
func (g *Go) Refactor(ctx context.Context, req FreeformRequest) (model.Response, error) {
	tctx, cancel := g.withTimeout(ctx)
	defer cancel()

	switch {
	case req.Refactoring.ID == RewriteID:
		return g.gofmt.rewrite(tctx, req)
	case strings.HasPrefix(req.Refactoring.ID, "refactor."):
		return g.gopls.execCodeAction(tctx, req)
	default:
		return model.Response{}, fmt.Errorf("%w: %q", ErrUnknownRefactoring, req.Refactoring.ID)
	}
}
