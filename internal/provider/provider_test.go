package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refactorizer/internal/model"
)

const codeActionOutput = `edit	"Extract function" [refactor.extract.function]
edit	"Extract variable" [refactor.extract.variable]
edit	"Extract variable" [refactor.extract.variable]
command	"Browse documentation for package demo" [source.doc]
edit	"Inline call to \"sum\"" [refactor.inline.call]
not a code action line
`

const source = `package demo

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
`

// recorder is a runFunc that records calls and answers with canned output.
type recorder struct {
	calls  [][]string
	output map[string]string
	err    error
}

func (r *recorder) run(_ context.Context, dir, name string, args ...string) ([]byte, error) {
	r.calls = append(r.calls, append([]string{dir, name}, args...))
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.output[firstArg(args)]), nil
}

func writeSource(t *testing.T) model.Editor {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sum.go")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return model.Editor{Path: path, Dir: dir}
}

func cursor(row, col int) model.Range {
	p := model.Point{Row: row, Column: col}
	return model.Range{Start: p, End: p}
}

func TestSpan(t *testing.T) {
	assert.Equal(t, "/a.go:3:5", span("/a.go", cursor(2, 4)))
	assert.Equal(t, "/a.go:3:5-4:1", span("/a.go", model.Range{
		Start: model.Point{Row: 2, Column: 4},
		End:   model.Point{Row: 3, Column: 0},
	}))
}

func TestParseCodeActions(t *testing.T) {
	rng := cursor(3, 1)
	got := parseCodeActions(codeActionOutput, rng)

	require.Len(t, got, 3)
	assert.Equal(t, model.Refactoring{
		Kind:        model.KindFreeform,
		ID:          "refactor.extract.function",
		Name:        "Extract function",
		Description: "gopls refactor.extract.function",
		Range:       rng,
	}, got[0])
	assert.Equal(t, "Extract variable", got[1].Name)
	assert.Equal(t, `Inline call to "sum"`, got[2].Name)
}

func TestRefactoringsOnIdentifier(t *testing.T) {
	editor := writeSource(t)
	rec := &recorder{output: map[string]string{"codeaction": codeActionOutput}}
	g := newGo(Options{Gopls: "gopls", Gofmt: "gofmt", Timeout: time.Second}, rec.run)

	got, err := g.Refactorings(context.Background(), editor, cursor(3, 2))
	require.NoError(t, err)

	require.Len(t, got, 5)
	rename := got[0]
	assert.Equal(t, model.KindRename, rename.Kind)
	assert.Equal(t, "total", rename.SymbolAtPoint.Text)
	assert.Equal(t, "in func sum", rename.Description)
	assert.Equal(t, "refactor.extract.function", got[1].ID)
	assert.Equal(t, RewriteID, got[4].ID)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{editor.Dir, "gopls", "codeaction", editor.Path + ":4:3"}, rec.calls[0])
}

func TestRefactoringsWithoutGopls(t *testing.T) {
	editor := writeSource(t)
	rec := &recorder{err: errors.New("gopls: executable file not found")}
	g := newGo(Options{Gopls: "gopls", Gofmt: "gofmt"}, rec.run)

	got, err := g.Refactorings(context.Background(), editor, cursor(1, 0))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, RewriteID, got[0].ID)
}

func TestRefactoringsMissingFile(t *testing.T) {
	g := newGo(Options{}, (&recorder{}).run)
	_, err := g.Refactorings(context.Background(), model.Editor{Path: "/nope/x.go"}, cursor(0, 0))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRename(t *testing.T) {
	editor := model.Editor{Path: "/src/demo/sum.go", Dir: "/src/demo"}
	rec := &recorder{output: map[string]string{"rename": "--- /src/demo/sum.go.orig\n+++ /src/demo/sum.go\n@@ -1,1 +1,1 @@\n-a\n+b\n"}}
	g := newGo(Options{Gopls: "/bin/gopls"}, rec.run)

	resp, err := g.Rename(context.Background(), RenameRequest{
		Editor:  editor,
		Point:   model.Point{Row: 3, Column: 1},
		Symbol:  model.Symbol{Text: "total"},
		NewName: "acc",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/src/demo/sum.go"}, resp.Paths())
	assert.Equal(t, []string{"/src/demo", "/bin/gopls", "rename", "-d", "/src/demo/sum.go:4:2", "acc"}, rec.calls[0])
}

func TestRenameRejects(t *testing.T) {
	rec := &recorder{}
	g := newGo(Options{}, rec.run)

	_, err := g.Rename(context.Background(), RenameRequest{NewName: "1abc"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = g.Rename(context.Background(), RenameRequest{Symbol: model.Symbol{Text: "x"}, NewName: "x"})
	assert.ErrorIs(t, err, ErrNoChanges)

	assert.Empty(t, rec.calls)
}

func TestRefactorRewrite(t *testing.T) {
	editor := model.Editor{Path: "/src/demo/sum.go", Dir: "/src/demo"}
	rec := &recorder{output: map[string]string{"-r": ""}}
	g := newGo(Options{Gofmt: "gofmt"}, rec.run)
	r := rewriteRefactoring(cursor(0, 0))

	_, err := g.Refactor(context.Background(), FreeformRequest{
		Editor:      editor,
		Refactoring: r,
		Args:        map[string]string{"pattern": "a[b:len(a)]", "replacement": "a[b:]", "simplify": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/demo", "gofmt", "-r", "a[b:len(a)] -> a[b:]", "-s", "-d", "/src/demo/sum.go"}, rec.calls[0])

	_, err = g.Refactor(context.Background(), FreeformRequest{
		Editor:      editor,
		Refactoring: r,
		Args:        map[string]string{"pattern": "x", "replacement": "y", "simplify": "maybe"},
	})
	assert.ErrorContains(t, err, "simplify")

	_, err = g.Refactor(context.Background(), FreeformRequest{Editor: editor, Refactoring: r, Args: map[string]string{}})
	assert.ErrorContains(t, err, "required")
	assert.Len(t, rec.calls, 1)
}

func TestRefactorCodeAction(t *testing.T) {
	editor := model.Editor{Path: "/src/demo/sum.go", Dir: "/src/demo"}
	rec := &recorder{}
	g := newGo(Options{Gopls: "gopls"}, rec.run)

	_, err := g.Refactor(context.Background(), FreeformRequest{
		Editor: editor,
		Range: model.Range{
			Start: model.Point{Row: 3, Column: 1},
			End:   model.Point{Row: 3, Column: 11},
		},
		Refactoring: model.Refactoring{Kind: model.KindFreeform, ID: "refactor.extract.variable", Name: "Extract variable"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/src/demo", "gopls", "codeaction", "-exec", "-diff",
		"-kind=refactor.extract.variable",
		"-title=^Extract variable$",
		"/src/demo/sum.go:4:2-4:12",
	}, rec.calls[0])

	_, err = g.Refactor(context.Background(), FreeformRequest{Refactoring: model.Refactoring{ID: "source.organizeImports"}})
	assert.ErrorIs(t, err, ErrUnknownRefactoring)
}

// fakeProvider answers Execute with a fixed response.
type fakeProvider struct {
	resp model.Response
	err  error
}

func (fakeProvider) Name() string { return "fake" }
func (fakeProvider) Refactorings(context.Context, model.Editor, model.Range) ([]model.Refactoring, error) {
	return nil, nil
}
func (f fakeProvider) Rename(context.Context, RenameRequest) (model.Response, error) {
	return f.resp, f.err
}
func (f fakeProvider) Refactor(context.Context, FreeformRequest) (model.Response, error) {
	return f.resp, f.err
}

func TestExecute(t *testing.T) {
	resp := model.Response{Edits: []model.FileDiff{{Path: "/a.go"}}}
	ctx := context.Background()

	got, err := Execute(ctx, fakeProvider{resp: resp}, Request{Kind: model.KindRename})
	require.NoError(t, err)
	assert.Equal(t, resp, got)

	_, err = Execute(ctx, fakeProvider{}, Request{Kind: model.KindFreeform})
	assert.ErrorIs(t, err, ErrNoChanges)

	boom := errors.New("boom")
	_, err = Execute(ctx, fakeProvider{err: boom}, Request{Kind: model.KindRename})
	assert.ErrorIs(t, err, boom)

	_, err = Execute(ctx, fakeProvider{resp: resp}, Request{Kind: "move"})
	assert.ErrorIs(t, err, ErrUnknownRefactoring)
}

func TestValidateIdentifier(t *testing.T) {
	assert.NoError(t, ValidateIdentifier("newName"))
	assert.NoError(t, ValidateIdentifier("_x2"))
	for _, bad := range []string{"", "2x", "a-b", "func", "a b"} {
		assert.ErrorIs(t, ValidateIdentifier(bad), ErrInvalidIdentifier, bad)
	}
}

func TestDetect(t *testing.T) {
	assert.NotNil(t, Detect(model.Editor{Path: "/x/main.go"}, Options{}))
	assert.NotNil(t, Detect(model.Editor{Path: "/x/MAIN.GO"}, Options{}))
	assert.Nil(t, Detect(model.Editor{Path: "/x/main.py"}, Options{}))
}
