package provider

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"refactorizer/internal/diffs"
	"refactorizer/internal/model"
)

// codeActionRE matches one line of `gopls codeaction` listing output:
//
//	edit	"Extract function" [refactor.extract.function]
var codeActionRE = regexp.MustCompile(`^(\w+)\t("(?:[^"\\]|\\.)*") \[([^\]]+)\]$`)

// span formats a gopls position argument, 1-based.
func span(path string, rng model.Range) string {
	if rng.IsEmpty() {
		return fmt.Sprintf("%s:%d:%d", path, rng.Start.Row+1, rng.Start.Column+1)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", path,
		rng.Start.Row+1, rng.Start.Column+1, rng.End.Row+1, rng.End.Column+1)
}

// parseCodeActions keeps the refactor.* actions gopls offers for rng.
func parseCodeActions(out string, rng model.Range) []model.Refactoring {
	var refactorings []model.Refactoring
	seen := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		m := codeActionRE.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		title, err := strconv.Unquote(m[2])
		if err != nil {
			continue
		}
		kind := m[3]
		if !strings.HasPrefix(kind, "refactor.") || seen[kind+title] {
			continue
		}
		seen[kind+title] = true
		refactorings = append(refactorings, model.Refactoring{
			Kind:        model.KindFreeform,
			ID:          kind,
			Name:        title,
			Description: "gopls " + kind,
			Range:       rng,
		})
	}
	return refactorings
}

type gopls struct {
	path string
	run  runFunc
}

// codeActions lists the refactorings gopls offers at rng.
func (g gopls) codeActions(ctx context.Context, editor model.Editor, rng model.Range) ([]model.Refactoring, error) {
	out, err := g.run(ctx, editor.Dir, g.path, "codeaction", span(editor.Path, rng))
	if err != nil {
		return nil, err
	}
	return parseCodeActions(string(out), rng), nil
}

// execCodeAction runs one listed code action and returns its diff.
func (g gopls) execCodeAction(ctx context.Context, req FreeformRequest) (model.Response, error) {
	out, err := g.run(ctx, req.Editor.Dir, g.path,
		"codeaction",
		"-exec",
		"-diff",
		"-kind="+req.Refactoring.ID,
		"-title=^"+regexp.QuoteMeta(req.Refactoring.Name)+"$",
		span(req.Editor.Path, req.Range),
	)
	if err != nil {
		return model.Response{}, err
	}
	return responseFromDiff(string(out), req.Editor.Dir)
}

// rename computes a rename without writing it.
func (g gopls) rename(ctx context.Context, req RenameRequest) (model.Response, error) {
	at := model.Range{Start: req.Point, End: req.Point}
	out, err := g.run(ctx, req.Editor.Dir, g.path, "rename", "-d", span(req.Editor.Path, at), req.NewName)
	if err != nil {
		return model.Response{}, err
	}
	return responseFromDiff(string(out), req.Editor.Dir)
}

func responseFromDiff(out, dir string) (model.Response, error) {
	edits, err := diffs.Parse(out, dir)
	if err != nil {
		return model.Response{}, err
	}
	return model.Response{Edits: edits}, nil
}
