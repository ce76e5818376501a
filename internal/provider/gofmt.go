package provider

import (
	"context"
	"fmt"
	"strings"

	"refactorizer/internal/model"
)

// RewriteID identifies the gofmt rewrite-rule refactoring.
const RewriteID = "gofmt.rewrite"

func rewriteRefactoring(rng model.Range) model.Refactoring {
	return model.Refactoring{
		Kind:        model.KindFreeform,
		ID:          RewriteID,
		Name:        "Rewrite expression",
		Description: "gofmt -r 'pattern -> replacement' over the file",
		Range:       rng,
		Args: []model.FreeformArg{
			{Name: "pattern", Description: "expression to match, single letters are wildcards", Type: model.ArgString},
			{Name: "replacement", Description: "expression to substitute", Type: model.ArgString},
			{Name: "simplify", Description: "also apply gofmt -s simplifications", Type: model.ArgBoolean, Default: "false"},
		},
	}
}

type gofmt struct {
	path string
	run  runFunc
}

// rewrite applies a gofmt rewrite rule and returns the diff.
func (g gofmt) rewrite(ctx context.Context, req FreeformRequest) (model.Response, error) {
	pattern := strings.TrimSpace(req.Args["pattern"])
	replacement := strings.TrimSpace(req.Args["replacement"])
	if pattern == "" || replacement == "" {
		return model.Response{}, fmt.Errorf("gofmt rewrite: pattern and replacement are required")
	}
	for _, arg := range req.Refactoring.Args {
		if v, ok := req.Args[arg.Name]; ok {
			if err := arg.Validate(v); err != nil {
				return model.Response{}, fmt.Errorf("gofmt rewrite: %w", err)
			}
		}
	}

	args := []string{"-r", pattern + " -> " + replacement}
	if req.Args["simplify"] == "true" {
		args = append(args, "-s")
	}
	args = append(args, "-d", req.Editor.Path)

	out, err := g.run(ctx, req.Editor.Dir, g.path, args...)
	if err != nil {
		return model.Response{}, err
	}
	return responseFromDiff(string(out), req.Editor.Dir)
}
