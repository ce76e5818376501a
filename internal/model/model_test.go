package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("/src/app/main.go:12:5")
	require.NoError(t, err)
	assert.Equal(t, Editor{Path: "/src/app/main.go", Dir: "/src/app"}, loc.Editor)
	assert.Equal(t, Range{Start: Point{11, 4}, End: Point{11, 4}}, loc.Range)
	assert.True(t, loc.Range.IsEmpty())

	loc, err = ParseLocation("/src/app/my-file.go:3:1-4:10")
	require.NoError(t, err)
	assert.Equal(t, "/src/app/my-file.go", loc.Editor.Path)
	assert.Equal(t, Range{Start: Point{2, 0}, End: Point{3, 9}}, loc.Range)
}

func TestParseLocationRelative(t *testing.T) {
	loc, err := ParseLocation("pkg/x.go:1:1")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(loc.Editor.Path))
	assert.Equal(t, filepath.Dir(loc.Editor.Path), loc.Editor.Dir)
}

func TestParseLocationErrors(t *testing.T) {
	for _, in := range []string{
		"main.go",
		"main.go:12",
		"main.go:0:1",
		"main.go:1:0",
		"main.go:5:1-4:1",
		"main.go:a:b",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseLocation(in)
			assert.Error(t, err)
		})
	}
}

func TestRange(t *testing.T) {
	r := Range{Start: Point{1, 4}, End: Point{3, 0}}

	assert.True(t, r.Contains(Point{1, 4}))
	assert.True(t, r.Contains(Point{2, 100}))
	assert.False(t, r.Contains(Point{3, 0}))
	assert.False(t, r.Contains(Point{1, 3}))

	cursor := Range{Start: Point{2, 2}, End: Point{2, 2}}
	assert.True(t, cursor.Contains(Point{2, 2}))
	assert.True(t, r.Intersects(cursor))
	assert.True(t, r.Intersects(Range{Start: Point{3, 0}, End: Point{4, 0}}))
	assert.False(t, r.Intersects(Range{Start: Point{3, 1}, End: Point{4, 0}}))

	assert.Equal(t, "2:5-4:1", r.String())
	assert.Equal(t, "3:3", cursor.String())
}

func TestFreeformArgValidate(t *testing.T) {
	boolArg := FreeformArg{Name: "simplify", Type: ArgBoolean}
	assert.NoError(t, boolArg.Validate("true"))
	assert.Error(t, boolArg.Validate("yes"))

	enumArg := FreeformArg{Name: "mode", Type: ArgEnum, Options: []string{"a", "b"}}
	assert.NoError(t, enumArg.Validate("b"))
	assert.EqualError(t, enumArg.Validate("c"), "mode: expected one of [a b]")

	assert.NoError(t, FreeformArg{Name: "x", Type: ArgString}.Validate(""))
}

func TestRefactoringTitle(t *testing.T) {
	r := Refactoring{Kind: KindRename, SymbolAtPoint: Symbol{Text: "count"}}
	assert.Equal(t, `Rename "count"`, r.Title())
	assert.Equal(t, "Extract function", Refactoring{Kind: KindFreeform, Name: "Extract function"}.Title())
}

func TestProgressFraction(t *testing.T) {
	assert.Equal(t, 0.0, ProgressPayload{}.Fraction())
	assert.Equal(t, 0.5, ProgressPayload{Value: 1, Max: 2}.Fraction())
	assert.Equal(t, 1.0, ProgressPayload{Value: 5, Max: 2}.Fraction())
}

func TestResponsePaths(t *testing.T) {
	resp := Response{Edits: []FileDiff{{Path: "/a.go"}, {Path: "/b.go"}}}
	assert.Equal(t, []string{"/a.go", "/b.go"}, resp.Paths())
}
