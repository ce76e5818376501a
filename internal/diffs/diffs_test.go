package diffs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refactorizer/internal/model"
)

const original = `package demo

func count(xs []int) int {
	n := 0
	for range xs {
		n++
	}
	return n
}
`

const renamed = `package demo

func count(items []int) int {
	n := 0
	for range items {
		n++
	}
	return n
}
`

// goplsRename is shaped like the output of "gopls rename -d".
const goplsRename = `--- /src/demo/count.go.orig
+++ /src/demo/count.go
@@ -1,7 +1,7 @@
 package demo

-func count(xs []int) int {
+func count(items []int) int {
 	n := 0
-	for range xs {
+	for range items {
 		n++
 	}
 	return n
`

// gofmtRewrite is shaped like the output of "gofmt -d" on a relative path.
const gofmtRewrite = `diff demo/a.go.orig demo/a.go
--- demo/a.go.orig
+++ demo/a.go
@@ -3,3 +3,3 @@
 func f() {
-	_ = len(x) == 0
+	_ = x == ""
 }
diff demo/b.go.orig demo/b.go
--- demo/b.go.orig
+++ demo/b.go
@@ -1,2 +1,3 @@
 package demo
+
 var y = 1
`

func TestParseGoplsOutput(t *testing.T) {
	fds, err := Parse(goplsRename, "/elsewhere")
	require.NoError(t, err)
	require.Len(t, fds, 1)

	fd := fds[0]
	assert.Equal(t, "/src/demo/count.go", fd.Path)
	assert.Equal(t, "/src/demo/count.go.orig", fd.OldName)
	assert.Equal(t, 2, fd.Added)
	assert.Equal(t, 2, fd.Removed)
	require.Len(t, fd.Hunks, 1)
	assert.Equal(t, 1, fd.Hunks[0].OrigStart)
	assert.Equal(t, 7, fd.Hunks[0].OrigLines)
	assert.Len(t, fd.Hunks[0].Body, 9)
	assert.Contains(t, fd.Unified, "+func count(items []int) int {")
}

func TestParseResolvesRelativeNames(t *testing.T) {
	fds, err := Parse(gofmtRewrite, "/src")
	require.NoError(t, err)
	require.Len(t, fds, 2)

	assert.Equal(t, "/src/demo/a.go", fds[0].Path)
	assert.Equal(t, 1, fds[0].Added)
	assert.Equal(t, 1, fds[0].Removed)
	assert.Equal(t, "/src/demo/b.go", fds[1].Path)
	assert.Equal(t, 1, fds[1].Added)
	assert.Equal(t, 0, fds[1].Removed)
}

func TestParseEmpty(t *testing.T) {
	fds, err := Parse("  \n", "/src")
	require.NoError(t, err)
	assert.Empty(t, fds)
}

func TestApply(t *testing.T) {
	fds, err := Parse(goplsRename, "/")
	require.NoError(t, err)

	got, err := Apply([]byte(original), fds[0])
	require.NoError(t, err)
	assert.Equal(t, renamed, string(got))
}

func TestApplyInsertion(t *testing.T) {
	fd := model.FileDiff{Hunks: []model.Hunk{{
		OrigStart: 1, OrigLines: 0, NewStart: 2, NewLines: 1,
		Body: []string{"+// inserted"},
	}}}

	got, err := Apply([]byte("a\nb\n"), fd)
	require.NoError(t, err)
	assert.Equal(t, "a\n// inserted\nb\n", string(got))
}

// Both of these end the new file without a trailing newline.
const newNoNewline = `--- /src/demo/v.go.orig
+++ /src/demo/v.go
@@ -1,2 +1,2 @@
 package demo
-var x = 1
+var y = 1
\ No newline at end of file
`

const bothNoNewline = `--- /src/demo/v.go.orig
+++ /src/demo/v.go
@@ -1,2 +1,2 @@
 package demo
-var x = 1
\ No newline at end of file
+var y = 1
\ No newline at end of file
`

func TestApplyNoNewlineAtEnd(t *testing.T) {
	cases := []struct {
		name string
		diff string
		orig string
	}{
		{"new side only", newNoNewline, "package demo\nvar x = 1\n"},
		{"both sides", bothNoNewline, "package demo\nvar x = 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fds, err := Parse(tc.diff, "/")
			require.NoError(t, err)
			require.Len(t, fds, 1)
			assert.Equal(t, 1, fds[0].Added)
			assert.Equal(t, 1, fds[0].Removed)

			got, err := Apply([]byte(tc.orig), fds[0])
			require.NoError(t, err)
			assert.Equal(t, "package demo\nvar y = 1", string(got))
		})
	}
}

func TestApplyKeepsNewlineWhenOnlyOriginalLacksOne(t *testing.T) {
	diff := "--- /v.go.orig\n+++ /v.go\n@@ -1,1 +1,1 @@\n-var x = 1\n\\ No newline at end of file\n+var y = 1\n"
	fds, err := Parse(diff, "/")
	require.NoError(t, err)

	got, err := Apply([]byte("var x = 1"), fds[0])
	require.NoError(t, err)
	assert.Equal(t, "var y = 1\n", string(got))
}

func TestApplyMismatch(t *testing.T) {
	fds, err := Parse(goplsRename, "/")
	require.NoError(t, err)

	edited := []byte("package demo\n\nfunc count(ys []int) int {\n")
	_, err = Apply(edited, fds[0])
	assert.ErrorIs(t, err, ErrHunkMismatch)
}

func TestApplyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "count.go")
	require.NoError(t, os.WriteFile(path, []byte(original), 0o640))

	fds, err := Parse(goplsRename, dir)
	require.NoError(t, err)
	fd := fds[0]
	fd.Path = path

	require.NoError(t, ApplyFile(fd))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, renamed, string(got))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// Applying twice fails: the file no longer matches.
	assert.ErrorIs(t, ApplyFile(fd), ErrHunkMismatch)
}

func TestApplyFileMissing(t *testing.T) {
	err := ApplyFile(model.FileDiff{Path: filepath.Join(t.TempDir(), "nope.go")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "1 file changed, +2 -1", Summary([]model.FileDiff{{Added: 2, Removed: 1}}))
	assert.Equal(t, "2 files changed, +3 -1", Summary([]model.FileDiff{{Added: 2, Removed: 1}, {Added: 1}}))
	assert.Equal(t, "0 files changed, +0 -0", Summary(nil))
}
