package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refactorizer/internal/diffs"
)

func TestRenderDiffs(t *testing.T) {
	fds, err := diffs.Parse(renameDiff("/src/demo/sum.go"), "/src/demo")
	require.NoError(t, err)

	out := ansi.Strip(renderDiffs(fds, 0))
	assert.Contains(t, out, "/src/demo/sum.go")
	assert.Contains(t, out, "+2 -2")
	assert.Contains(t, out, "return acc")

	plain := ansi.Strip(colourDiffs(fds))
	assert.Contains(t, plain, "@@ -2,5 +2,5 @@")
	assert.True(t, strings.Contains(plain, "-\ttotal := 0") || strings.Contains(plain, "-    total := 0"))
}

func TestViewBeforeFirstResize(t *testing.T) {
	m := New(Options{})
	assert.Empty(t, m.View())
}
