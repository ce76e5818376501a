// Package diffs turns the unified diffs that refactoring tools print into
// model.FileDiff values and applies them to files on disk.
package diffs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"refactorizer/internal/model"
)

// ErrHunkMismatch means a hunk's context no longer matches the file.
var ErrHunkMismatch = errors.New("diffs: hunk does not match file")

const noNewline = `\ No newline at end of file`

// Parse reads a multi-file unified diff. Relative names are resolved
// against dir.
func Parse(unified, dir string) ([]model.FileDiff, error) {
	if strings.TrimSpace(unified) == "" {
		return nil, nil
	}
	fds, err := diff.NewMultiFileDiffReader(strings.NewReader(unified)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("diffs: parse: %w", err)
	}

	out := make([]model.FileDiff, 0, len(fds))
	for _, fd := range fds {
		printed, err := diff.PrintFileDiff(fd)
		if err != nil {
			return nil, fmt.Errorf("diffs: print %s: %w", fd.NewName, err)
		}
		f := model.FileDiff{
			Path:    resolvePath(fd, dir),
			OldName: fd.OrigName,
			NewName: fd.NewName,
			Unified: string(printed),
		}
		for _, h := range fd.Hunks {
			hunk := model.Hunk{
				OrigStart: int(h.OrigStartLine),
				OrigLines: int(h.OrigLines),
				NewStart:  int(h.NewStartLine),
				NewLines:  int(h.NewLines),
				Section:   h.Section,
				Body:      splitBody(h.Body),
			}
			// go-diff drops the marker and the newline before it when the
			// new side ends without one.
			if n := len(h.Body); n > 0 && h.Body[n-1] != '\n' {
				hunk.Body = append(hunk.Body, noNewline)
			}
			for _, line := range hunk.Body {
				switch {
				case strings.HasPrefix(line, "+"):
					f.Added++
				case strings.HasPrefix(line, "-"):
					f.Removed++
				}
			}
			f.Hunks = append(f.Hunks, hunk)
		}
		out = append(out, f)
	}
	return out, nil
}

func splitBody(body []byte) []string {
	s := strings.TrimSuffix(string(body), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// resolvePath picks the file a diff writes to. Tools name the original side
// "x.go.orig" or "a/x.go" and the new side "x.go" or "b/x.go".
func resolvePath(fd *diff.FileDiff, dir string) string {
	name := fd.NewName
	if name == "" || name == "/dev/null" {
		name = fd.OrigName
	}
	name = strings.TrimSuffix(name, ".orig")
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	name = strings.TrimPrefix(name, "b/")
	name = strings.TrimPrefix(name, "a/")
	return filepath.Join(dir, name)
}

// Apply returns orig with the hunks of fd applied. Context and removed lines
// must match orig exactly.
func Apply(orig []byte, fd model.FileDiff) ([]byte, error) {
	lines := splitLines(string(orig))
	var out bytes.Buffer
	out.Grow(len(orig))

	next := 0
	for _, h := range fd.Hunks {
		start := h.OrigStart - 1
		if h.OrigLines == 0 {
			// pure insertion after line OrigStart
			start = h.OrigStart
		}
		if start < next || start > len(lines) {
			return nil, fmt.Errorf("%w: hunk @@ -%d,%d out of range", ErrHunkMismatch, h.OrigStart, h.OrigLines)
		}
		for _, l := range lines[next:start] {
			out.WriteString(l)
		}
		next = start

		var prev byte
		for _, line := range h.Body {
			if line == "" {
				line = " "
			}
			switch line[0] {
			case ' ', '-':
				if next >= len(lines) || strings.TrimSuffix(lines[next], "\n") != line[1:] {
					return nil, fmt.Errorf("%w: line %d: want %q", ErrHunkMismatch, next+1, line[1:])
				}
				if line[0] == ' ' {
					out.WriteString(lines[next])
				}
				next++
			case '+':
				out.WriteString(line[1:])
				out.WriteByte('\n')
			case '\\':
				// the new side's last line has no newline
				if (prev == '+' || prev == ' ') && bytes.HasSuffix(out.Bytes(), []byte("\n")) {
					out.Truncate(out.Len() - 1)
				}
			default:
				return nil, fmt.Errorf("%w: unexpected line %q", ErrHunkMismatch, line)
			}
			prev = line[0]
		}
	}
	for _, l := range lines[next:] {
		out.WriteString(l)
	}
	return out.Bytes(), nil
}

// splitLines splits s keeping each line's trailing newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// ApplyFile applies fd to the file at fd.Path in place.
func ApplyFile(fd model.FileDiff) error {
	info, err := os.Stat(fd.Path)
	if err != nil {
		return fmt.Errorf("diffs: stat %s: %w", fd.Path, err)
	}
	orig, err := os.ReadFile(fd.Path)
	if err != nil {
		return fmt.Errorf("diffs: read %s: %w", fd.Path, err)
	}
	patched, err := Apply(orig, fd)
	if err != nil {
		return fmt.Errorf("diffs: %s: %w", fd.Path, err)
	}
	if err := os.WriteFile(fd.Path, patched, info.Mode().Perm()); err != nil {
		return fmt.Errorf("diffs: write %s: %w", fd.Path, err)
	}
	return nil
}

// Summary renders "N files changed, +A -R".
func Summary(fds []model.FileDiff) string {
	var added, removed int
	for _, fd := range fds {
		added += fd.Added
		removed += fd.Removed
	}
	noun := "files"
	if len(fds) == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%d %s changed, +%d -%d", len(fds), noun, added, removed)
}
