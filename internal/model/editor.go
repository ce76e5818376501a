package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// Point is a 0-based position in a buffer. Column counts bytes.
type Point struct {
	Row    int
	Column int
}

// Less reports whether p sorts strictly before o.
func (p Point) Less(o Point) bool {
	return p.Row < o.Row || (p.Row == o.Row && p.Column < o.Column)
}

// String renders the point 1-based, the way gopls and compilers print them.
func (p Point) String() string {
	return fmt.Sprintf("%d:%d", p.Row+1, p.Column+1)
}

// Range is a half-open span [Start, End) in a buffer.
type Range struct {
	Start Point
	End   Point
}

// IsEmpty reports whether the range is a bare cursor.
func (r Range) IsEmpty() bool { return r.Start == r.End }

// Contains reports whether p lies inside r. An empty range contains its own point.
func (r Range) Contains(p Point) bool {
	if r.IsEmpty() {
		return p == r.Start
	}
	return !p.Less(r.Start) && p.Less(r.End)
}

// Intersects reports whether r and o overlap or touch.
func (r Range) Intersects(o Range) bool {
	return !r.End.Less(o.Start) && !o.End.Less(r.Start)
}

func (r Range) String() string {
	if r.IsEmpty() {
		return r.Start.String()
	}
	return r.Start.String() + "-" + r.End.String()
}

// Editor identifies the buffer a session operates on. The reducer never looks
// inside it.
type Editor struct {
	Path string // absolute file path
	Dir  string // working directory tools run in
}

// Location is what a user types on the command line: file plus cursor or selection.
type Location struct {
	Editor Editor
	Range  Range
}

var locationRE = regexp.MustCompile(`^(.+):(\d+):(\d+)(?:-(\d+):(\d+))?$`)

// ParseLocation parses "file.go:12:5" or "file.go:12:5-14:2" (1-based) into a
// Location with 0-based points.
func ParseLocation(s string) (Location, error) {
	m := locationRE.FindStringSubmatch(s)
	if m == nil {
		return Location{}, fmt.Errorf("location %q: expected file:line:col[-line:col]", s)
	}
	start, err := parsePoint(m[2], m[3])
	if err != nil {
		return Location{}, fmt.Errorf("location %q: %w", s, err)
	}
	end := start
	if m[4] != "" {
		end, err = parsePoint(m[4], m[5])
		if err != nil {
			return Location{}, fmt.Errorf("location %q: %w", s, err)
		}
		if end.Less(start) {
			return Location{}, fmt.Errorf("location %q: selection ends before it starts", s)
		}
	}
	abs, err := filepath.Abs(m[1])
	if err != nil {
		return Location{}, fmt.Errorf("location %q: %w", s, err)
	}
	return Location{
		Editor: Editor{Path: abs, Dir: filepath.Dir(abs)},
		Range:  Range{Start: start, End: end},
	}, nil
}

func parsePoint(lineStr, colStr string) (Point, error) {
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 1 {
		return Point{}, fmt.Errorf("bad line %q", lineStr)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 1 {
		return Point{}, fmt.Errorf("bad column %q", colStr)
	}
	return Point{Row: line - 1, Column: col - 1}, nil
}
