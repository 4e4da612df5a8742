package models

import (
	"fmt"
	"path/filepath"
)

// DocKey is the stable identity of an open text buffer. It is the canonical
// absolute file path and is unaffected by edits, saves or refocus events.
type DocKey string

// NewDocKey canonicalizes a file path into a document key.
func NewDocKey(path string) (DocKey, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize path %s: %w", path, err)
	}
	return DocKey(filepath.Clean(abs)), nil
}

// AnnotationState tracks the lifetime of an annotation.
type AnnotationState int

const (
	StateLive AnnotationState = iota
	StateDisposed
)

func (s AnnotationState) String() string {
	if s == StateDisposed {
		return "disposed"
	}
	return "live"
}

// Range is a half-open column span on a single line.
type Range struct {
	Line     int `json:"line"`
	StartCol int `json:"start_col"`
	EndCol   int `json:"end_col"`
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d", r.Line, r.StartCol, r.EndCol)
}

// Annotation is one highlighted span: a source range plus the resolved color
// to paint there. It is owned by a single document's live annotation state
// until disposed.
type Annotation struct {
	Range Range  `json:"range"`
	Color string `json:"color"`

	state AnnotationState
}

// NewAnnotation creates a live annotation for the given range and resolved color.
func NewAnnotation(r Range, color string) *Annotation {
	return &Annotation{Range: r, Color: color, state: StateLive}
}

// Dispose transitions the annotation to the disposed state. Disposing an
// already-disposed annotation is a no-op.
func (a *Annotation) Dispose() {
	a.state = StateDisposed
}

// Disposed reports whether the annotation has been disposed.
func (a *Annotation) Disposed() bool {
	return a.state == StateDisposed
}

// State returns the annotation's lifecycle state.
func (a *Annotation) State() AnnotationState {
	return a.state
}

// LineAnnotations maps a line number to the ordered list of annotations on
// that line. Insertion order within a line carries no meaning; after
// reconciliation no two live annotations on a line share the same range.
type LineAnnotations map[int][]*Annotation

// NewLineAnnotations creates an empty line annotation map.
func NewLineAnnotations() LineAnnotations {
	return make(LineAnnotations)
}

// Append adds annotations to a line, creating the line entry if absent.
func (m LineAnnotations) Append(line int, anns ...*Annotation) {
	if len(anns) == 0 {
		return
	}
	m[line] = append(m[line], anns...)
}

// Clone returns a snapshot of the map. Annotations themselves are shared;
// only the map and per-line slices are copied, so appends and pruning on one
// copy never reshape the other.
func (m LineAnnotations) Clone() LineAnnotations {
	out := make(LineAnnotations, len(m))
	for line, anns := range m {
		cp := make([]*Annotation, len(anns))
		copy(cp, anns)
		out[line] = cp
	}
	return out
}

// LiveCount returns the number of non-disposed annotations across all lines.
func (m LineAnnotations) LiveCount() int {
	n := 0
	for _, anns := range m {
		for _, a := range anns {
			if !a.Disposed() {
				n++
			}
		}
	}
	return n
}

// Lines returns the line numbers that currently hold at least one annotation.
func (m LineAnnotations) Lines() []int {
	lines := make([]int, 0, len(m))
	for line := range m {
		lines = append(lines, line)
	}
	return lines
}
