package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnotation_DisposeIsIdempotent(t *testing.T) {
	a := NewAnnotation(Range{Line: 1, StartCol: 0, EndCol: 4}, "#fff")
	require.Equal(t, StateLive, a.State())

	a.Dispose()
	assert.True(t, a.Disposed())

	// Disposing twice is a no-op, not a fault.
	a.Dispose()
	assert.Equal(t, StateDisposed, a.State())
}

func TestLineAnnotations_AppendAndClone(t *testing.T) {
	m := NewLineAnnotations()
	m.Append(3, NewAnnotation(Range{Line: 3, EndCol: 4}, "#111"))
	m.Append(3, NewAnnotation(Range{Line: 3, StartCol: 5, EndCol: 9}, "#222"))
	m.Append(7, NewAnnotation(Range{Line: 7, EndCol: 4}, "#333"))

	clone := m.Clone()
	clone.Append(9, NewAnnotation(Range{Line: 9, EndCol: 4}, "#444"))
	clone.Append(3, NewAnnotation(Range{Line: 3, StartCol: 10, EndCol: 14}, "#555"))

	assert.Len(t, m, 2, "clone mutation must not reshape the original")
	assert.Len(t, m[3], 2)
	assert.Len(t, clone[3], 3)
	assert.ElementsMatch(t, []int{3, 7}, m.Lines())
}

func TestLineAnnotations_LiveCount(t *testing.T) {
	m := NewLineAnnotations()
	a := NewAnnotation(Range{Line: 1, EndCol: 4}, "#111")
	b := NewAnnotation(Range{Line: 1, StartCol: 5, EndCol: 9}, "#222")
	m.Append(1, a, b)

	require.Equal(t, 2, m.LiveCount())
	a.Dispose()
	assert.Equal(t, 1, m.LiveCount())
}

func TestFileError_SizeLimit(t *testing.T) {
	err := NewSizeLimitError("/tmp/huge.css", 2<<20, 1<<20)

	assert.True(t, IsSizeLimit(err))
	assert.True(t, errors.Is(err, ErrFileTooLarge))
	assert.Contains(t, err.Error(), "/tmp/huge.css")
}

func TestScanResult_SizeLimitErrors(t *testing.T) {
	result := &ScanResult{
		Errors: []*FileError{
			NewSizeLimitError("a.css", 2<<20, 1<<20),
			{Path: "b.css", Err: errors.New("permission denied")},
			NewSizeLimitError("c.css", 3<<20, 1<<20),
		},
	}

	skipped := result.SizeLimitErrors()
	require.Len(t, skipped, 2)
	assert.Equal(t, "a.css", skipped[0].Path)
	assert.Equal(t, "c.css", skipped[1].Path)
}
