package colorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/colorize/models"
)

func TestReconciler_MergeAppendsWithoutReplacing(t *testing.T) {
	r := NewReconciler()
	live := models.NewLineAnnotations()
	live.Append(1, models.NewAnnotation(models.Range{Line: 1, EndCol: 4}, "#111"))

	fresh := models.NewLineAnnotations()
	fresh.Append(1, models.NewAnnotation(models.Range{Line: 1, StartCol: 5, EndCol: 9}, "#222"))
	fresh.Append(2, models.NewAnnotation(models.Range{Line: 2, EndCol: 4}, "#333"))

	r.Merge(fresh, live)

	assert.Len(t, live[1], 2, "existing line content must be kept, not replaced")
	assert.Len(t, live[2], 1)
}

func TestReconciler_DeduplicateDisposesEarlierKeepsLater(t *testing.T) {
	r := NewReconciler()
	live := models.NewLineAnnotations()

	duplicate := models.Range{Line: 1, StartCol: 0, EndCol: 7}
	earlier := models.NewAnnotation(duplicate, "#ff0000")
	later := models.NewAnnotation(duplicate, "#ff0000")
	other := models.NewAnnotation(models.Range{Line: 1, StartCol: 10, EndCol: 17}, "#00ff00")
	live.Append(1, earlier, other, later)

	r.Deduplicate(live)

	assert.True(t, earlier.Disposed())
	assert.False(t, later.Disposed())
	assert.False(t, other.Disposed())
	assert.Equal(t, 2, live.LiveCount())
}

func TestReconciler_MergingIdenticalSetsYieldsOneLiveAnnotation(t *testing.T) {
	// Two extraction rounds covering the identical resolved range must end
	// with exactly one live annotation for that range.
	r := NewReconciler()
	live := models.NewLineAnnotations()

	span := models.Range{Line: 4, StartCol: 2, EndCol: 9}
	first := models.NewLineAnnotations()
	first.Append(4, models.NewAnnotation(span, "#abcdef"))
	second := models.NewLineAnnotations()
	second.Append(4, models.NewAnnotation(span, "#abcdef"))

	r.Merge(first, live)
	r.Merge(second, live)
	r.Deduplicate(live)

	assert.Equal(t, 1, live.LiveCount())
}

func TestReconciler_PruneCompactsDisposed(t *testing.T) {
	r := NewReconciler()
	live := models.NewLineAnnotations()

	kept := models.NewAnnotation(models.Range{Line: 1, EndCol: 4}, "#111")
	dropped := models.NewAnnotation(models.Range{Line: 1, StartCol: 5, EndCol: 9}, "#222")
	gone := models.NewAnnotation(models.Range{Line: 2, EndCol: 4}, "#333")
	live.Append(1, kept, dropped)
	live.Append(2, gone)
	dropped.Dispose()
	gone.Dispose()

	r.Prune(live)

	require.Len(t, live[1], 1)
	assert.Same(t, kept, live[1][0])
	assert.NotContains(t, live, 2, "emptied lines are removed entirely")
}

func TestReconciler_DeduplicateIgnoresAlreadyDisposed(t *testing.T) {
	r := NewReconciler()
	live := models.NewLineAnnotations()

	span := models.Range{Line: 1, EndCol: 4}
	old := models.NewAnnotation(span, "#111")
	old.Dispose()
	current := models.NewAnnotation(span, "#111")
	live.Append(1, old, current)

	r.Deduplicate(live)

	assert.False(t, current.Disposed(), "a disposed annotation must not shadow a live one")
}
