// Package colorizer is the coordination core: it reconciles freshly
// computed annotations into per-document live state and orchestrates when
// to recompute, when to reuse the cache, and when to invalidate.
package colorizer

import (
	"github.com/samber/lo"

	"github.com/flanksource/colorize/models"
)

// Reconciler folds newly computed annotations into a document's live
// annotation state, collapses duplicates and prunes disposed entries.
type Reconciler struct{}

// NewReconciler creates a reconciler.
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Merge appends every line's annotations from newAnnotations into live,
// creating line entries as needed. Lines are never replaced wholesale, so
// partial recomputation (e.g. only the visible range) merges cleanly into
// what is already there.
func (r *Reconciler) Merge(newAnnotations, live models.LineAnnotations) {
	for line, anns := range newAnnotations {
		live.Append(line, anns...)
	}
}

// Deduplicate walks each line and, whenever two live annotations resolve to
// the same display range, disposes the earlier and keeps the later. After
// it returns no two live annotations on a line paint the identical range.
func (r *Reconciler) Deduplicate(live models.LineAnnotations) {
	for _, anns := range live {
		last := make(map[models.Range]int, len(anns))
		for i, a := range anns {
			if a.Disposed() {
				continue
			}
			last[a.Range] = i
		}
		for i, a := range anns {
			if a.Disposed() {
				continue
			}
			if last[a.Range] != i {
				a.Dispose()
			}
		}
	}
}

// Prune removes disposed annotations from every line, dropping lines that
// end up empty. Disposed annotations are already invisible, so pruning is
// purely about bounding memory over a long editing session; it is safe to
// run opportunistically.
func (r *Reconciler) Prune(live models.LineAnnotations) {
	for line, anns := range live {
		kept := lo.Filter(anns, func(a *models.Annotation, _ int) bool {
			return !a.Disposed()
		})
		if len(kept) == 0 {
			delete(live, line)
			continue
		}
		live[line] = kept
	}
}
