// Package analysis provides the extraction side of the colorizer: the
// contract the coordination core consumes, a default regex-based extractor
// for color literals, and a batched workspace scanner.
package analysis

import (
	"context"

	"github.com/flanksource/colorize/models"
)

// LineRange restricts extraction to the lines [Start, End], 1-based
// inclusive. The zero value means the whole document.
type LineRange struct {
	Start int
	End   int
}

// All reports whether the range covers the whole document.
func (r LineRange) All() bool {
	return r.Start == 0 && r.End == 0
}

// Contains reports whether the 1-based line falls inside the range.
func (r LineRange) Contains(line int) bool {
	return r.All() || (line >= r.Start && line <= r.End)
}

// Extractor resolves color annotations for a document's content. It may run
// in-process or proxy an out-of-process worker.
//
// Implementations must honor their configured byte-size ceiling: content
// over the ceiling fails with a models.ErrFileTooLarge-kinded error and is
// never silently truncated. Failures are per document; an extractor must
// not retain or mutate the returned map after returning it.
type Extractor interface {
	Extract(ctx context.Context, doc models.DocKey, content string, lines LineRange) (models.LineAnnotations, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, doc models.DocKey, content string, lines LineRange) (models.LineAnnotations, error)

func (f ExtractorFunc) Extract(ctx context.Context, doc models.DocKey, content string, lines LineRange) (models.LineAnnotations, error) {
	return f(ctx, doc, content, lines)
}
