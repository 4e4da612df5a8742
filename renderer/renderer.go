// Package renderer defines the rendering surface the colorizer paints
// annotations onto, plus a terminal implementation used by the CLI.
package renderer

import (
	"github.com/flanksource/colorize/models"
)

// Renderer is the surface annotations are painted onto. Paint must be
// idempotent: invoking it repeatedly with the same map and cursor lines
// leaves the surface unchanged.
type Renderer interface {
	// Paint displays the live annotations for the document. Lines in
	// cursorLines may be rendered differently (e.g. swatch suppressed
	// under the caret) but must not be dropped from the map.
	Paint(doc models.DocKey, live models.LineAnnotations, cursorLines []int) error

	// Unpaint removes every annotation for the document from the surface.
	Unpaint(doc models.DocKey) error
}
