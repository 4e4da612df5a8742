package renderer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/flanksource/colorize/models"
)

// TerminalRenderer paints annotations as colored swatches on a terminal
// writer. Repeated paints with an unchanged map are suppressed, so the
// surface satisfies the Renderer idempotence contract even for an
// append-only writer.
type TerminalRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	painted map[models.DocKey]string

	pathStyle lipgloss.Style
	lineStyle lipgloss.Style
}

// NewTerminalRenderer creates a renderer writing to out.
func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	return &TerminalRenderer{
		out:       out,
		painted:   make(map[models.DocKey]string),
		pathStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		lineStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
	}
}

// Paint renders one line per annotated source line, a swatch per live
// annotation. Cursor lines are marked rather than skipped.
func (r *TerminalRenderer) Paint(doc models.DocKey, live models.LineAnnotations, cursorLines []int) error {
	rendered := r.render(doc, live, cursorLines)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.painted[doc] == rendered {
		return nil
	}
	r.painted[doc] = rendered
	if rendered == "" {
		return nil
	}
	if _, err := fmt.Fprint(r.out, rendered); err != nil {
		return fmt.Errorf("failed to paint %s: %w", doc, err)
	}
	return nil
}

// Unpaint forgets the document so the next Paint renders afresh.
func (r *TerminalRenderer) Unpaint(doc models.DocKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.painted, doc)
	return nil
}

func (r *TerminalRenderer) render(doc models.DocKey, live models.LineAnnotations, cursorLines []int) string {
	lines := live.Lines()
	sort.Ints(lines)
	cursor := lo.SliceToMap(cursorLines, func(l int) (int, bool) { return l, true })

	var sb strings.Builder
	for _, line := range lines {
		anns := lo.Filter(live[line], func(a *models.Annotation, _ int) bool {
			return !a.Disposed()
		})
		if len(anns) == 0 {
			continue
		}

		sb.WriteString(r.pathStyle.Render(string(doc)))
		sb.WriteString(r.lineStyle.Render(fmt.Sprintf(":%d ", line)))
		for _, a := range anns {
			swatch := lipgloss.NewStyle().Background(lipgloss.Color(a.Color)).Render("  ")
			sb.WriteString(fmt.Sprintf("%s %s ", swatch, a.Color))
		}
		if cursor[line] {
			sb.WriteString(r.lineStyle.Render("(cursor)"))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
