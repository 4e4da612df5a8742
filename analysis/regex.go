package analysis

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flanksource/colorize/models"
)

// DefaultMaxFileSize is the per-file byte ceiling applied when none is
// configured (1 MiB).
const DefaultMaxFileSize = 1 << 20

var (
	hexPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{3,4})\b`)
	rgbPattern = regexp.MustCompile(`rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(?:,\s*(?:0|1|0?\.\d+)\s*)?\)`)
)

// RegexExtractor is the default in-process Extractor. It recognizes hex and
// rgb()/rgba() color literals on a per-line basis and activates only for
// the configured language extensions.
type RegexExtractor struct {
	languages   map[string]bool
	maxFileSize int64
}

// NewRegexExtractor creates an extractor activated for the given file
// extensions (e.g. "css", "scss", "html"). An empty language set activates
// on every file. maxFileSize <= 0 falls back to DefaultMaxFileSize.
func NewRegexExtractor(languages []string, maxFileSize int64) *RegexExtractor {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	langs := make(map[string]bool, len(languages))
	for _, l := range languages {
		langs[strings.ToLower(strings.TrimPrefix(l, "."))] = true
	}
	return &RegexExtractor{languages: langs, maxFileSize: maxFileSize}
}

// Extract finds color literals in content, line by line, restricted to the
// given line range. Content beyond the byte ceiling is rejected with a
// size-limit error, never truncated.
func (e *RegexExtractor) Extract(ctx context.Context, doc models.DocKey, content string, lines LineRange) (models.LineAnnotations, error) {
	if !e.activeFor(doc) {
		return models.NewLineAnnotations(), nil
	}
	if int64(len(content)) > e.maxFileSize {
		return nil, models.NewSizeLimitError(string(doc), int64(len(content)), e.maxFileSize)
	}

	result := models.NewLineAnnotations()
	for i, line := range strings.Split(content, "\n") {
		lineNum := i + 1
		if !lines.Contains(lineNum) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, match := range e.matchLine(line) {
			result.Append(lineNum, models.NewAnnotation(models.Range{
				Line:     lineNum,
				StartCol: match[0],
				EndCol:   match[1],
			}, line[match[0]:match[1]]))
		}
	}
	return result, nil
}

func (e *RegexExtractor) activeFor(doc models.DocKey) bool {
	if len(e.languages) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(string(doc)), "."))
	return e.languages[ext]
}

// matchLine returns [start, end) column pairs for every color literal on
// the line, hex matches first then rgb(), without overlapping spans.
func (e *RegexExtractor) matchLine(line string) [][2]int {
	var spans [][2]int
	for _, m := range hexPattern.FindAllStringIndex(line, -1) {
		spans = append(spans, [2]int{m[0], m[1]})
	}
	for _, m := range rgbPattern.FindAllStringIndex(line, -1) {
		if !overlaps(spans, m[0], m[1]) {
			spans = append(spans, [2]int{m[0], m[1]})
		}
	}
	return spans
}

func overlaps(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}
