package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/colorize/models"
)

func TestRegexExtractor_FindsColorLiterals(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[int][]string
	}{
		{
			name:     "six digit hex",
			content:  "body { color: #336699; }",
			expected: map[int][]string{1: {"#336699"}},
		},
		{
			name:     "short hex",
			content:  "a { color: #fff; }",
			expected: map[int][]string{1: {"#fff"}},
		},
		{
			name:     "rgb and rgba",
			content:  "a { color: rgb(1, 2, 3); background: rgba(4, 5, 6, 0.5); }",
			expected: map[int][]string{1: {"rgb(1, 2, 3)", "rgba(4, 5, 6, 0.5)"}},
		},
		{
			name:    "multiple lines",
			content: "a { color: #111111; }\nb { }\nc { color: #222222; }",
			expected: map[int][]string{
				1: {"#111111"},
				3: {"#222222"},
			},
		},
		{
			name:     "no colors",
			content:  "a { margin: 0; }",
			expected: map[int][]string{},
		},
	}

	extractor := NewRegexExtractor(nil, 0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := extractor.Extract(context.Background(), "test.css", tt.content, LineRange{})
			require.NoError(t, err)

			require.Len(t, result, len(tt.expected))
			for line, colors := range tt.expected {
				require.Len(t, result[line], len(colors), "line %d", line)
				for i, c := range colors {
					assert.Equal(t, c, result[line][i].Color)
				}
			}
		})
	}
}

func TestRegexExtractor_ReportsColumnSpans(t *testing.T) {
	extractor := NewRegexExtractor(nil, 0)
	content := "color: #abcdef;"

	result, err := extractor.Extract(context.Background(), "test.css", content, LineRange{})
	require.NoError(t, err)
	require.Len(t, result[1], 1)

	r := result[1][0].Range
	assert.Equal(t, 1, r.Line)
	assert.Equal(t, "#abcdef", content[r.StartCol:r.EndCol])
}

func TestRegexExtractor_LineRangeRestriction(t *testing.T) {
	extractor := NewRegexExtractor(nil, 0)
	content := "#111\n#222\n#333\n#444"

	result, err := extractor.Extract(context.Background(), "test.css", content, LineRange{Start: 2, End: 3})
	require.NoError(t, err)

	assert.NotContains(t, result, 1)
	assert.Contains(t, result, 2)
	assert.Contains(t, result, 3)
	assert.NotContains(t, result, 4)
}

func TestRegexExtractor_LanguageGating(t *testing.T) {
	extractor := NewRegexExtractor([]string{"css", "scss"}, 0)

	result, err := extractor.Extract(context.Background(), "main.go", `c := "#336699"`, LineRange{})
	require.NoError(t, err)
	assert.Empty(t, result, "non-activated languages yield no annotations")

	result, err = extractor.Extract(context.Background(), "style.scss", "a { color: #336699; }", LineRange{})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestRegexExtractor_SizeCeilingIsAnErrorNotTruncation(t *testing.T) {
	extractor := NewRegexExtractor(nil, 1024)
	content := strings.Repeat("a { color: #336699; }\n", 100)

	result, err := extractor.Extract(context.Background(), "big.css", content, LineRange{})
	require.Error(t, err)
	assert.True(t, models.IsSizeLimit(err))
	assert.Nil(t, result)
}
