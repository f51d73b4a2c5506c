package extract_service

import (
	"fmt"
	"strings"

	"github.com/serisow/docextract/extract_type"
)

// CombineThreshold is the confidence an entry must exceed to be combined.
const CombineThreshold = 0.5

const combineSeparator = "\n\n---\n\n"

// CombineExtractedContent joins the usable entries as "[TYPE] text" blocks.
// Entries with no text or with confidence <= CombineThreshold are dropped.
func CombineExtractedContent(contents []extract_type.ExtractedContent) string {
	parts := make([]string, 0, len(contents))
	for _, c := range contents {
		if c.Text == "" || c.Confidence <= CombineThreshold {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", strings.ToUpper(string(c.FileType)), c.Text))
	}
	return strings.Join(parts, combineSeparator)
}
