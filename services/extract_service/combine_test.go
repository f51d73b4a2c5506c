package extract_service

import (
	"testing"

	"github.com/serisow/docextract/extract_type"
)

func TestCombineExtractedContent(t *testing.T) {
	tests := []struct {
		name     string
		contents []extract_type.ExtractedContent
		expected string
	}{
		{
			name:     "empty input",
			contents: nil,
			expected: "",
		},
		{
			name: "two qualifying entries",
			contents: []extract_type.ExtractedContent{
				{Text: "Hello", Confidence: 0.95, FileType: extract_type.FileTypePDF},
				{Text: "World", Confidence: 1.0, FileType: extract_type.FileTypeTxt},
			},
			expected: "[PDF] Hello\n\n---\n\n[TXT] World",
		},
		{
			name: "threshold is exclusive",
			contents: []extract_type.ExtractedContent{
				{Text: "A", Confidence: 0.5, FileType: extract_type.FileTypeTxt},
				{Text: "B", Confidence: 0.51, FileType: extract_type.FileTypeTxt},
			},
			expected: "[TXT] B",
		},
		{
			name: "empty text is dropped",
			contents: []extract_type.ExtractedContent{
				{Text: "", Confidence: 1.0, FileType: extract_type.FileTypeTxt},
				{Text: "scan", Confidence: 0.87, FileType: extract_type.FileTypeImage},
			},
			expected: "[IMAGE] scan",
		},
		{
			name: "failures are dropped",
			contents: []extract_type.ExtractedContent{
				{Text: "", Confidence: 0, FileType: extract_type.FileTypeUnknown, ExtractionMethod: extract_type.MethodUnsupported, Error: "not supported"},
			},
			expected: "",
		},
		{
			name: "long low-confidence text is still dropped",
			contents: []extract_type.ExtractedContent{
				{Text: "a very long body of OCR text that nobody trusts", Confidence: 0.2, FileType: extract_type.FileTypeImage},
			},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombineExtractedContent(tt.contents); got != tt.expected {
				t.Errorf("CombineExtractedContent() = %q, want %q", got, tt.expected)
			}
		})
	}
}
