package extract_service

import (
	"strings"

	"github.com/serisow/docextract/extract_type"
)

var imageMarkers = []string{".jpg", ".jpeg", ".png", ".gif"}

// ClassifyFileType derives the file type from substrings of the locator,
// case-insensitively. The first matching rule wins, in the order
// pdf, doc/docx, txt, image. It never fails.
//
// ".doc" is a prefix of ".docx", so both are one rule.
func ClassifyFileType(locator string) extract_type.FileType {
	lower := strings.ToLower(locator)

	switch {
	case strings.Contains(lower, ".pdf"):
		return extract_type.FileTypePDF
	case strings.Contains(lower, ".doc"):
		return extract_type.FileTypeDocx
	case strings.Contains(lower, ".txt"):
		return extract_type.FileTypeTxt
	}

	for _, marker := range imageMarkers {
		if strings.Contains(lower, marker) {
			return extract_type.FileTypeImage
		}
	}
	return extract_type.FileTypeUnknown
}
