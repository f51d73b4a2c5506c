package gosseract_service

import (
	"path/filepath"
	"strings"
)

// LanguagesIn lists the language codes of the traineddata files matching
// pattern.
func LanguagesIn(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	langs := make([]string, 0, len(files))
	for _, f := range files {
		langs = append(langs, strings.TrimSuffix(filepath.Base(f), ".traineddata"))
	}
	return langs, nil
}

// MissingLanguages returns the languages of a tesseract spec such as
// "eng+fra" that are not in available.
func MissingLanguages(lang string, available []string) []string {
	have := make(map[string]bool, len(available))
	for _, l := range available {
		have[l] = true
	}
	var missing []string
	for _, l := range strings.Split(lang, "+") {
		if l = strings.TrimSpace(l); l != "" && !have[l] {
			missing = append(missing, l)
		}
	}
	return missing
}
