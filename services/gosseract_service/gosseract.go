//go:build ocr

package gosseract_service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"
	"github.com/serisow/docextract/extract_type"
)

const EngineName = "gosseract"

// Engine runs tesseract in-process through github.com/otiai10/gosseract.
// gosseract clients are not safe for concurrent use, so each call gets its
// own client.
type Engine struct {
	tessdataDir string
	logger      *slog.Logger
}

func NewEngine(tessdataDir string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{tessdataDir: tessdataDir, logger: logger}
}

func (e *Engine) Name() string { return EngineName }

func (e *Engine) newClient(lang string) (*gosseract.Client, error) {
	client := gosseract.NewClient()
	if e.tessdataDir != "" {
		if err := client.SetTessdataPrefix(e.tessdataDir); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language %q: %w", lang, err)
	}
	return client, nil
}

func (e *Engine) Recognize(ctx context.Context, image []byte, lang string, progress extract_type.OCRProgress) (extract_type.OCRResult, error) {
	report := func(status string, p float64) {
		if progress != nil {
			progress(status, p)
		}
	}

	report("loading", 0)
	client, err := e.newClient(lang)
	if err != nil {
		return extract_type.OCRResult{}, err
	}
	defer client.Close()

	if err := client.SetImageFromBytes(image); err != nil {
		return extract_type.OCRResult{}, fmt.Errorf("failed to load image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return extract_type.OCRResult{}, err
	}

	report("recognizing", 0.2)
	text, err := client.Text()
	if err != nil {
		return extract_type.OCRResult{}, fmt.Errorf("failed to recognize text: %w", err)
	}

	report("scoring", 0.7)
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		e.logger.Warn("Failed to compute OCR confidence",
			slog.String("error", err.Error()))
		report("done", 1)
		return extract_type.OCRResult{Text: text}, nil
	}

	var sum float64
	for _, box := range boxes {
		sum += box.Confidence
	}
	conf := 0.0
	if len(boxes) > 0 {
		conf = sum / float64(len(boxes))
	}

	report("done", 1)
	return extract_type.OCRResult{Text: text, Confidence: conf}, nil
}

// NewLoader checks that traineddata exists for every language in lang
// before handing out the engine. SetLanguage alone does not look at the
// tessdata directory, so a missing model would only show up on the first
// Recognize call.
func NewLoader(tessdataDir, lang string, logger *slog.Logger) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		available, err := availableLanguages(tessdataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to list tesseract languages: %w", err)
		}
		if missing := MissingLanguages(lang, available); len(missing) > 0 {
			return nil, fmt.Errorf("tesseract language data not installed: %v", missing)
		}

		engine := NewEngine(tessdataDir, logger)
		client, err := engine.newClient(lang)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		engine.logger.Debug("Loaded gosseract",
			slog.String("tesseract_version", client.Version()),
			slog.Any("languages", available))
		return engine, nil
	}
}

func availableLanguages(tessdataDir string) ([]string, error) {
	if tessdataDir == "" {
		return gosseract.GetAvailableLanguages()
	}
	return LanguagesIn(filepath.Join(tessdataDir, "*.traineddata"))
}
