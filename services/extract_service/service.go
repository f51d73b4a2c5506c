package extract_service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/serisow/docextract/extract_type"
	"github.com/serisow/docextract/plugin_registry"
)

// Engine strategies registered in the plugin registry.
const (
	StrategyPDF  = "pdf"
	StrategyWord = "docx"
	StrategyOCR  = "ocr"
)

// Fixed confidences reported by the deterministic strategies.
const (
	TextConfidence = 1.0
	PDFConfidence  = 0.95
	WordConfidence = 0.9
)

const DefaultOCRLanguage = "eng"

type Service struct {
	fetcher  Fetcher
	registry *plugin_registry.PluginRegistry
	ocrLang  string
	logger   *slog.Logger
}

func NewService(fetcher Fetcher, registry *plugin_registry.PluginRegistry, ocrLang string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if ocrLang == "" {
		ocrLang = DefaultOCRLanguage
	}
	return &Service{
		fetcher:  fetcher,
		registry: registry,
		ocrLang:  ocrLang,
		logger:   logger,
	}
}

// ExtractContent classifies locator and runs the matching strategy. It never
// returns an error: every failure is reported through the Error field.
func (s *Service) ExtractContent(ctx context.Context, locator string) (result extract_type.ExtractedContent) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Extraction aborted",
				slog.String("locator", locator),
				slog.Any("panic", r))
			result = extract_type.Failure(extract_type.FileTypeUnknown, extract_type.MethodFailed,
				fmt.Errorf("extraction aborted: %v", r))
		}
	}()

	fileType := ClassifyFileType(locator)
	s.logger.Debug("Starting content extraction",
		slog.String("locator", locator),
		slog.String("file_type", string(fileType)))

	switch fileType {
	case extract_type.FileTypePDF:
		result = s.run(ctx, fileType, locator, s.extractPDF)
	case extract_type.FileTypeDocx:
		result = s.run(ctx, fileType, locator, s.extractWord)
	case extract_type.FileTypeTxt:
		result = s.run(ctx, fileType, locator, s.extractText)
	case extract_type.FileTypeImage:
		result = s.run(ctx, fileType, locator, s.extractImage)
	default:
		s.logger.Warn("Unsupported file type",
			slog.String("locator", locator),
			slog.String("file_type", string(fileType)))
		return extract_type.Unsupported(fileType)
	}

	if result.Failed() {
		s.logger.Error("Content extraction failed",
			slog.String("locator", locator),
			slog.String("file_type", string(fileType)),
			slog.String("method", result.ExtractionMethod),
			slog.String("error", result.Error))
	} else {
		s.logger.Info("Content extraction completed",
			slog.String("locator", locator),
			slog.String("file_type", string(fileType)),
			slog.String("method", result.ExtractionMethod),
			slog.Float64("confidence", result.Confidence),
			slog.Int("text_length", len(result.Text)),
			slog.Duration("duration", time.Since(start)))
	}
	return result
}

// ExtractMultipleFiles extracts each locator in order, one at a time. A
// failed file does not stop the rest.
func (s *Service) ExtractMultipleFiles(ctx context.Context, locators []string) []extract_type.ExtractedContent {
	results := make([]extract_type.ExtractedContent, 0, len(locators))
	failed := 0
	for _, locator := range locators {
		res := s.ExtractContent(ctx, locator)
		if res.Failed() {
			failed++
		}
		results = append(results, res)
	}

	s.logger.Info("Batch extraction completed",
		slog.Int("files", len(locators)),
		slog.Int("failed", failed))
	return results
}

// strategyFunc fills res as it goes, so the engine name is already set if
// the engine panics.
type strategyFunc func(ctx context.Context, locator string, res *extract_type.ExtractedContent) error

// run executes a strategy and turns its errors, and any panic raised inside
// an extraction library, into a failed result.
func (s *Service) run(ctx context.Context, fileType extract_type.FileType, locator string, fn strategyFunc) (result extract_type.ExtractedContent) {
	var res extract_type.ExtractedContent
	method := func() string {
		if res.ExtractionMethod != "" {
			return res.ExtractionMethod
		}
		return extract_type.MethodFailed
	}
	defer func() {
		if r := recover(); r != nil {
			result = extract_type.Failure(fileType, method(),
				fmt.Errorf("%s extraction failed: %v", fileType, r))
		}
	}()

	if err := fn(ctx, locator, &res); err != nil {
		return extract_type.Failure(fileType, method(), fmt.Errorf("%s extraction failed: %w", fileType, err))
	}
	res.FileType = fileType
	return res
}

func engineAs[T any](ctx context.Context, registry *plugin_registry.PluginRegistry, strategy string) (T, error) {
	var zero T
	if registry == nil {
		return zero, fmt.Errorf("no engine registry configured for %s", strategy)
	}
	engine, err := registry.Engine(ctx, strategy)
	if err != nil {
		return zero, err
	}
	typed, ok := engine.(T)
	if !ok {
		return zero, fmt.Errorf("%s engine has unexpected type %T", strategy, engine)
	}
	return typed, nil
}
