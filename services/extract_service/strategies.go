package extract_service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/serisow/docextract/extract_type"
)

func (s *Service) extractText(ctx context.Context, locator string, res *extract_type.ExtractedContent) error {
	res.ExtractionMethod = extract_type.MethodFetch

	data, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return err
	}

	res.Text = strings.TrimSpace(string(data))
	res.Confidence = TextConfidence
	return nil
}

func (s *Service) extractPDF(ctx context.Context, locator string, res *extract_type.ExtractedContent) error {
	engine, err := engineAs[extract_type.PDFEngine](ctx, s.registry, StrategyPDF)
	if err != nil {
		return err
	}
	res.ExtractionMethod = engine.Name()

	data, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return err
	}

	pages, err := engine.Pages(ctx, data)
	if err != nil {
		return err
	}
	s.logger.Debug("Extracted PDF pages",
		slog.String("locator", locator),
		slog.Int("total_pages", len(pages)))

	res.Text = JoinPages(pages)
	res.Confidence = PDFConfidence
	return nil
}

// JoinPages joins the text items of each page with single spaces and the
// pages with newlines, keeping page order.
func JoinPages(pages [][]string) string {
	var b strings.Builder
	for i, items := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Join(items, " "))
	}
	return strings.TrimSpace(b.String())
}

func (s *Service) extractWord(ctx context.Context, locator string, res *extract_type.ExtractedContent) error {
	engine, err := engineAs[extract_type.WordEngine](ctx, s.registry, StrategyWord)
	if err != nil {
		return err
	}
	res.ExtractionMethod = engine.Name()

	data, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return err
	}

	text, err := engine.RawText(ctx, data)
	if err != nil {
		return err
	}

	res.Text = strings.TrimSpace(text)
	res.Confidence = WordConfidence
	return nil
}

func (s *Service) extractImage(ctx context.Context, locator string, res *extract_type.ExtractedContent) error {
	engine, err := engineAs[extract_type.OCREngine](ctx, s.registry, StrategyOCR)
	if err != nil {
		return err
	}
	res.ExtractionMethod = engine.Name()

	data, err := s.fetcher.Fetch(ctx, locator)
	if err != nil {
		return err
	}

	ocr, err := engine.Recognize(ctx, data, s.ocrLang, s.ocrProgress(locator))
	if err != nil {
		return err
	}

	res.Text = strings.TrimSpace(ocr.Text)
	res.Confidence = PercentToFraction(ocr.Confidence)
	return nil
}

func (s *Service) ocrProgress(locator string) extract_type.OCRProgress {
	return func(status string, progress float64) {
		s.logger.Debug("OCR progress",
			slog.String("locator", locator),
			slog.String("status", status),
			slog.Float64("progress", progress))
	}
}

// PercentToFraction converts a 0-100 engine score to [0,1].
func PercentToFraction(percent float64) float64 {
	f := percent / 100
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
