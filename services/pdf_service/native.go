package pdf_service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

const NativeEngineName = "ledongthuc/pdf"

// NativeEngine reads PDFs in-process with github.com/ledongthuc/pdf.
type NativeEngine struct {
	logger *slog.Logger
}

func NewNativeEngine(logger *slog.Logger) *NativeEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeEngine{logger: logger}
}

func (e *NativeEngine) Name() string { return NativeEngineName }

// Pages returns the text runs of every page, from page 1 to the last one.
// Pages with no content yield an empty slice so page positions are kept.
func (e *NativeEngine) Pages(ctx context.Context, data []byte) (pages [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("Failed to create PDF reader",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	totalPage := reader.NumPage()
	e.logger.Debug("Starting PDF text extraction",
		slog.Int("total_pages", totalPage))

	pages = make([][]string, 0, totalPage)
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered",
				slog.Int("page_number", pageIndex))
			pages = append(pages, []string{})
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			e.logger.Error("Failed to extract text from page",
				slog.Int("page_number", pageIndex),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to extract text from page %d: %w", pageIndex, err)
		}

		var items []string
		for _, row := range rows {
			for _, word := range row.Content {
				if s := strings.TrimSpace(word.S); s != "" {
					items = append(items, s)
				}
			}
		}

		e.logger.Debug("Extracted text from page",
			slog.Int("page_number", pageIndex),
			slog.Int("items", len(items)))
		pages = append(pages, items)
	}

	return pages, nil
}

// NewNativeLoader returns a plugin_registry.EngineLoader compatible function.
func NewNativeLoader(logger *slog.Logger) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		return NewNativeEngine(logger), nil
	}
}
