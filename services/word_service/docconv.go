package word_service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"code.sajari.com/docconv/v2"
	"github.com/serisow/docextract/services/command_service"
)

const DocconvEngineName = "docconv"

// docconv shells out to wvText for legacy .doc payloads.
var wvTextBinary = "wvText"

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DocconvEngine converts Word documents with code.sajari.com/docconv. OOXML
// (.docx) payloads are read in-process; legacy OLE (.doc) payloads go
// through docconv's wvText integration.
type DocconvEngine struct {
	logger *slog.Logger
}

func NewDocconvEngine(logger *slog.Logger) *DocconvEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocconvEngine{logger: logger}
}

func (e *DocconvEngine) Name() string { return DocconvEngineName }

func (e *DocconvEngine) RawText(ctx context.Context, data []byte) (string, error) {
	e.logger.Debug("Starting Word document text extraction",
		slog.Int("data_size", len(data)))

	var (
		body string
		meta map[string]string
		err  error
	)
	switch {
	case bytes.HasPrefix(data, zipMagic):
		body, meta, err = docconv.ConvertDocx(bytes.NewReader(data))
	case bytes.HasPrefix(data, oleMagic):
		body, meta, err = docconv.ConvertDoc(bytes.NewReader(data))
	default:
		return "", fmt.Errorf("not a Word document")
	}
	if err != nil {
		e.logger.Error("Failed to convert Word document",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to convert Word document: %w", err)
	}

	e.logger.Debug("Converted Word document",
		slog.Int("text_length", len(body)),
		slog.Int("metadata_fields", len(meta)))
	return body, nil
}

// NewDocconvLoader hands out the docconv engine only when wvText is
// installed. Without it docconv cannot read .doc files, and the in-process
// OOXML reader covers .docx on its own.
func NewDocconvLoader(logger *slog.Logger) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		if _, err := command_service.LookPath(wvTextBinary); err != nil {
			return nil, fmt.Errorf("wvText not available: %w", err)
		}
		return NewDocconvEngine(logger), nil
	}
}
