package pdf_service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/serisow/docextract/services/command_service"
)

const CLIEngineName = "pdftotext"

// CLIEngine shells out to poppler's pdftotext. It is the fallback when the
// in-process reader cannot be loaded.
type CLIEngine struct {
	binary string
	runner command_service.Runner
	logger *slog.Logger
}

func NewCLIEngine(binary string, runner command_service.Runner, logger *slog.Logger) *CLIEngine {
	if binary == "" {
		binary = "pdftotext"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = command_service.NewExecRunner(logger)
	}
	return &CLIEngine{binary: binary, runner: runner, logger: logger}
}

func (e *CLIEngine) Name() string { return CLIEngineName }

func (e *CLIEngine) Pages(ctx context.Context, data []byte) ([][]string, error) {
	tmp, err := os.CreateTemp("", "docextract-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err := os.Remove(tmp.Name()); err != nil {
			e.logger.Warn("Failed to remove temp file",
				slog.String("file", tmp.Name()),
				slog.String("error", err.Error()))
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.binary, "-enc", "UTF-8", "-eol", "unix", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w: %s", err, command_service.Truncate(strings.TrimSpace(string(errb)), 512))
	}

	return SplitPages(string(out)), nil
}

// SplitPages splits pdftotext output on form feeds, one entry per page,
// with the non-empty lines of each page as its items.
func SplitPages(out string) [][]string {
	raw := strings.Split(out, "\f")
	// pdftotext terminates every page with a form feed
	if len(raw) > 1 && strings.TrimSpace(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}

	pages := make([][]string, 0, len(raw))
	for _, page := range raw {
		items := []string{}
		for _, line := range strings.Split(page, "\n") {
			if s := strings.Join(strings.Fields(line), " "); s != "" {
				items = append(items, s)
			}
		}
		pages = append(pages, items)
	}
	return pages
}

// NewCLILoader checks that the pdftotext binary is installed before
// handing out the engine.
func NewCLILoader(binary string, runner command_service.Runner, logger *slog.Logger) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		engine := NewCLIEngine(binary, runner, logger)
		if _, err := command_service.LookPath(engine.binary); err != nil {
			return nil, fmt.Errorf("pdftotext not available: %w", err)
		}
		return engine, nil
	}
}
