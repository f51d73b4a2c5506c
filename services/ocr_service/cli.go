package ocr_service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/serisow/docextract/extract_type"
	"github.com/serisow/docextract/services/command_service"
)

const CLIEngineName = "tesseract-cli"

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	TessdataDir string
	PSM         int // page segmentation mode; 0 keeps tesseract's default
}

// CLIEngine runs the tesseract binary: once for the text, once in TSV mode
// for the mean word confidence.
type CLIEngine struct {
	cfg    Config
	runner command_service.Runner
	logger *slog.Logger
}

func NewCLIEngine(cfg Config, runner command_service.Runner, logger *slog.Logger) *CLIEngine {
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = command_service.NewExecRunner(logger)
	}
	return &CLIEngine{cfg: cfg, runner: runner, logger: logger}
}

func (e *CLIEngine) Name() string { return CLIEngineName }

func (e *CLIEngine) Recognize(ctx context.Context, image []byte, lang string, progress extract_type.OCRProgress) (extract_type.OCRResult, error) {
	report := func(status string, p float64) {
		if progress != nil {
			progress(status, p)
		}
	}

	report("loading", 0)
	tmp, err := os.CreateTemp("", "docextract-ocr-*")
	if err != nil {
		return extract_type.OCRResult{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return extract_type.OCRResult{}, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return extract_type.OCRResult{}, fmt.Errorf("failed to close temp file: %w", err)
	}

	report("recognizing", 0.2)
	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(tmp.Name(), lang)...)
	if err != nil {
		return extract_type.OCRResult{}, fmt.Errorf("tesseract: %w: %s", err, command_service.Truncate(strings.TrimSpace(string(errb)), 512))
	}
	text := string(out)

	report("scoring", 0.7)
	conf, err := e.meanConfidence(ctx, tmp.Name(), lang)
	if err != nil {
		// the text is still usable; report it with no confidence
		e.logger.Warn("Failed to compute OCR confidence",
			slog.String("error", err.Error()))
		conf = 0
	}

	report("done", 1)
	return extract_type.OCRResult{Text: text, Confidence: conf}, nil
}

func (e *CLIEngine) args(path, lang string, extra ...string) []string {
	args := []string{path, "stdout", "-l", lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return append(args, extra...)
}

// meanConfidence runs tesseract in TSV mode and returns the mean word
// confidence on tesseract's 0-100 scale.
func (e *CLIEngine) meanConfidence(ctx context.Context, path, lang string) (float64, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.args(path, lang, "tsv")...)
	if err != nil {
		return 0, fmt.Errorf("tesseract TSV: %w: %s", err, command_service.Truncate(string(errb), 512))
	}
	return MeanTSVConfidence(string(out)), nil
}

// MeanTSVConfidence averages the conf column of tesseract TSV output,
// skipping the header and rows without a word confidence (-1).
func MeanTSVConfidence(tsv string) float64 {
	var sum, n float64
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := strings.TrimSpace(cols[10])
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil && v >= 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

// NewCLILoader checks for the tesseract binary before handing out the engine.
func NewCLILoader(cfg Config, runner command_service.Runner, logger *slog.Logger) func(ctx context.Context) (any, error) {
	return func(ctx context.Context) (any, error) {
		engine := NewCLIEngine(cfg, runner, logger)
		if _, err := command_service.LookPath(engine.cfg.Tesseract); err != nil {
			return nil, fmt.Errorf("tesseract not available: %w", err)
		}
		return engine, nil
	}
}
