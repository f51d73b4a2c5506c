package bootstrap

import (
	"log/slog"

	"github.com/serisow/docextract/config"
	"github.com/serisow/docextract/plugin_registry"
	"github.com/serisow/docextract/services/command_service"
	"github.com/serisow/docextract/services/extract_service"
	"github.com/serisow/docextract/services/ocr_service"
	"github.com/serisow/docextract/services/pdf_service"
	"github.com/serisow/docextract/services/word_service"
)

// PDF engine preferences accepted in PDF_ENGINE.
const (
	PDFEnginePdftotext = "pdftotext"
	PDFEngineNative    = "native"
)

// RegisterEngines registers the engines for each extraction strategy,
// primary first. Every primary has a load-time failure mode (missing binary,
// library or language data). The last engine of a chain is the one that
// cannot fail to load. Nothing is loaded until the first extraction needs it.
func RegisterEngines(registry *plugin_registry.PluginRegistry, cfg config.Config, logger *slog.Logger) {
	runner := command_service.NewExecRunner(logger)

	// ledongthuc/pdf is pure Go and always loads, so it only ever closes
	// the chain.
	if cfg.PDFEngine != PDFEngineNative {
		registry.RegisterEngine(extract_service.StrategyPDF, pdf_service.CLIEngineName,
			pdf_service.NewCLILoader(cfg.PdftotextPath, runner, logger))
	}
	registry.RegisterEngine(extract_service.StrategyPDF, pdf_service.NativeEngineName,
		pdf_service.NewNativeLoader(logger))

	registry.RegisterEngine(extract_service.StrategyWord, word_service.DocconvEngineName,
		word_service.NewDocconvLoader(logger))
	registry.RegisterEngine(extract_service.StrategyWord, word_service.OOXMLEngineName,
		word_service.NewOOXMLLoader())

	// gosseract is only compiled in with the "ocr" build tag
	registerInProcessOCR(registry, cfg, logger)
	registry.RegisterEngine(extract_service.StrategyOCR, ocr_service.CLIEngineName,
		ocr_service.NewCLILoader(ocr_service.Config{
			Tesseract:   cfg.TesseractPath,
			TessdataDir: cfg.TessdataDir,
			PSM:         cfg.OCRPSM,
		}, runner, logger))
}

// NewExtractService builds the extraction service with every engine
// registered. allowLocal enables file:// and bare path locators; the HTTP
// server leaves it off.
func NewExtractService(cfg config.Config, allowLocal bool, logger *slog.Logger) *extract_service.Service {
	registry := plugin_registry.NewPluginRegistry(logger)
	RegisterEngines(registry, cfg, logger)

	fetcher := extract_service.NewHTTPFetcher(cfg.FetchTimeout, cfg.MaxFileSize)
	fetcher.AllowLocal = allowLocal
	return extract_service.NewService(fetcher, registry, cfg.OCRLanguage, logger)
}
