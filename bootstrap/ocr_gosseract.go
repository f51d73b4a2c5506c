//go:build ocr

package bootstrap

import (
	"log/slog"

	"github.com/serisow/docextract/config"
	"github.com/serisow/docextract/plugin_registry"
	"github.com/serisow/docextract/services/extract_service"
	"github.com/serisow/docextract/services/gosseract_service"
)

func registerInProcessOCR(registry *plugin_registry.PluginRegistry, cfg config.Config, logger *slog.Logger) {
	registry.RegisterEngine(extract_service.StrategyOCR, gosseract_service.EngineName,
		gosseract_service.NewLoader(cfg.TessdataDir, cfg.OCRLanguage, logger))
}
