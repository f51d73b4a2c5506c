//go:build !ocr

package bootstrap

import (
	"log/slog"

	"github.com/serisow/docextract/config"
	"github.com/serisow/docextract/plugin_registry"
)

func registerInProcessOCR(registry *plugin_registry.PluginRegistry, cfg config.Config, logger *slog.Logger) {}
