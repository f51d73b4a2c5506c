package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment  string
	Domains      []string
	CertCacheDir string
	HTTPPort     string
	HTTPSPort    string
	CORSOrigins  []string

	DatabaseURL string

	LogDir   string
	LogLevel slog.Level

	FetchTimeout time.Duration
	MaxFileSize  int64
	MaxBatchSize int

	OCRLanguage   string
	TesseractPath string
	TessdataDir   string
	OCRPSM        int
	PdftotextPath string
	PDFEngine     string

	JobRetention       time.Duration
	JobCleanupInterval time.Duration
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		Domains:      getEnvAsList("DOMAIN", []string{"example.com"}),
		CertCacheDir: getEnv("CERT_CACHE_DIR", "../docextract_certs"),
		HTTPPort:     getEnv("HTTP_PORT", "8086"),
		HTTPSPort:    getEnv("HTTPS_PORT", "443"),
		CORSOrigins:  getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		LogDir:   getEnv("LOG_DIR", "logs/extract"),
		LogLevel: parseLevel(getEnv("LOG_LEVEL", "info")),

		FetchTimeout: time.Duration(getEnvAsInt("FETCH_TIMEOUT", 60)) * time.Second,
		MaxFileSize:  int64(getEnvAsInt("MAX_FILE_SIZE_MB", 50)) << 20,
		MaxBatchSize: getEnvAsInt("MAX_BATCH_SIZE", 20),

		OCRLanguage:   getEnv("OCR_LANGUAGE", "eng"),
		TesseractPath: getEnv("TESSERACT_PATH", "tesseract"),
		TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
		OCRPSM:        getEnvAsInt("OCR_PSM", 0),
		PdftotextPath: getEnv("PDFTOTEXT_PATH", "pdftotext"),
		PDFEngine:     getEnv("PDF_ENGINE", "pdftotext"),

		JobRetention:       time.Duration(getEnvAsInt("JOB_RETENTION_HOURS", 24)) * time.Hour,
		JobCleanupInterval: time.Duration(getEnvAsInt("JOB_CLEANUP_MINUTES", 60)) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
