package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/serisow/docextract/config"
	"github.com/serisow/docextract/extract_type"
	"github.com/serisow/docextract/handlers"
)

type nopExtractor struct{}

func (nopExtractor) ExtractContent(ctx context.Context, locator string) extract_type.ExtractedContent {
	return extract_type.Unsupported(extract_type.FileTypeUnknown)
}

func (nopExtractor) ExtractMultipleFiles(ctx context.Context, locators []string) []extract_type.ExtractedContent {
	return nil
}

func TestSetupRoutes(t *testing.T) {
	h := handlers.NewExtractHandler(nopExtractor{}, nil, nil, 0, nil)

	tests := []struct {
		name            string
		withExtractions bool
		method          string
		path            string
		expectedStatus  int
	}{
		{"health", false, "GET", "/health", http.StatusOK},
		{"extract wrong method", false, "GET", "/extract", http.StatusMethodNotAllowed},
		{"unknown job", false, "GET", "/extract/jobs/abc", http.StatusNotFound},
		{"extractions disabled", false, "GET", "/extractions/abc", http.StatusNotFound},
		{"extractions enabled", true, "GET", "/extractions/abc", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SetupRoutes(h, tt.withExtractions)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
		})
	}
}

func TestWriteTimeout(t *testing.T) {
	cfg := config.Config{FetchTimeout: 30 * time.Second}
	if got := WriteTimeout(cfg); got != 150*time.Second {
		t.Errorf("WriteTimeout() = %v, want 2m30s", got)
	}
}
