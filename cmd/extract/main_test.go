package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/serisow/docextract/extract_type"
)

func TestPrintResults(t *testing.T) {
	results := []extract_type.ExtractedContent{
		{Text: "Hello", Confidence: 1, FileType: extract_type.FileTypeTxt, ExtractionMethod: extract_type.MethodFetch},
		extract_type.Unsupported(extract_type.FileTypeUnknown),
	}

	tests := []struct {
		name         string
		combine      bool
		expectedCode int
		check        func(t *testing.T, out string)
	}{
		{
			name:         "json",
			expectedCode: 1,
			check: func(t *testing.T, out string) {
				var decoded []extract_type.ExtractedContent
				if err := json.Unmarshal([]byte(out), &decoded); err != nil {
					t.Fatalf("Output is not JSON: %v", err)
				}
				if len(decoded) != 2 || decoded[1].ExtractionMethod != extract_type.MethodUnsupported {
					t.Errorf("Unexpected decoded output: %+v", decoded)
				}
			},
		},
		{
			name:         "combined",
			combine:      true,
			expectedCode: 1,
			check: func(t *testing.T, out string) {
				if out != "[TXT] Hello\n" {
					t.Errorf("Unexpected combined output %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := printResults(&stdout, &stderr, results, tt.combine)
			if code != tt.expectedCode {
				t.Errorf("Expected exit code %d, got %d", tt.expectedCode, code)
			}
			tt.check(t, stdout.String())
		})
	}
}

func TestRunTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("Meeting moved to Friday"), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"-combine", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("Expected exit code 0, got %d (stderr %q)", code, stderr.String())
	}
	if strings.TrimSpace(stdout.String()) != "[TXT] Meeting moved to Friday" {
		t.Errorf("Unexpected output %q", stdout.String())
	}
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(nil, &stdout, &stderr); code != 2 {
		t.Errorf("Expected exit code 2, got %d", code)
	}
	if !strings.Contains(stderr.String(), "usage") {
		t.Errorf("Expected usage on stderr, got %q", stderr.String())
	}
}
