package ocr_service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t640\t480\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t50\t12\t91.5\tAnimal\n" +
	"5\t1\t1\t1\t1\t2\t70\t10\t40\t12\t82.5\tbite\n" +
	"5\t1\t1\t1\t1\t3\t120\t10\t60\t12\t87\treferral\n"

type stubRunner struct {
	calls  [][]string
	text   string
	tsv    string
	err    error
	tsvErr error
}

func (r *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if args[len(args)-1] == "tsv" {
		return []byte(r.tsv), nil, r.tsvErr
	}
	return []byte(r.text), []byte("stderr output"), r.err
}

func TestMeanTSVConfidence(t *testing.T) {
	tests := []struct {
		name     string
		tsv      string
		expected float64
	}{
		{"words", sampleTSV, 87},
		{"header only", "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n", 0},
		{"empty", "", 0},
		{"short rows ignored", "header\n5\t1\t90\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MeanTSVConfidence(tt.tsv); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("MeanTSVConfidence() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIEngineRecognize(t *testing.T) {
	runner := &stubRunner{text: "Animal bite referral\n", tsv: sampleTSV}
	engine := NewCLIEngine(Config{Tesseract: "/opt/tesseract", TessdataDir: "/data", PSM: 6}, runner, nil)

	var statuses []string
	res, err := engine.Recognize(context.Background(), []byte("png bytes"), "eng", func(status string, progress float64) {
		statuses = append(statuses, status)
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Text != "Animal bite referral\n" {
		t.Errorf("Unexpected text %q", res.Text)
	}
	if math.Abs(res.Confidence-87) > 1e-9 {
		t.Errorf("Expected confidence 87, got %v", res.Confidence)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("Expected 2 tesseract runs, got %d", len(runner.calls))
	}
	args := strings.Join(runner.calls[0], " ")
	for _, want := range []string{"/opt/tesseract", "stdout -l eng", "--psm 6", "--tessdata-dir /data"} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected args to contain %q, got %q", want, args)
		}
	}
	if strings.Join(statuses, ",") != "loading,recognizing,scoring,done" {
		t.Errorf("Unexpected progress events: %v", statuses)
	}
}

func TestCLIEngineRecognizeFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("exit status 1")}
	engine := NewCLIEngine(Config{}, runner, nil)

	_, err := engine.Recognize(context.Background(), []byte("not an image"), "eng", nil)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !strings.Contains(err.Error(), "stderr output") {
		t.Errorf("Expected stderr in error, got %v", err)
	}
}

func TestCLIEngineConfidenceFailureKeepsText(t *testing.T) {
	runner := &stubRunner{text: "text", tsvErr: errors.New("tsv config missing")}
	engine := NewCLIEngine(Config{}, runner, nil)

	res, err := engine.Recognize(context.Background(), []byte("img"), "eng", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Text != "text" || res.Confidence != 0 {
		t.Errorf("Unexpected result: %+v", res)
	}
}

func TestCLILoaderMissingBinary(t *testing.T) {
	loader := NewCLILoader(Config{Tesseract: "definitely-not-tesseract"}, &stubRunner{}, nil)
	if _, err := loader(context.Background()); err == nil {
		t.Fatal("Expected loader to fail for a missing binary")
	}
}
