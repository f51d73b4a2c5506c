package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// dailyFile is shared by a handler and every handler derived from it
// through WithAttrs or WithGroup.
type dailyFile struct {
	mutex           sync.Mutex
	logDir          string
	prefix          string
	currentFile     *os.File
	currentFileName string
	now             func() time.Time
}

type DailyFileHandler struct {
	file           *dailyFile
	attrs          string
	defaultHandler slog.Handler
}

func NewDailyFileHandler(logDir string, opts *slog.HandlerOptions) (*DailyFileHandler, error) {
	return newDailyFileHandler(logDir, "extract", os.Stdout, opts, time.Now)
}

func newDailyFileHandler(logDir, prefix string, stdout *os.File, opts *slog.HandlerOptions, now func() time.Time) (*DailyFileHandler, error) {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	h := &DailyFileHandler{
		file:           &dailyFile{logDir: logDir, prefix: prefix, now: now},
		defaultHandler: slog.NewTextHandler(stdout, opts),
	}

	if err := h.file.rotateIfNeeded(); err != nil {
		return nil, err
	}

	return h, nil
}

// rotateIfNeeded must be called with the mutex held.
func (f *dailyFile) rotateIfNeeded() error {
	fileName := fmt.Sprintf("%s-%s.log", f.prefix, f.now().Format("2006-01-02"))
	if fileName == f.currentFileName {
		return nil
	}

	if f.currentFile != nil {
		f.currentFile.Close()
	}

	file, err := os.OpenFile(filepath.Join(f.logDir, fileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		f.currentFile = nil
		f.currentFileName = ""
		return fmt.Errorf("failed to open log file: %w", err)
	}

	f.currentFile = file
	f.currentFileName = fileName
	return nil
}

func (f *dailyFile) write(line string) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if err := f.rotateIfNeeded(); err != nil {
		return err
	}
	_, err := f.currentFile.WriteString(line)
	return err
}

// CurrentFileName returns the name of the file currently written to.
func (h *DailyFileHandler) CurrentFileName() string {
	h.file.mutex.Lock()
	defer h.file.mutex.Unlock()
	return h.file.currentFileName
}

func (h *DailyFileHandler) Close() error {
	h.file.mutex.Lock()
	defer h.file.mutex.Unlock()
	if h.file.currentFile == nil {
		return nil
	}
	err := h.file.currentFile.Close()
	h.file.currentFile = nil
	h.file.currentFileName = ""
	return err
}

func (h *DailyFileHandler) Handle(ctx context.Context, r slog.Record) error {
	timeStr := r.Time.Format("2006/01/02 15:04:05.000")
	level := r.Level.String()

	attrs := h.attrs
	r.Attrs(func(a slog.Attr) bool {
		attrs += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		return true
	})

	logLine := fmt.Sprintf("[%s] %-5s %s%s\n", timeStr, level, r.Message, attrs)
	err := h.file.write(logLine)

	// stdout gets every record even when the file write failed
	if err2 := h.defaultHandler.Handle(ctx, r); err2 != nil && err == nil {
		err = err2
	}

	return err
}

func (h *DailyFileHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	extra := h.attrs
	for _, a := range attrs {
		extra += fmt.Sprintf(" %s=%v", a.Key, a.Value)
	}
	return &DailyFileHandler{
		file:           h.file,
		attrs:          extra,
		defaultHandler: h.defaultHandler.WithAttrs(attrs),
	}
}

func (h *DailyFileHandler) WithGroup(name string) slog.Handler {
	return &DailyFileHandler{
		file:           h.file,
		attrs:          h.attrs,
		defaultHandler: h.defaultHandler.WithGroup(name),
	}
}

func (h *DailyFileHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.defaultHandler.Enabled(ctx, level)
}
