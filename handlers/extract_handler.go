package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/serisow/docextract/extract_type"
	"github.com/serisow/docextract/job_store"
	"github.com/serisow/docextract/repository"
	"github.com/serisow/docextract/services/extract_service"
)

const DefaultMaxBatchSize = 20

// Extractor is implemented by *extract_service.Service.
type Extractor interface {
	ExtractContent(ctx context.Context, locator string) extract_type.ExtractedContent
	ExtractMultipleFiles(ctx context.Context, locators []string) []extract_type.ExtractedContent
}

// ExtractionRecorder is implemented by *repository.ExtractionRepository.
type ExtractionRecorder interface {
	Save(ctx context.Context, locator string, content extract_type.ExtractedContent) (extract_type.StoredExtraction, error)
	GetByID(ctx context.Context, id string) (extract_type.StoredExtraction, error)
}

type ExtractHandler struct {
	extractor    Extractor
	recorder     ExtractionRecorder
	jobs         *job_store.Store
	maxBatchSize int
	fileTimeout  time.Duration
	logger       *slog.Logger
}

// NewExtractHandler wires the HTTP surface of the extraction service.
// recorder may be nil when no database is configured.
func NewExtractHandler(extractor Extractor, recorder ExtractionRecorder, jobs *job_store.Store, maxBatchSize int, logger *slog.Logger) *ExtractHandler {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	if jobs == nil {
		jobs = job_store.NewStore(logger)
	}
	return &ExtractHandler{
		extractor:    extractor,
		recorder:     recorder,
		jobs:         jobs,
		maxBatchSize: maxBatchSize,
		logger:       logger,
	}
}

// SetFileTimeout sets the write budget for a single file. Batch requests
// extend their write deadline to one budget per file.
func (h *ExtractHandler) SetFileTimeout(d time.Duration) {
	h.fileTimeout = d
}

// extendWriteDeadline gives a sequential batch of n files enough time to
// answer. Writers without deadline support are left alone.
func (h *ExtractHandler) extendWriteDeadline(w http.ResponseWriter, n int) {
	if h.fileTimeout <= 0 || n <= 1 {
		return
	}
	deadline := time.Now().Add(h.fileTimeout * time.Duration(n))
	if err := http.NewResponseController(w).SetWriteDeadline(deadline); err != nil {
		h.logger.Debug("Could not extend write deadline",
			slog.String("error", err.Error()))
	}
}

func (h *ExtractHandler) validateExtract(req *extract_type.ExtractRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.URL, validation.Required),
	)
}

func (h *ExtractHandler) validateBatch(req *extract_type.BatchRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.URLs,
			validation.Required,
			validation.Length(1, h.maxBatchSize),
			validation.Each(validation.Required),
		),
	)
}

func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extract_type.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validateExtract(&req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := h.extractor.ExtractContent(r.Context(), req.URL)
	if id := h.record(r.Context(), req.URL, result); id != "" {
		w.Header().Set("X-Extraction-Id", id)
	}

	writeJSON(w, http.StatusOK, result, h.logger)
}

func (h *ExtractHandler) ExtractBatch(w http.ResponseWriter, r *http.Request) {
	var req extract_type.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validateBatch(&req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.extendWriteDeadline(w, len(req.URLs))

	results := h.extractor.ExtractMultipleFiles(r.Context(), req.URLs)
	for i, result := range results {
		h.record(r.Context(), req.URLs[i], result)
	}

	response := extract_type.BatchResponse{Results: results}
	if req.Combine {
		response.Combined = extract_service.CombineExtractedContent(results)
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}

func (h *ExtractHandler) Combine(w http.ResponseWriter, r *http.Request) {
	var req extract_type.CombineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, extract_type.CombineResponse{
		Combined: extract_service.CombineExtractedContent(req.Contents),
	}, h.logger)
}

// StartJob runs a batch in the background and answers with its job id.
func (h *ExtractHandler) StartJob(w http.ResponseWriter, r *http.Request) {
	var req extract_type.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validateBatch(&req); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID := uuid.NewString()
	h.jobs.Start(jobID, req.URLs)

	// the request context ends with this response
	go h.runJob(context.Background(), jobID, req)

	writeJSON(w, http.StatusAccepted, extract_type.JobResponse{
		JobID:   jobID,
		Message: "Extraction job started",
	}, h.logger)
}

func (h *ExtractHandler) runJob(ctx context.Context, jobID string, req extract_type.BatchRequest) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("Extraction job panicked",
				slog.String("job_id", jobID),
				slog.String("panic", fmt.Sprint(rec)))
			h.jobs.Fail(jobID, fmt.Sprintf("extraction job failed: %v", rec))
		}
	}()

	h.logger.Info("Extraction job started",
		slog.String("job_id", jobID),
		slog.Int("files", len(req.URLs)))

	results := h.extractor.ExtractMultipleFiles(ctx, req.URLs)
	for i, result := range results {
		h.record(ctx, req.URLs[i], result)
	}
	h.jobs.Complete(jobID, results, extract_service.CombineExtractedContent(results))

	h.logger.Info("Extraction job completed",
		slog.String("job_id", jobID))
}

func (h *ExtractHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]
	job, ok := h.jobs.Get(jobID)
	if !ok {
		writeJSONError(w, "Job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job, h.logger)
}

func (h *ExtractHandler) GetExtraction(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeJSONError(w, "Persistence is not configured", http.StatusNotFound)
		return
	}

	id := mux.Vars(r)["id"]
	stored, err := h.recorder.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSONError(w, "Extraction not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("Failed to load extraction",
			slog.String("id", id),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to load extraction", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stored, h.logger)
}

// record persists a result when a recorder is configured. Storage errors
// are logged and never change the extraction response.
func (h *ExtractHandler) record(ctx context.Context, locator string, content extract_type.ExtractedContent) string {
	if h.recorder == nil {
		return ""
	}
	stored, err := h.recorder.Save(ctx, locator, content)
	if err != nil {
		h.logger.Error("Failed to store extraction",
			slog.String("locator", locator),
			slog.String("error", err.Error()))
		return ""
	}
	return stored.ID
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, nil)
}

func writeJSON(w http.ResponseWriter, statusCode int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("Failed to write response",
			slog.String("error", err.Error()))
	}
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
