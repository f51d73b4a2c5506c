package job_store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/serisow/docextract/extract_type"
)

type JobStatus string

const (
	StatusStarted   JobStatus = "started"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

type Job struct {
	JobID        string                          `json:"job_id"`
	Status       JobStatus                       `json:"status"`
	Locators     []string                        `json:"locators"`
	Results      []extract_type.ExtractedContent `json:"results,omitempty"`
	Combined     string                          `json:"combined,omitempty"`
	ErrorMessage string                          `json:"error_message,omitempty"`
	SubmittedAt  string                          `json:"submitted_at"`
	CompletedAt  string                          `json:"completed_at,omitempty"`
}

// Store keeps batch jobs in memory. Finished jobs are dropped once they are
// older than the retention threshold passed to StartCleanup.
type Store struct {
	sync.RWMutex
	jobs         map[string]*Job
	timeProvider TimeProvider
	logger       *slog.Logger

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	stopOnce      sync.Once
}

func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		jobs:         make(map[string]*Job),
		timeProvider: &realTimeProvider{},
		logger:       logger,
	}
}

// SetTimeProvider replaces the clock used for timestamps and expiry.
func (s *Store) SetTimeProvider(tp TimeProvider) {
	s.Lock()
	defer s.Unlock()
	s.timeProvider = tp
}

func (s *Store) now() time.Time {
	s.RLock()
	defer s.RUnlock()
	return s.timeProvider.Now()
}

// Start records a new job in the started state.
func (s *Store) Start(jobID string, locators []string) *Job {
	job := &Job{
		JobID:       jobID,
		Status:      StatusStarted,
		Locators:    append([]string(nil), locators...),
		SubmittedAt: s.now().Format(time.RFC3339),
	}
	s.Add(job)
	return job
}

// Complete stores the ordered results of a finished job.
func (s *Store) Complete(jobID string, results []extract_type.ExtractedContent, combined string) {
	completedAt := s.now().Format(time.RFC3339)
	s.Lock()
	defer s.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Status = StatusCompleted
	job.Results = results
	job.Combined = combined
	job.CompletedAt = completedAt
}

// Fail marks a job as failed with the given message.
func (s *Store) Fail(jobID string, message string) {
	completedAt := s.now().Format(time.RFC3339)
	s.Lock()
	defer s.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return
	}
	job.Status = StatusFailed
	job.ErrorMessage = message
	job.CompletedAt = completedAt
}

func (s *Store) Add(job *Job) {
	s.Lock()
	defer s.Unlock()
	s.jobs[job.JobID] = job
}

// Get returns a copy so callers can encode it without holding the lock.
func (s *Store) Get(jobID string) (Job, bool) {
	s.RLock()
	defer s.RUnlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return Job{}, false
	}
	return *job, true
}

func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.jobs)
}

// StartCleanup starts a goroutine that periodically removes old jobs.
// - threshold: how long a finished job is kept.
// - cleanupInterval: how often the cleanup runs.
func (s *Store) StartCleanup(threshold time.Duration, cleanupInterval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.performCleanup(threshold)
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (s *Store) StopCleanup() {
	if s.stopCleanup != nil {
		s.stopOnce.Do(func() { close(s.stopCleanup) })
	}
}

func (s *Store) performCleanup(threshold time.Duration) {
	s.Lock()
	defer s.Unlock()
	now := s.timeProvider.Now()

	for jobID, job := range s.jobs {
		if job.CompletedAt == "" {
			continue
		}
		completedAt, err := time.Parse(time.RFC3339, job.CompletedAt)
		if err == nil && now.Sub(completedAt) > threshold {
			delete(s.jobs, jobID)
			s.logger.Debug("Deleted expired extraction job",
				slog.String("job_id", jobID))
		}
	}
}
