// Package server exposes search studies as asynchronous HTTP jobs: a POST
// accepts a study, a background goroutine runs it through the harness, and
// the job stays queryable until it is reaped.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DannyMorgant/searchkit/internal/config"
	"github.com/DannyMorgant/searchkit/internal/harness"
	"github.com/DannyMorgant/searchkit/internal/search"
)

// Job statuses. Terminal states are completed, failed and cancelled.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// JobState tracks one search job. Guarded by the server's mutex.
type JobState struct {
	ID          string
	Algorithm   string
	Status      string
	StartTime   time.Time
	EndTime     *time.Time
	LastUpdated time.Time
	Report      *harness.Report
	Space       *search.Space
	Err         string

	cancel context.CancelFunc
}

// Server manages search jobs.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	harness *harness.Harness

	mu   sync.RWMutex
	jobs map[string]*JobState

	// wg tracks running jobs so Close can wait for them.
	wg sync.WaitGroup
}

// New creates a server instance.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:     cfg,
		logger:  logger,
		harness: harness.New(logger),
		jobs:    make(map[string]*JobState),
	}
}

// RegisterRoutes mounts the job API.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/searches", s.handleStart)
		r.Get("/searches/{id}", s.handleStatus)
		r.Delete("/searches/{id}", s.handleCancel)
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ev, space, alg, err := buildStudy(&req, s.cfg)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := time.Now()
	job := &JobState{
		ID:          uuid.NewString(),
		Algorithm:   alg.Name,
		Status:      StatusPending,
		StartTime:   now,
		LastUpdated: now,
		Space:       space,
		cancel:      cancel,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	searchesStarted.WithLabelValues(alg.Name).Inc()
	s.logger.Info("search accepted",
		zap.String("search_id", job.ID),
		zap.String("algorithm", alg.Name),
		zap.Int("dimensions", space.Dimensions()))

	s.wg.Add(1)
	go s.runJob(ctx, job.ID, ev, alg)

	s.respondJSON(w, http.StatusAccepted, map[string]string{
		"search_id": job.ID,
		"status":    StatusPending,
	})
}

func (s *Server) runJob(ctx context.Context, id string, ev harness.Evaluator, alg harness.Algorithm) {
	defer s.wg.Done()

	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok || job.Status != StatusPending {
		s.mu.Unlock()
		return
	}
	job.Status = StatusRunning
	job.LastUpdated = time.Now()
	s.mu.Unlock()

	report, err := s.harness.Run(ctx, ev, alg)

	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok = s.jobs[id]
	if !ok {
		return
	}
	now := time.Now()
	job.EndTime = &now
	job.LastUpdated = now
	if job.Status == StatusCancelled {
		searchesFinished.WithLabelValues(job.Algorithm, StatusCancelled).Inc()
		return
	}
	if err != nil {
		job.Status = StatusFailed
		job.Err = err.Error()
		searchesFinished.WithLabelValues(job.Algorithm, StatusFailed).Inc()
		s.logger.Error("search failed",
			zap.String("search_id", id),
			zap.String("algorithm", job.Algorithm),
			zap.Error(err))
		return
	}
	job.Status = StatusCompleted
	job.Report = report
	searchesFinished.WithLabelValues(job.Algorithm, StatusCompleted).Inc()
	searchDuration.WithLabelValues(job.Algorithm).Observe(now.Sub(job.StartTime).Seconds())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.RLock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.RUnlock()
		s.respondError(w, http.StatusNotFound, "search not found")
		return
	}
	resp := s.statusResponse(job)
	s.mu.RUnlock()

	s.respondJSON(w, http.StatusOK, resp)
}

// statusResponse builds the JSON view of a job. Caller holds at least a
// read lock.
func (s *Server) statusResponse(job *JobState) map[string]interface{} {
	resp := map[string]interface{}{
		"search_id":   job.ID,
		"algorithm":   job.Algorithm,
		"status":      job.Status,
		"start_time":  job.StartTime.Format(time.RFC3339),
		"last_update": job.LastUpdated.Format(time.RFC3339),
	}
	if job.EndTime != nil {
		resp["end_time"] = job.EndTime.Format(time.RFC3339)
	}
	if job.Err != "" {
		resp["error"] = job.Err
	}
	if job.Report != nil {
		names := job.Space.Names()
		selected := make([]string, 0, job.Report.Selected.IncludedCount())
		for _, col := range job.Report.Selected.Selected() {
			selected = append(selected, names[col])
		}
		resp["report"] = map[string]interface{}{
			"selected":         selected,
			"selection_score":  job.Report.SelectionScore,
			"train_score":      job.Report.TrainScore,
			"comparison_score": job.Report.ComparisonScore,
			"gap":              job.Report.Gap,
			"evaluations":      job.Report.Evaluations,
			"failures":         job.Report.Failures,
			"restarts":         job.Report.Restarts,
			"elapsed_ms":       float64(job.Report.Elapsed.Microseconds()) / 1000.0,
		}
	}
	return resp
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	job, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		s.respondError(w, http.StatusNotFound, "search not found")
		return
	}
	switch job.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		status := job.Status
		s.mu.Unlock()
		s.respondError(w, http.StatusConflict, "search already "+status)
		return
	}
	job.Status = StatusCancelled
	job.LastUpdated = time.Now()
	job.cancel()
	s.mu.Unlock()

	s.logger.Info("search cancelled", zap.String("search_id", id))
	s.respondJSON(w, http.StatusOK, map[string]string{
		"search_id": id,
		"status":    StatusCancelled,
	})
}

// ReapFinished drops terminal jobs whose last update is older than the TTL
// and returns how many were removed.
func (s *Server) ReapFinished(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		switch job.Status {
		case StatusCompleted, StatusFailed, StatusCancelled:
			if job.LastUpdated.Before(cutoff) {
				delete(s.jobs, id)
				removed++
			}
		}
	}
	return removed
}

// Close cancels all running jobs and waits for their goroutines.
func (s *Server) Close() error {
	s.mu.Lock()
	for _, job := range s.jobs {
		if job.cancel != nil {
			job.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
