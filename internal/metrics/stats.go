package metrics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Stats keeps running totals about handled requests for the JSON endpoint
type Stats struct {
	mu              sync.RWMutex
	started         time.Time
	requestCount    int64
	errorCount      int64
	bodyBytes       int64
	requestDuration time.Duration
	lastRequest     time.Time
}

// NewStats creates a new stats collector
func NewStats() *Stats {
	now := time.Now()
	return &Stats{
		started:     now,
		lastRequest: now,
	}
}

// RecordRequest records one handled request
func (s *Stats) RecordRequest(duration time.Duration, bodyBytes int, isError bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requestCount++
	s.requestDuration += duration
	s.bodyBytes += int64(bodyBytes)
	s.lastRequest = time.Now()

	if isError {
		s.errorCount++
	}
}

// Snapshot is the JSON form of Stats
type Snapshot struct {
	RequestCount         int64     `json:"request_count"`
	ErrorCount           int64     `json:"error_count"`
	SuccessCount         int64     `json:"success_count"`
	ErrorRate            float64   `json:"error_rate"`
	BodyBytes            int64     `json:"body_bytes"`
	AverageRequestTimeMs float64   `json:"avg_request_time_ms"`
	LastRequestTimestamp time.Time `json:"last_request_time"`
	UptimeSeconds        float64   `json:"uptime_seconds"`
	StartTime            time.Time `json:"start_time"`
}

// Snapshot returns a consistent copy of the current totals
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		RequestCount:         s.requestCount,
		ErrorCount:           s.errorCount,
		SuccessCount:         s.requestCount - s.errorCount,
		BodyBytes:            s.bodyBytes,
		LastRequestTimestamp: s.lastRequest,
		UptimeSeconds:        time.Since(s.started).Seconds(),
		StartTime:            s.started,
	}
	if s.requestCount > 0 {
		snap.ErrorRate = float64(s.errorCount) / float64(s.requestCount)
		avg := s.requestDuration / time.Duration(s.requestCount)
		snap.AverageRequestTimeMs = float64(avg) / float64(time.Millisecond)
	}
	return snap
}

// Handler serves the current snapshot as JSON
func (s *Stats) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.Snapshot())
	}
}
