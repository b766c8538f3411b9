package middleware

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/finsight/internal/domain/failures"
)

// Metrics stores application metrics. It also receives pipeline outcomes
// from the services.
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress int64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	AnalysesTotal      uint64
	AnalysesFailed     uint64
	QueriesTotal       uint64
	QueriesFailed      uint64
	ComparisonsTotal   uint64
	ComparisonsFailed  uint64
	StartTime          time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// Pipeline counts one analyze, query or compare run.
func (m *Metrics) Pipeline(op failures.Operation, ok bool) {
	var total, failed *uint64
	switch op {
	case failures.OpAnalyze:
		total, failed = &m.AnalysesTotal, &m.AnalysesFailed
	case failures.OpQuery:
		total, failed = &m.QueriesTotal, &m.QueriesFailed
	case failures.OpCompare:
		total, failed = &m.ComparisonsTotal, &m.ComparisonsFailed
	default:
		return
	}
	atomic.AddUint64(total, 1)
	if !ok {
		atomic.AddUint64(failed, 1)
	}
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]any {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]any{
		"requests_total":       atomic.LoadUint64(&m.RequestsTotal),
		"requests_in_progress": atomic.LoadInt64(&m.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&m.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&m.RequestsFailed),
		"analyses_total":       atomic.LoadUint64(&m.AnalysesTotal),
		"analyses_failed":      atomic.LoadUint64(&m.AnalysesFailed),
		"queries_total":        atomic.LoadUint64(&m.QueriesTotal),
		"queries_failed":       atomic.LoadUint64(&m.QueriesFailed),
		"comparisons_total":    atomic.LoadUint64(&m.ComparisonsTotal),
		"comparisons_failed":   atomic.LoadUint64(&m.ComparisonsFailed),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]any{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint64(&m.RequestsTotal, 1)
		atomic.AddInt64(&m.RequestsInProgress, 1)
		defer atomic.AddInt64(&m.RequestsInProgress, -1)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			atomic.AddUint64(&m.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&m.RequestsFailed, 1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.Snapshot())
}
