package database

import (
	"database/sql"
	"sync/atomic"
	"time"
)

// Metrics tracks query counters for the manager. All counters are atomic so
// callers never contend on a lock in the hot path.
type Metrics struct {
	db                 *sql.DB
	slowQueryThreshold time.Duration

	queryCount    int64
	errorCount    int64
	slowQueries int64
	totalTimeNs   int64
}

// NewMetrics creates a metrics recorder for the given pool.
func NewMetrics(db *sql.DB, slowQueryThreshold time.Duration) *Metrics {
	return &Metrics{
		db:                 db,
		slowQueryThreshold: slowQueryThreshold,
	}
}

// RecordQuery records one query execution.
func (m *Metrics) RecordQuery(duration time.Duration, err error) {
	atomic.AddInt64(&m.queryCount, 1)
	atomic.AddInt64(&m.totalTimeNs, duration.Nanoseconds())

	if err != nil {
		atomic.AddInt64(&m.errorCount, 1)
	}
	if duration > m.slowQueryThreshold {
		atomic.AddInt64(&m.slowQueries, 1)
	}
}

// MetricsSnapshot is a point-in-time view of query activity.
type MetricsSnapshot struct {
	QueryCount     int64       `json:"query_count"`
	ErrorCount     int64       `json:"error_count"`
	SlowQueryCount int64       `json:"slow_query_count"`
	AvgQueryTime   string      `json:"avg_query_time"`
	PoolStats      sql.DBStats `json:"pool_stats"`
}

// Snapshot returns the current counters plus pool statistics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	count := atomic.LoadInt64(&m.queryCount)
	totalNs := atomic.LoadInt64(&m.totalTimeNs)

	avg := time.Duration(0)
	if count > 0 {
		avg = time.Duration(totalNs / count)
	}

	return &MetricsSnapshot{
		QueryCount:     count,
		ErrorCount:     atomic.LoadInt64(&m.errorCount),
		SlowQueryCount: atomic.LoadInt64(&m.slowQueries),
		AvgQueryTime:   avg.String(),
		PoolStats:      m.db.Stats(),
	}
}
