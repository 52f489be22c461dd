package state

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RequestRecord holds per-request metrics for a total request.
type RequestRecord struct {
	ID           string          `json:"id"`
	Timestamp    time.Time       `json:"timestamp"`
	Transactions int             `json:"transactions"`
	Positive     int             `json:"positive"`
	Total        decimal.Decimal `json:"total"`
	StatusCode   int             `json:"status_code"`
	LatencyMs    int64           `json:"latency_ms"`
	Error        string          `json:"error,omitempty"`
}

// Accepted reports whether the request produced a total.
func (r RequestRecord) Accepted() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Aggregates holds incrementally maintained statistics.
type Aggregates struct {
	TotalRequests     int64           `json:"total_requests"`
	AcceptedRequests  int64           `json:"accepted_requests"`
	RejectedRequests  int64           `json:"rejected_requests"`
	TotalTransactions int64           `json:"total_transactions"`
	PositiveCount     int64           `json:"positive_count"`
	SumOfTotals       decimal.Decimal `json:"sum_of_totals"`
	StatusCounts      map[int]int64   `json:"status_counts"`
	StartTime         time.Time       `json:"start_time"`
}

// MetricsSnapshot is the read-consistent copy returned by Snapshot().
type MetricsSnapshot struct {
	Aggregates Aggregates      `json:"aggregates"`
	Recent     []RequestRecord `json:"recent"`
}

const ringBufferSize = 200

// MetricsStore is an in-memory store of recent requests and running totals.
type MetricsStore struct {
	mu        sync.RWMutex
	agg       Aggregates
	ring      []RequestRecord
	ringPos   int
	ringCount int
}

// NewMetrics returns an empty store whose uptime starts now.
func NewMetrics() *MetricsStore {
	return &MetricsStore{
		agg: Aggregates{
			SumOfTotals:  decimal.Zero,
			StatusCounts: make(map[int]int64),
			StartTime:    time.Now(),
		},
		ring: make([]RequestRecord, ringBufferSize),
	}
}

// Metrics is the process-wide metrics store.
var Metrics = NewMetrics()

// RecordRequest appends a record to the ring buffer and updates aggregates.
func (m *MetricsStore) RecordRequest(rec RequestRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ring[m.ringPos] = rec
	m.ringPos = (m.ringPos + 1) % ringBufferSize
	if m.ringCount < ringBufferSize {
		m.ringCount++
	}

	m.agg.TotalRequests++
	m.agg.StatusCounts[rec.StatusCode]++
	if !rec.Accepted() {
		m.agg.RejectedRequests++
		return
	}
	m.agg.AcceptedRequests++
	m.agg.TotalTransactions += int64(rec.Transactions)
	m.agg.PositiveCount += int64(rec.Positive)
	m.agg.SumOfTotals = m.agg.SumOfTotals.Add(rec.Total)
}

// Snapshot returns a read-consistent copy of all metrics.
func (m *MetricsStore) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agg := m.agg
	agg.StatusCounts = make(map[int]int64, len(m.agg.StatusCounts))
	for k, v := range m.agg.StatusCounts {
		agg.StatusCounts[k] = v
	}

	// newest first
	recent := make([]RequestRecord, 0, m.ringCount)
	for i := 0; i < m.ringCount; i++ {
		idx := (m.ringPos - 1 - i + ringBufferSize) % ringBufferSize
		recent = append(recent, m.ring[idx])
	}

	return MetricsSnapshot{
		Aggregates: agg,
		Recent:     recent,
	}
}
