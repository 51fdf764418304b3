// Package metrics counts batch invocations and produces the final run report.
package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

// Metrics is safe for concurrent use.
type Metrics struct {
	invocations int64
	succeeded   int64
	failed      int64
	skipped     int64 // declined at the confirmation gate
	resumed     int64 // already handled by a previous run
	corrupt     int64
	streamed    int64 // bytes copied from streaming responses

	mu       sync.Mutex
	callTime time.Duration
	byOp     map[string]int64
	start    time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{start: time.Now(), byOp: make(map[string]int64)}
}

// RecordInvocation counts one call of service/operation that took d.
func (m *Metrics) RecordInvocation(service, operation string, d time.Duration) {
	atomic.AddInt64(&m.invocations, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callTime += d
	m.byOp[service+":"+operation]++
}

func (m *Metrics) RecordSucceeded() { atomic.AddInt64(&m.succeeded, 1) }

func (m *Metrics) RecordFailed() { atomic.AddInt64(&m.failed, 1) }

func (m *Metrics) RecordSkipped() { atomic.AddInt64(&m.skipped, 1) }

func (m *Metrics) RecordResumed() { atomic.AddInt64(&m.resumed, 1) }

func (m *Metrics) RecordCorrupt() { atomic.AddInt64(&m.corrupt, 1) }

func (m *Metrics) RecordStreamed(n int64) { atomic.AddInt64(&m.streamed, n) }

// Report is the summary of a batch run, printed to stderr and optionally
// uploaded as JSON.
type Report struct {
	BatchID       string           `json:"batchId"`
	StartTime     time.Time        `json:"startTime"`
	EndTime       time.Time        `json:"endTime"`
	Invocations   int64            `json:"invocations"`
	Succeeded     int64            `json:"succeeded"`
	Failed        int64            `json:"failed"`
	Skipped       int64            `json:"skipped"`
	Resumed       int64            `json:"resumed"`
	Corrupt       int64            `json:"corrupt"`
	StreamedBytes int64            `json:"streamedBytes"`
	CallTime      time.Duration    `json:"callTime"`
	Duration      time.Duration    `json:"duration"`
	Throughput    float64          `json:"throughput"` // invocations per second
	Operations    map[string]int64 `json:"operations"`
}

func (m *Metrics) GenerateReport(batchID string) Report {
	end := time.Now()
	duration := end.Sub(m.start)
	invocations := atomic.LoadInt64(&m.invocations)

	var throughput float64
	if duration > 0 {
		throughput = float64(invocations) / duration.Seconds()
	}

	m.mu.Lock()
	ops := make(map[string]int64, len(m.byOp))
	for k, v := range m.byOp {
		ops[k] = v
	}
	callTime := m.callTime
	m.mu.Unlock()

	return Report{
		BatchID:       batchID,
		StartTime:     m.start,
		EndTime:       end,
		Invocations:   invocations,
		Succeeded:     atomic.LoadInt64(&m.succeeded),
		Failed:        atomic.LoadInt64(&m.failed),
		Skipped:       atomic.LoadInt64(&m.skipped),
		Resumed:       atomic.LoadInt64(&m.resumed),
		Corrupt:       atomic.LoadInt64(&m.corrupt),
		StreamedBytes: atomic.LoadInt64(&m.streamed),
		CallTime:      callTime,
		Duration:      duration,
		Throughput:    throughput,
		Operations:    ops,
	}
}

// MarshalJSON renders durations as strings such as "1.5s".
func (r Report) MarshalJSON() ([]byte, error) {
	type Alias Report
	return json.Marshal(&struct {
		Alias
		CallTime string `json:"callTime"`
		Duration string `json:"duration"`
	}{
		Alias:    Alias(r),
		CallTime: r.CallTime.String(),
		Duration: r.Duration.String(),
	})
}

func (r Report) String() string {
	return fmt.Sprintf(
		"Batch %s completed in %s\n"+
			"Invocations: %d (succeeded %d, failed %d)\n"+
			"Skipped: %d not confirmed, %d already done\n"+
			"Corrupt lines: %d\n"+
			"Throughput: %.2f invocations/sec",
		r.BatchID, r.Duration,
		r.Invocations, r.Succeeded, r.Failed,
		r.Skipped, r.Resumed,
		r.Corrupt,
		r.Throughput,
	)
}
