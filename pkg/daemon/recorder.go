package daemon

import (
	"sync"
	"time"
)

// TimeSeriesRecorder records the last N render times.
type TimeSeriesRecorder struct {
	MaxRecordCount  int
	LastRenderTimes []time.Time
	mu              *sync.Mutex
}

// NewTimeSeriesRecorder returns a new TimeSeriesRecorder.
func NewTimeSeriesRecorder(maxRecordCount int) *TimeSeriesRecorder {
	return &TimeSeriesRecorder{
		MaxRecordCount:  maxRecordCount,
		LastRenderTimes: make([]time.Time, 0),
		mu:              &sync.Mutex{},
	}
}

// AddRecord adds a new record.
func (r *TimeSeriesRecorder) AddRecord(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Strip monotonic clock reading.
	// This will prevent time.Since from returning values that are not accurate (especially when the system is in sleep mode).
	t = t.Round(0)

	if len(r.LastRenderTimes) >= r.MaxRecordCount {
		r.LastRenderTimes = r.LastRenderTimes[1:]
	}
	r.LastRenderTimes = append(r.LastRenderTimes, t)
}

// GetRecords returns a copy of the records, oldest first.
func (r *TimeSeriesRecorder) GetRecords() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]time.Time, len(r.LastRenderTimes))
	copy(records, r.LastRenderTimes)
	return records
}

// GetLastRecords returns the records newer than last, newest first.
func (r *TimeSeriesRecorder) GetLastRecords(now time.Time, last time.Duration) []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []time.Time
	for i := len(r.LastRenderTimes) - 1; i >= 0; i-- {
		record := r.LastRenderTimes[i]
		if now.Sub(record) > last {
			break
		}
		records = append(records, record)
	}

	return records
}

// GetLastRecord returns the last record, or the zero time.
func (r *TimeSeriesRecorder) GetLastRecord() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.LastRenderTimes) == 0 {
		return time.Time{}
	}

	return r.LastRenderTimes[len(r.LastRenderTimes)-1]
}

func formatTimes(times []time.Time) []string {
	timesString := make([]string, 0, len(times))
	for _, t := range times {
		timesString = append(timesString, t.Format(time.RFC3339))
	}
	return timesString
}
