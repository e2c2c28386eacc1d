package common

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats holds atomic counters for load telemetry.
type Stats struct {
	TotalRowsLoaded uint64 // Atomic counter for rows produced by the loader
	TotalBytesRead  uint64 // Atomic counter for bytes read from station files
	FilesLoaded     uint64 // Atomic counter for successful loads
	FilesFailed     uint64 // Atomic counter for failed loads

	startTime time.Time
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// AddRows atomically increments the total rows loaded counter
func (s *Stats) AddRows(count uint64) {
	atomic.AddUint64(&s.TotalRowsLoaded, count)
}

// AddBytes atomically increments the total bytes read counter
func (s *Stats) AddBytes(count uint64) {
	atomic.AddUint64(&s.TotalBytesRead, count)
}

// FileLoaded records a successful load.
func (s *Stats) FileLoaded() {
	atomic.AddUint64(&s.FilesLoaded, 1)
}

// FileFailed records a failed load.
func (s *Stats) FileFailed() {
	atomic.AddUint64(&s.FilesFailed, 1)
}

// GetTotalRows atomically reads the total rows loaded
func (s *Stats) GetTotalRows() uint64 {
	return atomic.LoadUint64(&s.TotalRowsLoaded)
}

// GetTotalBytes atomically reads the total bytes read
func (s *Stats) GetTotalBytes() uint64 {
	return atomic.LoadUint64(&s.TotalBytesRead)
}

// Elapsed returns time since NewStats or the last Reset.
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.startTime)
}

// String formats the counters for the final statistics banner.
func (s *Stats) String() string {
	elapsed := s.Elapsed()
	rows := s.GetTotalRows()
	rate := 0.0
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(rows) / secs
	}
	return fmt.Sprintf("Files: %d loaded, %d failed | Rows: %d | Read: %.2f MiB | Rate: %.0f rows/sec",
		atomic.LoadUint64(&s.FilesLoaded),
		atomic.LoadUint64(&s.FilesFailed),
		rows,
		float64(s.GetTotalBytes())/(1024*1024),
		rate,
	)
}

// Reset resets all counters (useful for testing or restarting)
func (s *Stats) Reset() {
	atomic.StoreUint64(&s.TotalRowsLoaded, 0)
	atomic.StoreUint64(&s.TotalBytesRead, 0)
	atomic.StoreUint64(&s.FilesLoaded, 0)
	atomic.StoreUint64(&s.FilesFailed, 0)
	s.startTime = time.Now()
}
