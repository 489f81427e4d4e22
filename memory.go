package madtsql

import (
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
)

// Memory management constants
const (
	// DefaultMemoryLimitMB is used when no positive limit is configured
	DefaultMemoryLimitMB = 512
	// maxReasonableMemoryLimit is 64GB, a reasonable upper bound for most systems
	maxReasonableMemoryLimit = 64 * 1024

	defaultWarningThreshold = 0.8
	bytesPerMB              = 1024 * 1024
)

// MemoryLimit guards the loader against exhausting the heap. The loader
// checks it before reading each source.
//
// CheckMemoryUsage calls runtime.ReadMemStats, which can pause for
// milliseconds; it is not meant for per-row use.
//
// All methods are safe for concurrent use.
type MemoryLimit struct {
	maxMemoryMB      int64
	warningThreshold float64
	enabled          atomic.Bool
}

// NewMemoryLimit creates a new memory limit configuration
func NewMemoryLimit(maxMemoryMB int64) *MemoryLimit {
	if maxMemoryMB <= 0 {
		maxMemoryMB = DefaultMemoryLimitMB
	}
	if maxMemoryMB > maxReasonableMemoryLimit {
		maxMemoryMB = maxReasonableMemoryLimit
	}

	ml := &MemoryLimit{
		maxMemoryMB:      maxMemoryMB,
		warningThreshold: defaultWarningThreshold,
	}
	ml.enabled.Store(true)
	return ml
}

// IsEnabled returns whether memory limits are enabled
func (ml *MemoryLimit) IsEnabled() bool {
	return ml.enabled.Load()
}

// Disable turns checking off; CheckMemoryUsage then always reports OK.
func (ml *MemoryLimit) Disable() {
	ml.enabled.Store(false)
}

// LimitMB returns the configured limit.
func (ml *MemoryLimit) LimitMB() int64 {
	return ml.maxMemoryMB
}

// CheckMemoryUsage checks current memory usage against limits
func (ml *MemoryLimit) CheckMemoryUsage() MemoryStatus {
	if !ml.IsEnabled() {
		return MemoryStatusOK
	}
	return ml.statusFor(currentHeapMB())
}

func (ml *MemoryLimit) statusFor(currentMB int64) MemoryStatus {
	if currentMB >= ml.maxMemoryMB {
		return MemoryStatusExceeded
	}
	if float64(currentMB)/float64(ml.maxMemoryMB) >= ml.warningThreshold {
		return MemoryStatusWarning
	}
	return MemoryStatusOK
}

// GetMemoryInfo returns current memory usage information
func (ml *MemoryLimit) GetMemoryInfo() MemoryInfo {
	currentMB := currentHeapMB()
	status := MemoryStatusOK
	if ml.IsEnabled() {
		status = ml.statusFor(currentMB)
	}
	return MemoryInfo{
		CurrentMB: currentMB,
		LimitMB:   ml.maxMemoryMB,
		Usage:     float64(currentMB) / float64(ml.maxMemoryMB),
		Status:    status,
	}
}

// CreateMemoryError creates a memory limit error with helpful context
func (ml *MemoryLimit) CreateMemoryError(operation string) error {
	info := ml.GetMemoryInfo()
	return fmt.Errorf("%w during %s: using %d MB / %d MB (%.1f%%), consider increasing max_memory_mb",
		ErrMemoryLimit, operation, info.CurrentMB, info.LimitMB, info.Usage*100)
}

func currentHeapMB() int64 {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapAllocMB := memStats.HeapAlloc / bytesPerMB
	if heapAllocMB > uint64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(heapAllocMB)
}

// MemoryStatus represents the current memory status
type MemoryStatus int

const (
	// MemoryStatusOK indicates memory usage is within acceptable limits
	MemoryStatusOK MemoryStatus = iota
	// MemoryStatusWarning indicates memory usage is approaching the limit
	MemoryStatusWarning
	// MemoryStatusExceeded indicates memory usage has exceeded the limit
	MemoryStatusExceeded
)

// String returns string representation of memory status
func (ms MemoryStatus) String() string {
	switch ms {
	case MemoryStatusOK:
		return "OK"
	case MemoryStatusWarning:
		return "WARNING"
	case MemoryStatusExceeded:
		return "EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// MemoryInfo contains detailed memory usage information
type MemoryInfo struct {
	CurrentMB int64        // Current memory usage in MB
	LimitMB   int64        // Memory limit in MB
	Usage     float64      // Usage percentage (0.0-1.0)
	Status    MemoryStatus // Current status
}
