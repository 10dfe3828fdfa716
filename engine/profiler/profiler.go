package profiler

import (
	"log"
	"runtime"
	"slices"
	"time"
)

// frameWindowSize caps the sliding window of recent frame durations used for
// the percentile stats.
const frameWindowSize = 600

// Profiler tracks frame rate, frame time percentiles, and memory statistics
// for performance monitoring. Outputs stats to the log at a configurable
// interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	lastFrameTime  time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// frameTimes is a sliding window of recent frame durations.
	frameTimes []time.Duration
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	now := time.Now()
	return &Profiler{
		frameCount:     0,
		lastTime:       now,
		lastFrameTime:  now,
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		frameTimes:     make([]time.Duration, 0, frameWindowSize),
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, frame time percentiles, heap usage, allocation
// rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()

	p.recordFrame(currentTime.Sub(p.lastFrameTime))
	p.lastFrameTime = currentTime

	elapsed := currentTime.Sub(p.lastTime)
	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()
		p50, p95, p99 := p.FrameTimePercentiles()

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last tick
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		log.Printf("[Profiler] FPS: %.2f | Frame: p50 %.2f ms, p95 %.2f ms, p99 %.2f ms | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, p50.Seconds()*1000, p95.Seconds()*1000, p99.Seconds()*1000,
			allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

		p.frameCount = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}

// recordFrame appends a frame duration to the sliding window, evicting the
// oldest entry once the window is full.
func (p *Profiler) recordFrame(d time.Duration) {
	if len(p.frameTimes) == frameWindowSize {
		copy(p.frameTimes, p.frameTimes[1:])
		p.frameTimes = p.frameTimes[:frameWindowSize-1]
	}
	p.frameTimes = append(p.frameTimes, d)
}

// FrameTimePercentiles returns the p50, p95, and p99 frame durations over
// the sliding window. Returns zeros when no frames have been recorded.
//
// Returns:
//   - p50: the median frame duration
//   - p95: the 95th percentile frame duration
//   - p99: the 99th percentile frame duration
func (p *Profiler) FrameTimePercentiles() (p50, p95, p99 time.Duration) {
	if len(p.frameTimes) == 0 {
		return 0, 0, 0
	}

	sorted := make([]time.Duration, len(p.frameTimes))
	copy(sorted, p.frameTimes)
	slices.Sort(sorted)

	return percentile(sorted, 50), percentile(sorted, 95), percentile(sorted, 99)
}

// percentile picks the nearest-rank percentile from a sorted slice.
func percentile(sorted []time.Duration, pct int) time.Duration {
	idx := (len(sorted)*pct + 99) / 100
	if idx > 0 {
		idx--
	}
	return sorted[idx]
}
