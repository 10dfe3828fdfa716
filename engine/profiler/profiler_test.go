package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameTimePercentilesEmpty(t *testing.T) {
	p := NewProfiler()

	p50, p95, p99 := p.FrameTimePercentiles()
	assert.Zero(t, p50)
	assert.Zero(t, p95)
	assert.Zero(t, p99)
}

func TestFrameTimePercentiles(t *testing.T) {
	p := NewProfiler()
	// 1ms..100ms, so percentiles are directly readable.
	for i := 1; i <= 100; i++ {
		p.recordFrame(time.Duration(i) * time.Millisecond)
	}

	p50, p95, p99 := p.FrameTimePercentiles()
	assert.Equal(t, 50*time.Millisecond, p50)
	assert.Equal(t, 95*time.Millisecond, p95)
	assert.Equal(t, 99*time.Millisecond, p99)
}

func TestFrameWindowEvictsOldest(t *testing.T) {
	p := NewProfiler()
	for range frameWindowSize {
		p.recordFrame(time.Millisecond)
	}
	// A burst of slow frames must displace the old fast ones.
	for range frameWindowSize {
		p.recordFrame(20 * time.Millisecond)
	}

	assert.Len(t, p.frameTimes, frameWindowSize)
	p50, _, _ := p.FrameTimePercentiles()
	assert.Equal(t, 20*time.Millisecond, p50)
}

func TestTickLogsAfterInterval(t *testing.T) {
	p := NewProfiler()
	p.updateInterval = time.Millisecond

	assert.False(t, p.Tick())
	time.Sleep(2 * time.Millisecond)
	assert.True(t, p.Tick())
}
