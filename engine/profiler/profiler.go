package profiler

import (
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/log"
	"github.com/olekukonko/tablewriter"
)

var logger = log.New("profiler")

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval and keeps whole-run frame timings for the
// exit summary.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now       func() time.Time
	started   time.Time
	lastFrame time.Time
	frames    uint64
	minFrame  time.Duration
	maxFrame  time.Duration
	peakHeap  uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return newProfiler(time.Now)
}

func newProfiler(now func() time.Time) *Profiler {
	t := now()
	return &Profiler{
		lastTime:       t,
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
		now:            now,
		started:        t,
		lastFrame:      t,
	}
}

// SetUpdateInterval changes how often Tick logs a report.
//
// Parameters:
//   - interval: the report interval, ignored when not positive
func (p *Profiler) SetUpdateInterval(interval time.Duration) {
	if interval > 0 {
		p.updateInterval = interval
	}
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	currentTime := p.now()
	p.recordFrame(currentTime.Sub(p.lastFrame))
	p.lastFrame = currentTime

	p.frameCount++
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	p.peakHeap = max(p.peakHeap, p.memStats.Alloc)

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	logger.Infof("FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

func (p *Profiler) recordFrame(d time.Duration) {
	if p.frames == 0 || d < p.minFrame {
		p.minFrame = d
	}
	p.maxFrame = max(p.maxFrame, d)
	p.frames++
}

// Frames returns the number of ticks recorded since creation.
//
// Returns:
//   - uint64: the frame count
func (p *Profiler) Frames() uint64 {
	return p.frames
}

// AverageFrame returns the mean frame time since creation, zero before the first tick.
//
// Returns:
//   - time.Duration: the mean frame time
func (p *Profiler) AverageFrame() time.Duration {
	if p.frames == 0 {
		return 0
	}
	return p.lastFrame.Sub(p.started) / time.Duration(p.frames)
}

// WriteTable renders whole-run frame timings as a table.
//
// Parameters:
//   - w: the destination
func (p *Profiler) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Frame timing", "Value"})

	avg := p.AverageFrame()
	fps := 0.0
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}
	table.Append([]string{"Frames", fmt.Sprintf("%d", p.frames)})
	table.Append([]string{"Average", avg.Round(time.Microsecond).String()})
	table.Append([]string{"Fastest", p.minFrame.Round(time.Microsecond).String()})
	table.Append([]string{"Slowest", p.maxFrame.Round(time.Microsecond).String()})
	table.Append([]string{"Average FPS", fmt.Sprintf("%.2f", fps)})
	table.Append([]string{"Peak heap", fmt.Sprintf("%.2f MB", float64(p.peakHeap)/1024/1024)})
	table.SetFooter([]string{"Wall time", p.lastFrame.Sub(p.started).Round(time.Millisecond).String()})
	table.Render()
}
