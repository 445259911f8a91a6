package tracer

import (
	"fmt"
	"io"
	"time"

	"github.com/Carmen-Shannon/oxy-rt/engine/renderer/buffer"
	"github.com/olekukonko/tablewriter"
)

// Stats describes the work a tracer has done.
type Stats struct {
	Frames   uint64
	Samples  uint32
	Resets   int
	Rebuilds int
	Width    uint32
	Height   uint32
	Uptime   time.Duration
	Buffers  buffer.Stats
}

func (t *tracer) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Frames:   t.frames,
		Samples:  t.acc.sampleIndex,
		Resets:   t.acc.resets,
		Rebuilds: t.rebuilds,
		Width:    t.width,
		Height:   t.height,
		Uptime:   time.Since(t.started),
		Buffers:  t.buffers.Stats(),
	}
}

// WriteTable renders the statistics as a two-column table.
//
// Parameters:
//   - w: the destination
func (s Stats) WriteTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Resolution", fmt.Sprintf("%dx%d", s.Width, s.Height)})
	table.Append([]string{"Frames", fmt.Sprint(s.Frames)})
	table.Append([]string{"Converged samples", fmt.Sprint(s.Samples)})
	table.Append([]string{"Accumulation resets", fmt.Sprint(s.Resets)})
	table.Append([]string{"Geometry rebuilds", fmt.Sprint(s.Rebuilds)})
	table.Append([]string{"Buffer allocations", fmt.Sprint(s.Buffers.Allocations)})
	table.Append([]string{"Buffer uploads", fmt.Sprint(s.Buffers.Uploads)})
	table.Append([]string{"Buffer releases", fmt.Sprint(s.Buffers.Releases)})
	table.SetFooter([]string{"Uptime", s.Uptime.Round(time.Millisecond).String()})
	table.Render()
}
